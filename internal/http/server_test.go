package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage/memory"
	"expensetracker/internal/store"
)

type fixture struct {
	srv   *Server
	kv    *memory.Store
	store *store.ExpenseStore
}

func newFixture(t *testing.T, opts Options, seed ...core.Expense) fixture {
	t.Helper()
	kv := memory.New()
	st := store.New(kv, store.DefaultKey)
	if len(seed) > 0 {
		require.NoError(t, st.Save(context.Background(), seed))
	}
	srv := NewServer(":0", st, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return fixture{srv: srv, kv: kv, store: st}
}

func (f fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (f fixture) stored(t *testing.T) []core.Expense {
	t.Helper()
	list, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return list
}

func expense(date, name, amount string) core.Expense {
	return core.NewExpense(date, name, decimal.RequireFromString(amount))
}

func TestIndexAndHealth(t *testing.T) {
	f := newFixture(t, Options{})

	rr := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Expense Tracker")
	assert.Contains(t, body, `id="expense-total"`)
	assert.Contains(t, body, "Total Expenses: $0.00")
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := f.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr = f.do(http.MethodGet, "/static/style.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")
}

func TestCreateExpense(t *testing.T) {
	f := newFixture(t, Options{})

	rr := f.do(http.MethodPost, "/expenses", url.Values{
		"date":   {"2024-01-15"},
		"name":   {"Coffee"},
		"amount": {"4.50"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Coffee - $4.50: 2024-01-15")
	assert.Contains(t, body, "color: green")
	assert.Contains(t, body, "Total Expenses: $4.50")
	assert.Equal(t, "/", rr.Header().Get("HX-Push-Url"))
	assert.NotContains(t, body, `value="Coffee"`, "form should be cleared")

	list := f.stored(t)
	require.Len(t, list, 1)
	assert.Equal(t, "Coffee", list[0].Name)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("4.5")))
}

func TestCreateExpenseJSON(t *testing.T) {
	f := newFixture(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"date":"2024-01-15","name":"Groceries","amount":75}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Groceries - $75.00: 2024-01-15")
	assert.Contains(t, rr.Body.String(), "color: orange")
	assert.Len(t, f.stored(t), 1)
}

func TestCreateExpenseValidation(t *testing.T) {
	f := newFixture(t, Options{}, expense("2024-01-01", "Rent", "120"))

	rr := f.do(http.MethodPost, "/expenses", url.Values{
		"date":   {""},
		"name":   {"Tea"},
		"amount": {"-2"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, core.MsgDateRequired)
	assert.Contains(t, body, core.MsgNameTooShort)
	assert.Contains(t, body, core.MsgAmountPositive)
	assert.Contains(t, body, `value="Tea"`, "inputs are kept on failure")
	assert.Contains(t, body, "Rent - $120.00: 2024-01-01", "list still rendered")
	assert.Len(t, f.stored(t), 1)

	rr = f.do(http.MethodGet, "/expenses", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFilter(t *testing.T) {
	f := newFixture(t, Options{},
		expense("2024-01-05", "Books", "30"),
		expense("2024-02-10", "Train", "60"),
		expense("2024-01-31", "Dinner", "40"),
	)

	rr := f.do(http.MethodGet, "/?start=2024-01-01&end=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Filtered Total Expenses: $70.00")
	assert.Contains(t, body, "Books - $30.00")
	assert.Contains(t, body, "Dinner - $40.00")
	assert.NotContains(t, body, "Train")
	assert.Less(t, strings.Index(body, "Books"), strings.Index(body, "Dinner"), "insertion order kept")
	assert.Contains(t, body, `value="2024-01-01"`)
}

func TestFilterRejected(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		notice string
	}{
		{"missing end", "/?start=2024-01-01&end=", "Please select both start and end dates"},
		{"missing both", "/?start=&end=", "Please select both start and end dates"},
		{"inverted", "/?start=2024-02-01&end=2024-01-01", "Start date must be before end date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{},
				expense("2024-01-05", "Books", "30"),
				expense("2024-02-10", "Train", "60"),
			)

			rr := f.do(http.MethodGet, tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, tt.notice)
			assert.Contains(t, body, "Total Expenses: $90.00")
			assert.NotContains(t, body, "Filtered Total")
			assert.Len(t, f.stored(t), 2)
		})
	}
}

func TestResetFilter(t *testing.T) {
	f := newFixture(t, Options{}, expense("2024-01-05", "Books", "30"))

	rr := f.do(http.MethodPost, "/filter/reset", url.Values{"start": {"2024-01-01"}, "end": {"2024-01-02"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Total Expenses: $30.00")
	assert.NotContains(t, body, `value="2024-01-01"`)
}

func TestDeleteFlow(t *testing.T) {
	keep := expense("2024-01-05", "Books", "30")
	drop := expense("2024-01-06", "Train", "160")
	f := newFixture(t, Options{}, keep, drop)
	path := "/expenses/" + drop.ID.String() + "/delete"

	rr := f.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Are you sure you want to delete this expense?")
	assert.Contains(t, rr.Body.String(), "Train - $160.00: 2024-01-06")

	rr = f.do(http.MethodPost, path, url.Values{"confirm": {"no"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, f.stored(t), 2, "declined deletion is a no-op")

	rr = f.do(http.MethodPost, path, url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Total Expenses: $30.00")
	list := f.stored(t)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	rr = f.do(http.MethodPost, path, url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = f.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = f.do(http.MethodGet, "/expenses/2/delete", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAmountGuard(t *testing.T) {
	f := newFixture(t, Options{})

	rr := f.do(http.MethodPost, "/ui/amount", url.Values{"amount": {"-5"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="0"`)
	assert.Contains(t, rr.Body.String(), `id="amount"`)

	for _, v := range []string{"5", "", "abc", "0"} {
		rr := f.do(http.MethodPost, "/ui/amount", url.Values{"amount": {v}})
		assert.Equal(t, http.StatusNoContent, rr.Code, "amount %q", v)
	}
}

func TestCorruptStore(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.kv.Set(context.Background(), store.DefaultKey, "{not json"))

	rr := f.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Stored expenses could not be read")

	rr = f.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Options{RateLimitPerMinute: 1})

	form := url.Values{"date": {"2024-01-15"}, "name": {"Coffee"}, "amount": {"4.50"}}
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/expenses", form).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/expenses", form).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/", nil).Code)
	assert.Len(t, f.stored(t), 1)
}

func TestRateLimitSparesAmountGuard(t *testing.T) {
	f := newFixture(t, Options{RateLimitPerMinute: 5})

	for i := 0; i < 20; i++ {
		rr := f.do(http.MethodPost, "/ui/amount", url.Values{"amount": {"-3"}})
		require.Equal(t, http.StatusOK, rr.Code, "guard call %d", i)
	}

	form := url.Values{"date": {"2024-01-15"}, "name": {"Coffee"}, "amount": {"4.50"}}
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/expenses", form).Code)
	assert.Len(t, f.stored(t), 1)
}

func TestRateLimitPerForwardedClient(t *testing.T) {
	f := newFixture(t, Options{RateLimitPerMinute: 1, TrustedProxies: []string{"203.0.113.0/24", "bogus"}})

	submit := func(client string) int {
		form := url.Values{"date": {"2024-01-15"}, "name": {"Coffee"}, "amount": {"4.50"}}
		req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.9:443"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		f.srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, submit("198.51.100.1"))
	assert.Equal(t, http.StatusOK, submit("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, submit("198.51.100.1"))
	assert.Len(t, f.stored(t), 2)
}
