package render

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestAmountColorTiers(t *testing.T) {
	cases := map[string]Color{
		"0.01":   Green,
		"50.00":  Green,
		"50.01":  Orange,
		"100.00": Orange,
		"100.01": Red,
		"2500":   Red,
	}
	for in, want := range cases {
		assert.Equal(t, want, AmountColor(decimal.RequireFromString(in)), "amount %s", in)
	}
}

func TestTotalColor(t *testing.T) {
	assert.Equal(t, Neutral, TotalColor(decimal.RequireFromString("100.00")))
	assert.Equal(t, Red, TotalColor(decimal.RequireFromString("100.01")))
	assert.Equal(t, Neutral, TotalColor(decimal.Zero))
}

func TestRenderRowsAndTotal(t *testing.T) {
	coffee := core.NewExpense("2024-02-01", "Coffee", decimal.RequireFromString("4.5"))
	rent := core.NewExpense("2024-02-03", "Rent share", decimal.RequireFromString("120"))

	v := Render([]core.Expense{coffee, rent})

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Coffee - $4.50: 2024-02-01", v.Rows[0].Text)
	assert.Equal(t, Green, v.Rows[0].Color)
	assert.Equal(t, coffee.ID, v.Rows[0].DeleteID)
	assert.Equal(t, "Rent share - $120.00: 2024-02-03", v.Rows[1].Text)
	assert.Equal(t, Red, v.Rows[1].Color)
	assert.Equal(t, rent.ID, v.Rows[1].DeleteID)

	assert.False(t, v.Filtered)
	assert.Equal(t, TotalElementID, v.Total.ElementID)
	assert.Equal(t, "124.50", v.Total.Amount)
	assert.Equal(t, Red, v.Total.Color)
	assert.Equal(t, "Total Expenses: $124.50", v.Total.Text())
}

func TestRenderEmpty(t *testing.T) {
	v := Render(nil)
	assert.Empty(t, v.Rows)
	assert.Equal(t, "0.00", v.Total.Amount)
	assert.Equal(t, Neutral, v.Total.Color)
}

func TestRenderFilteredLabel(t *testing.T) {
	e := core.NewExpense("2024-01-10", "Books", decimal.NewFromInt(30))
	v := RenderFiltered([]core.Expense{e})
	assert.True(t, v.Filtered)
	assert.Equal(t, "Filtered Total Expenses: $30.00", v.Total.Text())
}
