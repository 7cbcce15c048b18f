package http

import (
	"context"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/render"
	"expensetracker/internal/services"
	"expensetracker/internal/store"
)

// controller builds the per-request controller writing into p.
func (s *Server) controller(r *http.Request, p *page, confirm services.Confirmer) *services.ExpenseController {
	return services.NewExpenseController(services.Deps{
		Store:   s.store,
		Surface: p,
		Confirm: confirm,
		Logger:  log.FromContext(r.Context()),
	})
}

// handleIndex renders the full list, or the filtered subset when the filter
// form was submitted. A rejected filter falls back to the full list.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := &page{Range: ParseRangeQuery(r.URL.Query())}
	ctrl := s.controller(r, p, nil)

	var err error
	if p.Range.Requested {
		err = ctrl.ApplyFilter(ctx, p.Range.Start, p.Range.End)
		if isFilterInputError(err) {
			err = ctrl.Show(ctx)
		}
	} else {
		err = ctrl.Show(ctx)
	}
	if err != nil {
		s.fail(w, r, "List expenses error", err)
		return
	}

	s.renderTemplate(w, r, NewHTMXResponse(), "index.html", p)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, fail := parseBodyOrFail(r)
	if fail != nil {
		log.FromContext(ctx).WarnContext(ctx, "Parse body error", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		fail.Write(w)
		return
	}

	p := &page{Form: ParseExpenseForm(body)}
	ctrl := s.controller(r, p, nil)

	v, err := ctrl.Submit(ctx, p.Form.Date, p.Form.Name, p.Form.Amount)
	if err != nil {
		s.fail(w, r, "Expense append error", err)
		return
	}

	status := http.StatusOK
	if !v.Valid() {
		status = http.StatusUnprocessableEntity
		if err := ctrl.Show(ctx); err != nil {
			s.fail(w, r, "List expenses error", err)
			return
		}
	}

	s.renderTemplate(w, r, NewHTMXResponse().Status(status).PushURL("/"), "index.html", p)
}

type confirmData struct {
	ID  string
	Row render.Row
}

// handleConfirmDelete asks the user to confirm a deletion.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := ParseExpenseID(r)
	if err != nil {
		NotFoundError("Expense not found").Write(w)
		return
	}

	e, err := s.store.Find(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		NotFoundError("Expense not found").Write(w)
		return
	}
	if err != nil {
		s.fail(w, r, "Find expense error", err)
		return
	}

	row := render.Render([]core.Expense{e}).Rows[0]
	s.renderTemplate(w, r, NewHTMXResponse(), "confirm.html", confirmData{
		ID:  id.String(),
		Row: row,
	})
}

// handleDeleteExpense deletes when the confirmation form answered yes.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := ParseExpenseID(r)
	if err != nil {
		NotFoundError("Expense not found").Write(w)
		return
	}

	body, fail := parseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}
	confirmed := body.Get("confirm") == "yes"

	p := &page{}
	ctrl := s.controller(r, p, services.ConfirmFunc(func(context.Context, core.Expense) bool {
		return confirmed
	}))

	removed, err := ctrl.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		NotFoundError("Expense not found").Write(w)
		return
	}
	if err != nil {
		s.fail(w, r, "Expense delete error", err)
		return
	}
	if !removed {
		if err := ctrl.Show(ctx); err != nil {
			s.fail(w, r, "List expenses error", err)
			return
		}
	}

	s.renderTemplate(w, r, NewHTMXResponse().PushURL("/"), "index.html", p)
}

func (s *Server) handleResetFilter(w http.ResponseWriter, r *http.Request) {
	p := &page{}
	if err := s.controller(r, p, nil).ResetFilter(r.Context()); err != nil {
		s.fail(w, r, "Reset filter error", err)
		return
	}
	s.renderTemplate(w, r, NewHTMXResponse().PushURL("/"), "index.html", p)
}

// handleAmountGuard re-renders the amount input when the live guard changed
// its value, and answers 204 otherwise so htmx leaves the input alone.
func (s *Server) handleAmountGuard(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	raw := body.Get("amount")
	guarded := s.controller(r, &page{}, nil).GuardAmount(raw)
	if guarded == raw {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.renderTemplate(w, r, NewHTMXResponse(), "amount_input", ExpenseForm{Amount: guarded})
}

// fail logs err once and answers 500. Corrupt storage gets its own message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		log.FieldError, err,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)

	if errors.Is(err, store.ErrCorrupt) {
		InternalServerError("Stored expenses could not be read").Write(w)
		return
	}
	InternalServerError("Something went wrong, please try again").Write(w)
}

func isFilterInputError(err error) bool {
	return errors.Is(err, core.ErrMissingBound) ||
		errors.Is(err, core.ErrInvertedRange) ||
		errors.Is(err, core.ErrInvalidBound)
}
