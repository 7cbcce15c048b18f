package http

import (
	"expensetracker/internal/core"
	"expensetracker/internal/render"
)

// page is the display surface of one request. The controller writes into it
// and the index template reads it back.
type page struct {
	View    render.View
	Errors  core.FieldErrors
	Form    ExpenseForm
	Range   RangeQuery
	Notices []string
}

func (p *page) ShowList(view render.View) { p.View = view }

func (p *page) ShowFieldErrors(errs core.FieldErrors) { p.Errors = errs }

func (p *page) ClearForm() { p.Form = ExpenseForm{} }

func (p *page) Notify(message string) { p.Notices = append(p.Notices, message) }

func (p *page) ClearFilterBounds() { p.Range = RangeQuery{} }
