package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/render"
)

// Notices shown when a filter cannot be applied.
const (
	NoticeMissingBound  = "Please select both start and end dates"
	NoticeInvertedRange = "Start date must be before end date"
	NoticeInvalidBound  = "Please enter valid start and end dates"
)

// Mode is the display mode of the controller.
type Mode int

const (
	Idle Mode = iota
	Filtered
)

func (m Mode) String() string {
	if m == Filtered {
		return "filtered"
	}
	return "idle"
}

type (
	// ExpenseStore is the persistence the controller needs.
	ExpenseStore interface {
		Load(ctx context.Context) ([]core.Expense, error)
		Append(ctx context.Context, e core.Expense) ([]core.Expense, error)
		Remove(ctx context.Context, id uuid.UUID) ([]core.Expense, error)
		Find(ctx context.Context, id uuid.UUID) (core.Expense, error)
	}

	// Surface is the display the controller writes into.
	Surface interface {
		// ShowList replaces the displayed rows and total.
		ShowList(view render.View)
		// ShowFieldErrors replaces the three form error slots.
		ShowFieldErrors(errs core.FieldErrors)
		// ClearForm empties the date, name and amount inputs.
		ClearForm()
		// Notify shows a blocking notice.
		Notify(message string)
		// ClearFilterBounds empties both date-bound inputs.
		ClearFilterBounds()
	}

	// Confirmer decides whether a deletion goes ahead.
	Confirmer interface {
		Confirm(ctx context.Context, e core.Expense) bool
	}

	// ConfirmFunc adapts a function to Confirmer.
	ConfirmFunc func(ctx context.Context, e core.Expense) bool

	// Deps is the explicit handle bundle of a controller.
	Deps struct {
		Store   ExpenseStore
		Surface Surface
		Confirm Confirmer
		Logger  *applog.Logger
	}
)

func (f ConfirmFunc) Confirm(ctx context.Context, e core.Expense) bool {
	return f(ctx, e)
}

// Never declines every deletion.
var Never = ConfirmFunc(func(context.Context, core.Expense) bool { return false })

// ExpenseController orchestrates submit, delete and filtering. The stored
// list is the only source of truth; the controller keeps just its mode.
type ExpenseController struct {
	store   ExpenseStore
	surface Surface
	confirm Confirmer
	logger  *applog.Logger
	mode    Mode
}

// NewExpenseController wires a controller. A nil Confirm declines every
// deletion.
func NewExpenseController(deps Deps) *ExpenseController {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	confirm := deps.Confirm
	if confirm == nil {
		confirm = Never
	}
	return &ExpenseController{
		store:   deps.Store,
		surface: deps.Surface,
		confirm: confirm,
		logger:  logger.WithComponent(applog.ComponentExpense),
	}
}

// Mode reports whether a filtered subset is displayed.
func (c *ExpenseController) Mode() Mode {
	return c.mode
}

// Show renders the full list.
func (c *ExpenseController) Show(ctx context.Context) error {
	list, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	c.showFull(list)
	return nil
}

// Submit validates a form submission. Invalid input only updates the error
// slots. Valid input is appended, the full list re-rendered and the form
// cleared. The returned error is reserved for persistence failures.
func (c *ExpenseController) Submit(ctx context.Context, date, name, amount string) (core.Validation, error) {
	v := core.ValidateInput(date, name, amount)
	c.surface.ShowFieldErrors(v.Errors)
	if !v.Valid() {
		c.logger.DebugContext(ctx, "Expense rejected",
			applog.FieldOperation, applog.OpValidate,
			"name_error", v.Errors.Name,
			"date_error", v.Errors.Date,
			"amount_error", v.Errors.Amount)
		return v, nil
	}

	e := v.Expense()
	list, err := c.store.Append(ctx, e)
	if err != nil {
		return v, fmt.Errorf("append expense: %w", err)
	}

	c.logger.InfoContext(ctx, "Expense created", applog.NewFields().
		WithExpense(e.ID.String(), e.Name, core.FormatAmount(e.Amount), e.Date).
		WithOperation(applog.OpCreate).
		ToSlice()...)

	c.showFull(list)
	c.surface.ClearForm()
	return v, nil
}

// Delete removes the expense with id after confirmation. It reports whether
// the expense was removed; a declined confirmation is a no-op.
func (c *ExpenseController) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	e, err := c.store.Find(ctx, id)
	if err != nil {
		return false, fmt.Errorf("find expense: %w", err)
	}

	if !c.confirm.Confirm(ctx, e) {
		c.logger.DebugContext(ctx, "Deletion declined", applog.FieldExpenseID, id.String())
		return false, nil
	}

	list, err := c.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove expense: %w", err)
	}

	c.logger.InfoContext(ctx, "Expense deleted", applog.NewFields().
		WithExpense(e.ID.String(), e.Name, core.FormatAmount(e.Amount), e.Date).
		WithOperation(applog.OpDelete).
		ToSlice()...)

	c.showFull(list)
	return true, nil
}

// ApplyFilter displays the expenses dated within [start, end]. Missing,
// unparseable or inverted bounds raise a notice, return the matching core
// error and leave the display untouched.
func (c *ExpenseController) ApplyFilter(ctx context.Context, start, end string) error {
	r, err := core.NewDateRange(start, end)
	if err != nil {
		c.surface.Notify(filterNotice(err))
		return err
	}

	list, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	subset := core.FilterByRange(list, r)
	c.surface.ShowList(render.RenderFiltered(subset))
	c.mode = Filtered

	c.logger.DebugContext(ctx, "Filter applied", applog.NewFields().
		WithRange(start, end).
		WithOperation(applog.OpFilter).
		ToSlice()...)
	return nil
}

// ResetFilter clears both bounds and displays the full list again.
func (c *ExpenseController) ResetFilter(ctx context.Context) error {
	c.surface.ClearFilterBounds()
	return c.Show(ctx)
}

// GuardAmount is the live correction applied to the amount input on every
// change event.
func (c *ExpenseController) GuardAmount(raw string) string {
	return core.ClampAmount(raw)
}

func (c *ExpenseController) showFull(list []core.Expense) {
	c.surface.ShowList(render.Render(list))
	c.mode = Idle
}

func filterNotice(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingBound):
		return NoticeMissingBound
	case errors.Is(err, core.ErrInvertedRange):
		return NoticeInvertedRange
	default:
		return NoticeInvalidBound
	}
}
