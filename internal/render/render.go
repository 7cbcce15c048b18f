// Package render projects a list of expenses into display rows and a total.
//
// A View is recomputed from scratch on every change; nothing is cached
// between renders.
package render

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// TotalElementID is the reserved identity of the total element. A surface
// holds at most one element with this id.
const TotalElementID = "expense-total"

const (
	LabelTotal         = "Total Expenses"
	LabelFilteredTotal = "Filtered Total Expenses"
)

// Color is a display tier.
type Color string

const (
	Green   Color = "green"
	Orange  Color = "orange"
	Red     Color = "red"
	Neutral Color = "inherit"
)

var (
	cautionThreshold = decimal.NewFromInt(50)
	alertThreshold   = decimal.NewFromInt(100)
)

type (
	// Row is one rendered expense. DeleteID addresses the expense in the full
	// list regardless of which subset is displayed.
	Row struct {
		DeleteID uuid.UUID
		Text     string
		Color    Color
	}

	// Total is the summary element rendered after the rows.
	Total struct {
		ElementID string
		Label     string
		Amount    string
		Color     Color
	}

	// View is everything a surface needs to display one list.
	View struct {
		Rows     []Row
		Total    Total
		Filtered bool
	}
)

// Text is the full caption of the total element.
func (t Total) Text() string {
	return fmt.Sprintf("%s: $%s", t.Label, t.Amount)
}

// AmountColor tiers a single expense amount: up to 50 is green, up to 100
// orange, anything above red.
func AmountColor(amount decimal.Decimal) Color {
	switch {
	case amount.LessThanOrEqual(cautionThreshold):
		return Green
	case amount.LessThanOrEqual(alertThreshold):
		return Orange
	default:
		return Red
	}
}

// TotalColor flags totals above 100.
func TotalColor(total decimal.Decimal) Color {
	if total.GreaterThan(alertThreshold) {
		return Red
	}
	return Neutral
}

// RowText formats one expense as "<name> - $<amount>: <date>".
func RowText(e core.Expense) string {
	return fmt.Sprintf("%s - $%s: %s", e.Name, core.FormatAmount(e.Amount), e.Date)
}

// Render builds the full view of the given expenses.
func Render(expenses []core.Expense) View {
	return build(expenses, false)
}

// RenderFiltered builds the view of a filtered subset.
func RenderFiltered(expenses []core.Expense) View {
	return build(expenses, true)
}

func build(expenses []core.Expense, filtered bool) View {
	v := View{
		Rows:     make([]Row, 0, len(expenses)),
		Filtered: filtered,
	}
	for _, e := range expenses {
		v.Rows = append(v.Rows, Row{
			DeleteID: e.ID,
			Text:     RowText(e),
			Color:    AmountColor(e.Amount),
		})
	}

	total := core.Total(expenses)
	label := LabelTotal
	if filtered {
		label = LabelFilteredTotal
	}
	v.Total = Total{
		ElementID: TotalElementID,
		Label:     label,
		Amount:    core.FormatAmount(total),
		Color:     TotalColor(total),
	}
	return v
}
