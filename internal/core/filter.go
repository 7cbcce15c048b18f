package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingBound  = errors.New("missing date bound")
	ErrInvalidBound  = errors.New("invalid date bound")
	ErrInvertedRange = errors.New("start date after end date")
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses both bounds. Either bound empty yields ErrMissingBound,
// an unparseable bound ErrInvalidBound and start after end ErrInvertedRange.
func NewDateRange(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, ErrMissingBound
	}
	s, ok := ParseDay(start)
	if !ok {
		return DateRange{}, ErrInvalidBound
	}
	e, ok := ParseDay(end)
	if !ok {
		return DateRange{}, ErrInvalidBound
	}
	if s.After(e) {
		return DateRange{}, ErrInvertedRange
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether the expense date falls within the range, bounds
// included. Expenses with unparseable dates are never contained.
func (r DateRange) Contains(e Expense) bool {
	day, ok := e.Day()
	if !ok {
		return false
	}
	return !day.Before(r.Start) && !day.After(r.End)
}

// FilterByRange returns the expenses inside r, preserving their order.
func FilterByRange(expenses []Expense, r DateRange) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if r.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}
