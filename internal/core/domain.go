package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and comparison format of expense dates.
const DateLayout = "2006-01-02"

type (
	// Expense is a single tracked outlay. The list order in storage is the
	// display order; ID is the only identity used for addressing.
	Expense struct {
		ID     uuid.UUID       `json:"id"`
		Date   string          `json:"date"`
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}
)

var (
	ErrEmptyName     = errors.New("empty name")
	ErrShortName     = errors.New("name too short")
	ErrEmptyDate     = errors.New("empty date")
	ErrEmptyAmount   = errors.New("empty amount")
	ErrInvalidAmount = errors.New("invalid amount")
)

// NewExpense builds an expense with a fresh identifier.
func NewExpense(date, name string, amount decimal.Decimal) Expense {
	return Expense{
		ID:     uuid.New(),
		Date:   date,
		Name:   name,
		Amount: amount,
	}
}

// Validate re-checks an already normalised expense against the field rules.
func (e Expense) Validate() error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return ErrEmptyName
	}
	if nameLength(name) < MinNameLength {
		return ErrShortName
	}
	if strings.TrimSpace(e.Date) == "" {
		return ErrEmptyDate
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Day parses the expense date. The second result is false when the stored
// date is not a calendar date; such expenses never match a date range.
func (e Expense) Day() (time.Time, bool) {
	return ParseDay(e.Date)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
