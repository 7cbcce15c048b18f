package core

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MinNameLength is the minimum trimmed length of an expense name.
const MinNameLength = 4

// User-facing validation messages.
const (
	MsgNameRequired   = "Please enter an expense name"
	MsgNameTooShort   = "Name must be at least 4 characters long"
	MsgDateRequired   = "Please select a date"
	MsgAmountRequired = "Please enter an amount"
	MsgAmountPositive = "Please enter an amount greater than 0"
)

// FieldErrors holds one message per form field; an empty string means the
// field is valid.
type FieldErrors struct {
	Name   string
	Date   string
	Amount string
}

// Empty reports whether no field carries an error.
func (f FieldErrors) Empty() bool {
	return f.Name == "" && f.Date == "" && f.Amount == ""
}

// Validation is the outcome of checking one form submission. When Valid, the
// normalised fields are ready to be stored.
type Validation struct {
	Date   string
	Name   string
	Amount decimal.Decimal
	Errors FieldErrors
}

// Valid reports whether every field passed its rule.
func (v Validation) Valid() bool {
	return v.Errors.Empty()
}

// Expense builds a new expense from a valid submission.
func (v Validation) Expense() Expense {
	return NewExpense(v.Date, v.Name, v.Amount)
}

// ValidateInput checks a (date, name, amount) triple. Every field is
// evaluated so that all applicable errors surface together.
func ValidateInput(date, name, amount string) Validation {
	v := Validation{
		Date: strings.TrimSpace(date),
		Name: strings.TrimSpace(name),
	}

	switch {
	case v.Name == "":
		v.Errors.Name = MsgNameRequired
	case nameLength(v.Name) < MinNameLength:
		v.Errors.Name = MsgNameTooShort
	}

	if v.Date == "" {
		v.Errors.Date = MsgDateRequired
	}

	d, err := ParseAmount(amount)
	switch err {
	case nil:
		v.Amount = d
	case ErrEmptyAmount:
		v.Errors.Amount = MsgAmountRequired
	default:
		v.Errors.Amount = MsgAmountPositive
	}

	return v
}

func nameLength(s string) int {
	return utf8.RuneCountInString(s)
}
