// Package core provides amount parsing and aggregation utilities.
//
// Amounts are decimals end to end: they are parsed once when a form is
// validated and never re-parsed from text afterwards.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a decimal amount.
//
// Surrounding whitespace is ignored. Empty input yields ErrEmptyAmount;
// anything that is not a number, or is not strictly positive, yields
// ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("4.50") -> 4.5, nil
//	ParseAmount("1e2")  -> 100, nil
//	ParseAmount("0")    -> 0, ErrInvalidAmount
//	ParseAmount("abc")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Total sums the amounts of the given expenses.
func Total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// CalculateTotal returns the formatted sum of the given expenses; an empty
// list totals "0.00".
func CalculateTotal(expenses []Expense) string {
	return FormatAmount(Total(expenses))
}

// ClampAmount is the live guard applied to the amount input while the user
// types: a negative number becomes "0", any other value is returned as is.
// Partial input such as "-" or "1." is left untouched.
func ClampAmount(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	if d.IsNegative() {
		return "0"
	}
	return raw
}
