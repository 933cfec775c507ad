// Package core provides the domain model of the expense tracker.
//
// This file handles monetary amounts: parsing user input and converting
// between the internal tagged representation (kind + magnitude in cents)
// and the signed decimal numbers the remote API speaks, where negative
// means expense and positive means income.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to a positive Money value with
// half-up rounding on sub-cent digits. Both dot and comma separators are
// accepted. Signed input is rejected: the kind carries the sign.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// Signed returns the remote wire representation: a negative number for
// expenses, non-negative for income.
func (a Amount) Signed() float64 {
	d := decimal.New(a.Magnitude.Cents, -2)
	if a.Kind == Expense {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f
}

// AmountFromSigned builds the tagged representation from a signed wire
// number. Negative means expense, zero or positive means income.
func AmountFromSigned(v float64) Amount {
	d := decimal.NewFromFloat(v)
	kind := Income
	if d.IsNegative() {
		kind = Expense
		d = d.Neg()
	}
	return Amount{
		Kind:      kind,
		Magnitude: Money{Cents: d.Mul(hundred).Round(0).IntPart()},
	}
}

// Value returns the unsigned magnitude as a float for display and for the
// local storage shape.
func (m Money) Value() float64 {
	f, _ := decimal.New(m.Cents, -2).Float64()
	return f
}

// MoneyFromValue converts an unsigned decimal value (as stored locally)
// back to cents.
func MoneyFromValue(v float64) Money {
	return Money{Cents: decimal.NewFromFloat(v).Mul(hundred).Round(0).IntPart()}
}
