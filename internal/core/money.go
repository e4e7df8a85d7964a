// Package core holds the transaction model shared by every layer.
//
// This file contains parsing and formatting of monetary amounts. Amounts are
// kept as integer cents so that sums are exact.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Digits beyond
// the second decimal place are rounded half-up. Zero is a valid amount,
// negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,34")  -> 1234
//	ParseAmount("12.345") -> 1235
//	ParseAmount("0")      -> 0
func ParseAmount(s string) (Money, error) {
	raw := s
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, &DataError{Field: FieldAmount, Value: raw, Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &DataError{Field: FieldAmount, Value: raw, Err: ErrInvalidAmount}
	}
	if d.IsNegative() {
		return Money{}, &DataError{Field: FieldAmount, Value: raw, Err: ErrNegativeAmount}
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, &DataError{Field: FieldAmount, Value: raw, Err: ErrInvalidAmount}
	}
	return Money{Cents: cents.IntPart()}, nil
}

// maxCents caps a single entered amount at about 11 billion. Sums of stored
// records are still checked by the report functions.
const maxCents = 1 << 40

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// CheckedAdd is Add for non-negative amounts, with ok false when the sum
// does not fit in int64.
func (m Money) CheckedAdd(o Money) (sum Money, ok bool) {
	if o.Cents > math.MaxInt64-m.Cents {
		return Money{}, false
	}
	return Money{Cents: m.Cents + o.Cents}, true
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimal places, e.g. "-12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the amount in currency units for chart rendering.
// Sums must use Cents.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}
