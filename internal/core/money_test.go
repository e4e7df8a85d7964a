package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1e400", 0, false},
		{"10995116277.76", 1 << 40, true},
		{"10995116277.77", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if assert.NoError(t, err, tc.in) {
				assert.Equal(t, tc.out, got.Cents, tc.in)
			}
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestParseAmountNegativeIsDistinct(t *testing.T) {
	_, err := ParseAmount("-0.50")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMoneyCheckedAdd(t *testing.T) {
	sum, ok := Money{Cents: 1}.CheckedAdd(Money{Cents: 2})
	assert.True(t, ok)
	assert.Equal(t, int64(3), sum.Cents)

	_, ok = Money{Cents: math.MaxInt64 - 1}.CheckedAdd(Money{Cents: 2})
	assert.False(t, ok)
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "12.34", Money{Cents: 1234}.String())
	assert.Equal(t, "0.05", Money{Cents: 5}.String())
	assert.Equal(t, "-7.00", Money{Cents: -700}.String())
	assert.InDelta(t, 12.34, Money{Cents: 1234}.Float(), 1e-9)
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Money{Cents: 1000}, Money{Cents: 250}
	assert.Equal(t, Money{Cents: 1250}, a.Add(b))
	assert.Equal(t, Money{Cents: 750}, a.Sub(b))
	assert.Equal(t, Money{Cents: -750}, b.Sub(a))
	assert.True(t, Money{}.IsZero())
}
