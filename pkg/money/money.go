package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer minor units. Ledger adjustments may be
// negative; RMA refund amounts never are.
type Cents int64

// FromDecimal converts a two-decimal-place amount into cents, rejecting values
// with sub-cent precision.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Mul(decimal.NewFromInt(100))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-cent precision", d)
	}
	return Cents(scaled.IntPart()), nil
}

// MustFromDecimal is FromDecimal for trusted literals; it panics on bad input.
func MustFromDecimal(d decimal.Decimal) Cents {
	c, err := FromDecimal(d)
	if err != nil {
		panic(err)
	}
	return c
}

// Decimal renders the amount with two decimal places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount as a fixed two-decimal string, e.g. "80.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// IsNegative reports whether the amount is below zero.
func (c Cents) IsNegative() bool {
	return c < 0
}

// Abs returns the magnitude of the amount.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// PercentOf returns pct percent of the amount, truncated toward zero to whole
// cents. Used for condition deductions and percent-based shipping charges.
func (c Cents) PercentOf(pct int64) Cents {
	return Cents(int64(c) * pct / 100)
}
