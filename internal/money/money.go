package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrTooManyDecimalPlaces = errors.New("amount cannot have more than 2 decimal places")
)

// Amount is a monetary value in minor units (cents).
// Balances and transaction amounts are always held in this form so that
// repeated credits and debits never accumulate floating-point drift.
// Decimal values only appear at the API boundary.
type Amount int64

// FromDecimal converts a decimal value, as received from a client,
// into minor units. Values with sub-cent precision are rejected rather
// than silently rounded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrTooManyDecimalPlaces
	}

	return Amount(cents.IntPart()), nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String renders the amount with exactly two decimal places, e.g. "1250.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

func (a Amount) Positive() bool {
	return a > 0
}
