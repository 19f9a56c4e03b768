// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// Money is an amount in minor units (cents).
type Money struct {
	Amount   int64
	Currency string
}

// FromDollars converts a floating dollar amount (as provider APIs quote it)
// into cents, rounding half away from zero.
func FromDollars(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency}
}

// Dollars returns the amount as a float for display and scoring math.
func (m Money) Dollars() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	return fmt.Sprintf("$%.2f", m.Dollars())
}

// Scale multiplies the amount by f, rounding to the nearest cent.
func (m Money) Scale(f float64) Money {
	return Money{Amount: int64(math.Round(float64(m.Amount) * f)), Currency: m.Currency}
}
