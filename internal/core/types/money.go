package types

import "github.com/shopspring/decimal"

// Money represents a monetary value with full precision.
// decimal.Decimal avoids floating-point drift in the tax/discount pipeline;
// amounts are rounded to 2 places only at the pricing stage boundaries.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Prefer MoneyFromString for values coming off the wire.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromString parses a Money value from a string.
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney parses a Money value, panicking on error. Constants and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns the zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// RoundMoney rounds to 2 decimal places, half away from zero.
// This matches the rounding of Quantity, so quantity*price arithmetic
// agrees between the stock and pricing components.
func RoundMoney(m Money) Money {
	return m.Round(2)
}
