package api

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal currency amount. It decodes from JSON numbers or strings
// and always encodes as a bare JSON number, which is what the backend expects.
type Money struct {
	decimal.Decimal
}

// NewMoney parses a decimal string such as "50" or "12.50".
func NewMoney(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// MustMoney is NewMoney for literals.
func MustMoney(value string) Money {
	m, err := NewMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromInt builds a whole-unit amount.
func MoneyFromInt(value int64) Money {
	return Money{decimal.NewFromInt(value)}
}

// Equal compares amounts numerically, so 50 equals 50.00.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// Format renders the amount with two decimals.
func (m Money) Format() string {
	return m.StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers, quoted numbers and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
