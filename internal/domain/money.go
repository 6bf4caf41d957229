package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with two fraction digits. It serialises as a
// quoted decimal string ("25.50") and scans from NUMERIC columns.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to two fraction digits.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// ParseMoney parses a decimal string such as "10.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return NewMoney(m.Decimal.Add(o.Decimal))
}

// Times returns m multiplied by an integer quantity.
func (m Money) Times(qty int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(qty))))
}

// MinorUnits returns the amount in the currency's smallest unit (pesewas, kobo, cents).
func (m Money) MinorUnits() int64 {
	return m.Decimal.Shift(2).Round(0).IntPart()
}

// Equal reports whether both amounts are the same value.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}
