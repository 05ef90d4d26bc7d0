package basis

import (
	"github.com/shopspring/decimal"
)

// Money represents an amount in the settlement currency.
type Money struct {
	value decimal.Decimal
}

// M builds Money from an integer or a decimal.
func M[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string such as "101.25".
func ParseMoney(s string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// MustMoney is like ParseMoney but panics on error.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

func (m Money) Decimal() decimal.Decimal       { return m.value }
func (m Money) String() string                 { return m.value.String() }
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }
func (m Money) Equal(n Money) bool             { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int                { return m.value.Cmp(n.value) }
func (m Money) IsZero() bool                   { return m.value.IsZero() }
func (m Money) IsPositive() bool               { return m.value.IsPositive() }
func (m Money) IsNegative() bool               { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool          { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool       { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                     { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                     { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money              { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money              { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money           { return Money{value: m.value.Mul(q.value)} }
func (m Money) MulRatio(r Ratio) Money         { return Money{value: m.value.Mul(r.value)} }

// Round returns m rounded half-even to places decimals.
func (m Money) Round(places int32) Money { return Money{value: m.value.RoundBank(places)} }

// Div returns the amount per unit of q.
func (m Money) Div(q Quantity, mode Rounding) (Money, error) {
	v, err := div(m.value, q.value, mode)
	return Money{value: v}, err
}

// DivPrice returns how many units of price p the amount m buys.
func (m Money) DivPrice(p Money, mode Rounding) (Quantity, error) {
	v, err := div(m.value, p.value, mode)
	return Quantity{value: v}, err
}

// Ratio returns m/n as a fraction.
func (m Money) Ratio(n Money, mode Rounding) (Ratio, error) {
	v, err := div(m.value, n.value, mode)
	return Ratio{value: v}, err
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func (m Money) MarshalJSON() ([]byte, error)     { return m.value.MarshalJSON() }
func (m *Money) UnmarshalJSON(data []byte) error { return unmarshalDecimal(&m.value, data) }
