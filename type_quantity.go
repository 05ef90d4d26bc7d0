package basis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a number of units of a security.
type Quantity struct {
	value decimal.Decimal
}

// Q builds a Quantity from an integer or a decimal.
func Q[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a decimal string such as "12.5".
func ParseQuantity(s string) (Quantity, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

// MustQuantity is like ParseQuantity but panics on error.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err.Error())
	}
	return q
}

func (t Quantity) Decimal() decimal.Decimal     { return t.value }
func (t Quantity) String() string               { return t.value.String() }
func (t Quantity) Equal(p Quantity) bool        { return t.value.Equal(p.value) }
func (t Quantity) Cmp(p Quantity) int           { return t.value.Cmp(p.value) }
func (t Quantity) LessThan(p Quantity) bool     { return t.value.LessThan(p.value) }
func (t Quantity) GreaterThan(p Quantity) bool  { return t.value.GreaterThan(p.value) }
func (t Quantity) Add(p Quantity) Quantity      { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity      { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) Mul(p Quantity) Quantity      { return Quantity{value: t.value.Mul(p.value)} }
func (t Quantity) Neg() Quantity                { return Quantity{value: t.value.Neg()} }
func (t Quantity) Abs() Quantity                { return Quantity{value: t.value.Abs()} }
func (t Quantity) IsNegative() bool             { return t.value.IsNegative() }
func (t Quantity) IsPositive() bool             { return t.value.IsPositive() }
func (t Quantity) IsZero() bool                 { return t.value.IsZero() }
func (t Quantity) Min(p Quantity) Quantity {
	if p.value.LessThan(t.value) {
		return p
	}
	return t
}

// Div returns t/p.
func (t Quantity) Div(p Quantity, mode Rounding) (Quantity, error) {
	v, err := div(t.value, p.value, mode)
	return Quantity{value: v}, err
}

// Ratio returns t/p as a fraction.
func (t Quantity) Ratio(p Quantity, mode Rounding) (Ratio, error) {
	v, err := div(t.value, p.value, mode)
	return Ratio{value: v}, err
}

func (t Quantity) MarshalJSON() ([]byte, error)     { return t.value.MarshalJSON() }
func (t *Quantity) UnmarshalJSON(data []byte) error { return unmarshalDecimal(&t.value, data) }

// unmarshalDecimal decodes quoted or bare JSON numbers, reporting
// ErrInvalidArithmetic on malformed input.
func unmarshalDecimal(d *decimal.Decimal, data []byte) error {
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArithmetic, err)
	}
	return nil
}
