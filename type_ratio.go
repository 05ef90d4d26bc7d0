package basis

import (
	"github.com/shopspring/decimal"
)

// Ratio is a dimensionless fraction, e.g. 0.0532 for a +5.32% return.
type Ratio struct {
	value decimal.Decimal
}

// ParseRatio parses a decimal string such as "0.0532".
func ParseRatio(s string) (Ratio, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Ratio{}, err
	}
	return Ratio{value: d}, nil
}

// MustRatio is like ParseRatio but panics on error.
func MustRatio(s string) Ratio {
	r, err := ParseRatio(s)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// One is the neutral growth factor.
var One = Ratio{value: decimal.NewFromInt(1)}

func (r Ratio) Decimal() decimal.Decimal { return r.value }
func (r Ratio) String() string           { return r.value.String() }
func (r Ratio) Equal(s Ratio) bool       { return r.value.Equal(s.value) }
func (r Ratio) Cmp(s Ratio) int          { return r.value.Cmp(s.value) }
func (r Ratio) IsZero() bool             { return r.value.IsZero() }
func (r Ratio) IsNegative() bool         { return r.value.IsNegative() }
func (r Ratio) Add(s Ratio) Ratio        { return Ratio{value: r.value.Add(s.value)} }
func (r Ratio) Sub(s Ratio) Ratio        { return Ratio{value: r.value.Sub(s.value)} }
func (r Ratio) Mul(s Ratio) Ratio        { return Ratio{value: r.value.Mul(s.value)} }

// Round returns r rounded half-even to places decimals.
func (r Ratio) Round(places int32) Ratio { return Ratio{value: r.value.RoundBank(places)} }

// Percent formats the ratio as a percentage with two decimals, e.g. "5.32%".
func (r Ratio) Percent() string {
	return r.value.Shift(2).StringFixedBank(2) + "%"
}

// SignedPercent is like Percent with an explicit sign, zero is rendered as "-".
func (r Ratio) SignedPercent() string {
	p := r.value.Shift(2).RoundBank(2)
	if p.IsZero() {
		return "-"
	}
	if p.IsPositive() {
		return "+" + p.StringFixed(2) + "%"
	}
	return p.StringFixed(2) + "%"
}

// Float returns an approximation for plotting. Never use it in calculations.
func (r Ratio) Float() float64 { return r.value.InexactFloat64() }

func (r Ratio) MarshalJSON() ([]byte, error)     { return r.value.MarshalJSON() }
func (r *Ratio) UnmarshalJSON(data []byte) error { return unmarshalDecimal(&r.value, data) }

// Factor is a ratio that may be unbounded, as a profit factor without losses.
type Factor struct {
	Ratio
	Infinite bool
}

func (f Factor) String() string {
	if f.Infinite {
		return "inf"
	}
	return f.Ratio.String()
}

func (f Factor) MarshalJSON() ([]byte, error) {
	if f.Infinite {
		return []byte(`"inf"`), nil
	}
	return f.Ratio.MarshalJSON()
}
