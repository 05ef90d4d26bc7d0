package basis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of decimal places kept by every division.
const DivisionScale int32 = 20

// Rounding selects how a non-terminating quotient is cut at DivisionScale.
type Rounding int

const (
	// HalfEven rounds to the nearest neighbour, ties to the even digit.
	HalfEven Rounding = iota
	// HalfUp rounds to the nearest neighbour, ties away from zero.
	HalfUp
	// Down truncates toward zero.
	Down
	// Up rounds away from zero whenever a remainder exists.
	Up
)

func (r Rounding) String() string {
	switch r {
	case HalfEven:
		return "half-even"
	case HalfUp:
		return "half-up"
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

var two = decimal.NewFromInt(2)

// newDecimal is a convenient factory for decimal.Decimal.
//
// Floats are deliberately not accepted: amounts enter the engine as text or integers.
func newDecimal[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// parseDecimal parses s, mapping syntax errors to ErrInvalidArithmetic.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed decimal %q", ErrInvalidArithmetic, s)
	}
	return d, nil
}

// div returns a/b cut at DivisionScale places using mode.
//
// The quotient is computed with QuoRem so the rounding decision is taken on the
// exact remainder, never on an already rounded value.
func div(a, b decimal.Decimal, mode Rounding) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: division of %s by zero", ErrInvalidArithmetic, a)
	}
	q, r := a.QuoRem(b, DivisionScale)
	if r.IsZero() {
		return q, nil
	}
	unit := decimal.New(1, -DivisionScale)
	// sign of the exact quotient, q may be zero.
	step := unit
	if a.Sign()*b.Sign() < 0 {
		step = unit.Neg()
	}

	half := r.Abs().Mul(two).Cmp(b.Abs().Mul(unit))
	away := false
	switch mode {
	case HalfEven:
		away = half > 0 || (half == 0 && !q.Shift(DivisionScale).Mod(two).IsZero())
	case HalfUp:
		away = half >= 0
	case Down:
		away = false
	case Up:
		away = true
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown rounding mode %d", ErrInvalidArithmetic, mode)
	}
	if away {
		q = q.Add(step)
	}
	return q, nil
}
