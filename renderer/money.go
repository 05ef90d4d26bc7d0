package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/etnz/basis"
	"github.com/shopspring/decimal"
)

// Formatter displays amounts in a currency.
type Formatter struct {
	currency *money.Currency
	code     string
}

// NewFormatter returns a Formatter for an ISO 4217 code. Unknown codes are
// displayed as a plain two decimals amount followed by the code.
func NewFormatter(code string) Formatter {
	return Formatter{currency: money.GetCurrency(code), code: code}
}

// Money displays m, rounded half-even to the currency fraction.
func (f Formatter) Money(m basis.Money) string {
	if f.currency == nil {
		return m.StringFixed(2) + " " + f.code
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(f.currency.Fraction))
	amount := m.Round(int32(f.currency.Fraction)).Decimal().Mul(factor)
	return money.New(amount.IntPart(), f.currency.Code).Display()
}

// Signed is like Money with an explicit sign, zero is rendered as "-".
func (f Formatter) Signed(m basis.Money) string {
	switch {
	case m.Round(2).IsZero():
		return "-"
	case m.IsPositive():
		return "+" + f.Money(m)
	default:
		return f.Money(m)
	}
}
