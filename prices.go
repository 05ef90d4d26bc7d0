package basis

import (
	"github.com/etnz/basis/date"
)

// PriceHistory is a chronological series of closing prices.
type PriceHistory = date.History[Money]

// Valuer supplies the price of a symbol on a date.
//
// Implementations return a *MissingPriceError when they have none; a missing
// price is never replaced by zero.
type Valuer interface {
	Price(symbol string, on date.Date) (Money, error)
}

// Quotes maps a symbol to its current price, whatever the date.
type Quotes map[string]Money

func (q Quotes) Price(symbol string, on date.Date) (Money, error) {
	p, ok := q[symbol]
	if !ok {
		return Money{}, &MissingPriceError{Symbol: symbol}
	}
	return p, nil
}

// MarketData values symbols from their price histories. Symbols without any
// history are valued at their current quote.
type MarketData struct {
	histories map[string]*PriceHistory
	quotes    Quotes
}

// NewMarketData returns an empty market.
func NewMarketData() *MarketData {
	return &MarketData{histories: make(map[string]*PriceHistory), quotes: make(Quotes)}
}

// Append records the closing price of symbol on day.
func (m *MarketData) Append(symbol string, on date.Date, price Money) {
	h, ok := m.histories[symbol]
	if !ok {
		h = new(PriceHistory)
		m.histories[symbol] = h
	}
	h.Append(on, price)
}

// SetQuote records the current price of symbol.
func (m *MarketData) SetQuote(symbol string, price Money) { m.quotes[symbol] = price }

// History returns the price history of symbol, nil if there is none.
func (m *MarketData) History(symbol string) *PriceHistory { return m.histories[symbol] }

// Histories returns all price histories keyed by symbol.
func (m *MarketData) Histories() map[string]*PriceHistory { return m.histories }

// Price returns the most recent close on or before on, never a later one.
func (m *MarketData) Price(symbol string, on date.Date) (Money, error) {
	if h, ok := m.histories[symbol]; ok {
		return priceAsOf(symbol, h, on)
	}
	if p, ok := m.quotes[symbol]; ok {
		return p, nil
	}
	return Money{}, &MissingPriceError{Symbol: symbol, On: on.String()}
}

// priceAsOf is like PriceHistory.ValueAsOf but returns a *MissingPriceError.
func priceAsOf(symbol string, h *PriceHistory, on date.Date) (Money, error) {
	if h != nil {
		if p, ok := h.ValueAsOf(on); ok {
			return p, nil
		}
	}
	return Money{}, &MissingPriceError{Symbol: symbol, On: on.String()}
}
