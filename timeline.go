package basis

import (
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/basis/date"
)

// ExternalCashFlows returns the Transfer records of txs as cash flows:
// deposits are positive, withdrawals negative.
func ExternalCashFlows(txs []Transaction) []CashFlow {
	var flows []CashFlow
	for _, tx := range txs {
		if tx.Type == Transfer {
			flows = append(flows, CashFlow{Date: tx.Day(), Amount: tx.Amount})
		}
	}
	slices.SortStableFunc(flows, func(a, b CashFlow) int { return a.Date.Compare(b.Date) })
	return flows
}

// RealizedFlows returns the realized P/L of every sell as a dated amount,
// suitable for the realized overlay of Compare.
func RealizedFlows(r *PLReport) []CashFlow {
	var flows []CashFlow
	for _, m := range r.Matches {
		flows = append(flows, CashFlow{Date: m.Sold, Amount: m.PL})
	}
	return flows
}

// tradeFlow is the cash a record moves in or out of the securities it holds.
func tradeFlow(tx Transaction) (Money, bool) {
	switch tx.Type {
	case Buy:
		return tx.Gross(), true
	case Sell:
		return tx.Gross().Neg(), true
	case Dividend, Interest:
		return tx.Amount.Neg(), true
	default:
		return Money{}, false
	}
}

// InvestmentTimeline derives the portfolio cash flows and daily valuations
// from its transactions, for portfolios without external flow records.
//
// Buys are inflows, sells and distributions outflows. The portfolio is
// valued on every flow date and every quote date of a held symbol within r.
// Positions held before r.From enter as an inflow of their value on r.From.
func InvestmentTimeline(txs []Transaction, histories map[string]*PriceHistory, r date.Range) ([]CashFlow, []Valuation, error) {
	if r.To.IsZero() {
		return nil, nil, fmt.Errorf("%w: timeline range has no end date", ErrInvalidArgument)
	}
	if err := checkOrder(txs); err != nil {
		return nil, nil, err
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if len(txs) == 0 {
		return nil, nil, nil
	}
	start := r.From
	if start.IsZero() {
		start = txs[0].Day()
	}
	span := date.Between(start, r.To)

	var flowDays []date.Date
	flows := make(map[date.Date]Money)
	held := make(map[string]bool)
	for _, tx := range txs {
		if tx.Symbol != "" && tx.Type == Buy && !tx.Day().After(r.To) {
			held[tx.Symbol] = true
		}
		on := tx.Day()
		amount, ok := tradeFlow(tx)
		if !ok || !span.Contains(on) {
			continue
		}
		if _, seen := flows[on]; !seen {
			flowDays = append(flowDays, on)
		}
		flows[on] = flows[on].Add(amount)
	}

	pos := make(map[string]Quantity)
	next := 0
	if !r.From.IsZero() {
		for next < len(txs) && txs[next].Day().Before(start) {
			if err := applyPosition(pos, txs[next]); err != nil {
				return nil, nil, err
			}
			next++
		}
		// Positions carried from before the range enter at their opening value.
		opening, err := valuePositions(pos, histories, start)
		if err != nil {
			return nil, nil, err
		}
		if !opening.IsZero() {
			if _, seen := flows[start]; !seen {
				flowDays = slices.Insert(flowDays, 0, start)
			}
			flows[start] = flows[start].Add(opening)
		}
	}

	series := [][]date.Date{{start, span.To}, flowDays}
	for _, sym := range slices.Sorted(maps.Keys(held)) {
		if h := histories[sym]; h != nil {
			series = append(series, h.Days())
		}
	}

	var cashFlows []CashFlow
	var valuations []Valuation
	for on := range date.Union(series...) {
		if !span.Contains(on) {
			continue
		}
		for next < len(txs) && !txs[next].Day().After(on) {
			if err := applyPosition(pos, txs[next]); err != nil {
				return nil, nil, err
			}
			next++
		}
		value, err := valuePositions(pos, histories, on)
		if err != nil {
			return nil, nil, err
		}
		if flow, ok := flows[on]; ok {
			cashFlows = append(cashFlows, CashFlow{Date: on, Amount: flow})
		}
		valuations = append(valuations, Valuation{Date: on, Value: value})
	}
	return cashFlows, valuations, nil
}

// applyPosition updates quantities held per symbol.
func applyPosition(pos map[string]Quantity, tx Transaction) error {
	switch tx.Type {
	case Buy:
		pos[tx.Symbol] = pos[tx.Symbol].Add(tx.Quantity)
	case Sell:
		q := tx.Quantity.Abs()
		if q.GreaterThan(pos[tx.Symbol]) {
			return &LotShortfallError{Symbol: tx.Symbol, TxID: tx.ID, Date: tx.Date, Requested: q, Available: pos[tx.Symbol]}
		}
		pos[tx.Symbol] = pos[tx.Symbol].Sub(q)
	case Split:
		pos[tx.Symbol] = pos[tx.Symbol].Mul(tx.Quantity)
	}
	return nil
}

func valuePositions(pos map[string]Quantity, histories map[string]*PriceHistory, on date.Date) (Money, error) {
	var total Money
	for _, sym := range slices.Sorted(maps.Keys(pos)) {
		q := pos[sym]
		if q.IsZero() {
			continue
		}
		price, err := priceAsOf(sym, histories[sym], on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(price.Mul(q))
	}
	return total, nil
}
