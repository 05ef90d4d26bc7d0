package basis

import (
	"fmt"

	"github.com/etnz/basis/date"
)

// LotMatch records the part of a lot consumed by a sell.
type LotMatch struct {
	Symbol    string
	LotTxID   string // Empty under weighted average.
	SellTxID  string
	Purchased date.Date
	Sold      date.Date
	Quantity  Quantity
	Cost      Money // Basis released from the lot.
	Proceeds  Money // Share of the sell proceeds, net of its share of fees.
	PL        Money
	Excursion *Excursion // Nil until measured.
}

// HoldingDays returns the number of days the matched units were held.
func (m LotMatch) HoldingDays() int { return m.Sold.DaysSince(m.Purchased) }

// SellResult is the realized contribution of a single sell.
type SellResult struct {
	TxID     string
	Date     date.Date
	Quantity Quantity
	Proceeds Money
	Cost     Money
	PL       Money
}

// SymbolResult is the replay of one symbol's transactions.
type SymbolResult struct {
	Symbol   string
	Method   CostBasisMethod
	Quantity Quantity // Open quantity.
	Cost     Money    // Open cost basis.
	Realized Money
	Invested Money // Sum of buy costs, fees included.
	Income   Money // Dividends and interest.
	Sells    []SellResult
	Matches  []LotMatch
	Lots     []Lot // Open lots, or the aggregate under weighted average.
}

// AverageCost returns the open cost per unit, zero when nothing is open.
func (r *SymbolResult) AverageCost() (Money, error) {
	if r.Quantity.IsZero() {
		return Money{}, nil
	}
	return r.Cost.Div(r.Quantity, HalfEven)
}

// ComputeSymbolPL replays the transactions of a single symbol under method.
//
// txs must be sorted by date then id; it is never re-sorted here. A sell
// exceeding the open quantity stops the replay with a *LotShortfallError.
// A Split multiplies the quantity of every open lot by its ratio, leaving
// their total cost unchanged; later records are in post split units.
func ComputeSymbolPL(txs []Transaction, method CostBasisMethod) (*SymbolResult, error) {
	if method != FIFO && method != WeightedAverage {
		return nil, fmt.Errorf("%w: unknown cost basis method %d", ErrInvalidArgument, method)
	}
	res := &SymbolResult{Method: method}
	if len(txs) == 0 {
		return res, nil
	}
	res.Symbol = txs[0].Symbol
	for _, tx := range txs {
		if tx.Symbol != res.Symbol {
			return nil, fmt.Errorf("%w: %q in a replay of %q", ErrInvalidTransaction, tx.Symbol, res.Symbol)
		}
	}
	if err := checkOrder(txs); err != nil {
		return nil, fmt.Errorf("%s: %w", res.Symbol, err)
	}

	l := newLedger(res.Symbol, method)
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		switch tx.Type {
		case Buy:
			l.buy(tx)
			res.Invested = res.Invested.Add(tx.Gross())
		case Sell:
			if err := res.sell(l, tx); err != nil {
				return nil, err
			}
		case Split:
			l.split(tx.Quantity)
		case Dividend, Interest:
			res.Income = res.Income.Add(tx.Amount)
		}
	}
	res.Quantity, res.Cost = l.open()
	res.Lots = l.snapshot()
	return res, nil
}

func (r *SymbolResult) sell(l *ledger, tx Transaction) error {
	q := tx.Quantity.Abs()
	taken, err := l.sell(tx, q)
	if err != nil {
		return err
	}
	proceeds := tx.Price.Mul(q).Sub(tx.Fees)
	sold := tx.Day()
	var cost, feesLeft = Money{}, tx.Fees
	for i, lot := range taken {
		// Fees are prorated by quantity, the last match takes the remainder so
		// that matches sum exactly to the sell.
		fees := feesLeft
		if i < len(taken)-1 {
			if fees, err = tx.Fees.Mul(lot.Quantity).Div(q, HalfEven); err != nil {
				return err
			}
		}
		feesLeft = feesLeft.Sub(fees)
		p := tx.Price.Mul(lot.Quantity).Sub(fees)
		r.Matches = append(r.Matches, LotMatch{
			Symbol:    r.Symbol,
			LotTxID:   lot.TxID,
			SellTxID:  tx.ID,
			Purchased: lot.Date,
			Sold:      sold,
			Quantity:  lot.Quantity,
			Cost:      lot.Cost,
			Proceeds:  p,
			PL:        p.Sub(lot.Cost),
		})
		cost = cost.Add(lot.Cost)
	}
	pl := proceeds.Sub(cost)
	r.Realized = r.Realized.Add(pl)
	r.Sells = append(r.Sells, SellResult{TxID: tx.ID, Date: sold, Quantity: q, Proceeds: proceeds, Cost: cost, PL: pl})
	return nil
}
