package basis

import (
	"slices"

	"github.com/etnz/basis/date"
)

// Lot is an open purchase of a security, used for cost basis calculations.
type Lot struct {
	TxID     string
	Date     date.Date
	Quantity Quantity
	Cost     Money // Total cost of the remaining quantity, fees included.
}

// CostPerUnit returns the per unit basis of the lot.
func (l Lot) CostPerUnit() (Money, error) { return l.Cost.Div(l.Quantity, HalfEven) }

// ledger holds the open position of a single symbol.
//
// Under FIFO it is an ordered queue of lots, oldest first. Under weighted
// average it is a single aggregate, no discrete lot is retained.
type ledger struct {
	method CostBasisMethod
	symbol string

	lots []Lot

	quantity Quantity
	cost     Money
	since    date.Date // first purchase of the current weighted average position
}

func newLedger(symbol string, method CostBasisMethod) *ledger {
	return &ledger{symbol: symbol, method: method}
}

// open returns the open quantity and its total cost.
func (l *ledger) open() (Quantity, Money) {
	if l.method == WeightedAverage {
		return l.quantity, l.cost
	}
	var q Quantity
	var c Money
	for _, lot := range l.lots {
		q = q.Add(lot.Quantity)
		c = c.Add(lot.Cost)
	}
	return q, c
}

// buy capitalizes quantity*price+fees into the position.
func (l *ledger) buy(tx Transaction) {
	cost := tx.Price.Mul(tx.Quantity).Add(tx.Fees)
	if l.method == WeightedAverage {
		if l.quantity.IsZero() {
			l.since = tx.Day()
		}
		l.quantity = l.quantity.Add(tx.Quantity)
		l.cost = l.cost.Add(cost)
		return
	}
	l.lots = append(l.lots, Lot{TxID: tx.ID, Date: tx.Day(), Quantity: tx.Quantity, Cost: cost})
}

// sell removes q units from the position and returns the slices of lots it
// took, each with the TxID and Date of its source lot.
//
// Nothing is changed when q exceeds the open quantity: the sell is refused
// with a *LotShortfallError.
func (l *ledger) sell(tx Transaction, q Quantity) ([]Lot, error) {
	available, _ := l.open()
	if q.GreaterThan(available) || available.IsZero() {
		return nil, &LotShortfallError{Symbol: l.symbol, TxID: tx.ID, Date: tx.Date, Requested: q, Available: available}
	}
	if l.method == WeightedAverage {
		return l.sellAverage(q)
	}
	return l.sellFIFO(q)
}

func (l *ledger) sellFIFO(q Quantity) ([]Lot, error) {
	var taken []Lot
	remaining := q
	for remaining.IsPositive() {
		head := l.lots[0]
		if !head.Quantity.GreaterThan(remaining) {
			// Full sale of this lot
			taken = append(taken, head)
			remaining = remaining.Sub(head.Quantity)
			l.lots = slices.Delete(l.lots, 0, 1)
			continue
		}
		// Partial sale from this lot
		portion, err := head.Cost.Mul(remaining).Div(head.Quantity, HalfEven)
		if err != nil {
			return nil, err
		}
		taken = append(taken, Lot{TxID: head.TxID, Date: head.Date, Quantity: remaining, Cost: portion})
		l.lots[0].Quantity = head.Quantity.Sub(remaining)
		l.lots[0].Cost = head.Cost.Sub(portion)
		remaining = Quantity{}
	}
	return taken, nil
}

func (l *ledger) sellAverage(q Quantity) ([]Lot, error) {
	synthetic := Lot{Date: l.since, Quantity: q, Cost: l.cost}
	if q.Equal(l.quantity) {
		// Selling everything releases the whole basis, no rounding residue.
		l.quantity, l.cost = Quantity{}, Money{}
		return []Lot{synthetic}, nil
	}
	portion, err := l.cost.Mul(q).Div(l.quantity, HalfEven)
	if err != nil {
		return nil, err
	}
	synthetic.Cost = portion
	l.quantity = l.quantity.Sub(q)
	l.cost = l.cost.Sub(portion)
	return []Lot{synthetic}, nil
}

// split multiplies every open quantity by ratio. Total cost is unchanged.
func (l *ledger) split(ratio Quantity) {
	if l.method == WeightedAverage {
		l.quantity = l.quantity.Mul(ratio)
		return
	}
	for i := range l.lots {
		l.lots[i].Quantity = l.lots[i].Quantity.Mul(ratio)
	}
}

// snapshot returns the open lots. Weighted average reports its aggregate as
// a single lot.
func (l *ledger) snapshot() []Lot {
	if l.method == WeightedAverage {
		if l.quantity.IsZero() {
			return nil
		}
		return []Lot{{Date: l.since, Quantity: l.quantity, Cost: l.cost}}
	}
	return slices.Clone(l.lots)
}
