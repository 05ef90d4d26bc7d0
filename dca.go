package basis

import (
	"fmt"

	"github.com/etnz/basis/date"
)

// Purchase is a cash amount converted into units of a symbol.
//
// A negative Amount is a sale; Units is then negative too.
type Purchase struct {
	Date   date.Date
	Amount Money
	Price  Money
	Units  Quantity
}

// holding replays cash flows into a single symbol at its as-of prices.
type holding struct {
	symbol  string
	history *PriceHistory

	units   Quantity
	gross   Money // Sum of inflows.
	net     Money // Sum of signed flows.
	applied []Purchase
}

// apply converts amount into units at the most recent price on or before on.
//
// Withdrawals larger than the position liquidate it entirely.
// Only the liquidation proceeds then count as a flow.
func (h *holding) apply(on date.Date, amount Money) error {
	if amount.IsZero() {
		return nil
	}
	price, err := priceAsOf(h.symbol, h.history, on)
	if err != nil {
		return err
	}
	units, err := amount.DivPrice(price, HalfEven)
	if err != nil {
		return err
	}
	if units.IsNegative() && units.Abs().GreaterThan(h.units) {
		units = h.units.Neg()
		amount = price.Mul(units)
	}
	h.net = h.net.Add(amount)
	if amount.IsPositive() {
		h.gross = h.gross.Add(amount)
	}
	h.units = h.units.Add(units)
	h.applied = append(h.applied, Purchase{Date: on, Amount: amount, Price: price, Units: units})
	return nil
}

// weighted returns (value - net flows) / gross inflows, zero without inflows.
func (h *holding) weighted(value Money) (Ratio, error) {
	if h.gross.IsZero() {
		return Ratio{}, nil
	}
	return value.Sub(h.net).Ratio(h.gross, HalfEven)
}

// DCAParams describe a periodic investment plan.
type DCAParams struct {
	Symbol    string
	Frequency Frequency
	Amount    Money
	Start     date.Date
	End       date.Date
}

// DCAResult is the outcome of a simulated plan.
type DCAResult struct {
	Params        DCAParams
	Purchases     []Purchase
	Skipped       []date.Date // Scheduled dates before the first available quote.
	Units         Quantity
	TotalInvested Money
	FinalPrice    Money
	FinalValue    Money
	TotalReturn   Ratio // FinalValue / TotalInvested - 1.
	Series        []DailyReturn
}

// SimulateDCA invests p.Amount in p.Symbol on every scheduled date between
// p.Start and p.End.
//
// Each purchase uses the most recent close on or before its date, never a
// later one. The final value uses the last close on or before p.End.
func SimulateDCA(p DCAParams, history *PriceHistory) (*DCAResult, error) {
	if !p.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %d", ErrInvalidArgument, int(p.Frequency))
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: investment amount must be positive, got %s", ErrInvalidArgument, p.Amount)
	}
	if p.Start.IsZero() || p.End.Before(p.Start) {
		return nil, fmt.Errorf("%w: invalid plan period %s..%s", ErrInvalidArgument, p.Start, p.End)
	}
	if history == nil || history.Len() == 0 {
		return nil, &MissingPriceError{Symbol: p.Symbol}
	}

	res := &DCAResult{Params: p}
	h := &holding{symbol: p.Symbol, history: history}
	first, _ := history.First()
	for _, on := range p.Frequency.Schedule(p.Start, p.End) {
		if on.Before(first) {
			res.Skipped = append(res.Skipped, on)
			continue
		}
		if err := h.apply(on, p.Amount); err != nil {
			return nil, err
		}
	}
	if len(h.applied) == 0 {
		return nil, &MissingPriceError{Symbol: p.Symbol, On: p.End.String()}
	}
	res.Purchases = h.applied
	res.Units = h.units
	res.TotalInvested = h.gross

	var err error
	if res.FinalPrice, err = priceAsOf(p.Symbol, history, p.End); err != nil {
		return nil, err
	}
	res.FinalValue = res.FinalPrice.Mul(res.Units)
	ratio, err := res.FinalValue.Ratio(res.TotalInvested, HalfEven)
	if err != nil {
		return nil, err
	}
	res.TotalReturn = ratio.Sub(One)

	if res.Series, err = dcaSeries(res, history); err != nil {
		return nil, err
	}
	return res, nil
}

// dcaSeries values the plan on every quote and purchase date from the first purchase to the end.
func dcaSeries(res *DCAResult, history *PriceHistory) ([]DailyReturn, error) {
	var purchaseDays []date.Date
	for _, b := range res.Purchases {
		purchaseDays = append(purchaseDays, b.Date)
	}
	span := date.Between(res.Purchases[0].Date, res.Params.End)

	var series []DailyReturn
	var units Quantity
	var invested Money
	next := 0
	for on := range date.Union(history.Days(), purchaseDays) {
		if !span.Contains(on) {
			continue
		}
		var flow *Money
		for next < len(res.Purchases) && !res.Purchases[next].Date.After(on) {
			b := res.Purchases[next]
			units = units.Add(b.Units)
			invested = invested.Add(b.Amount)
			if b.Date == on {
				amount := b.Amount
				flow = &amount
			}
			next++
		}
		price, err := priceAsOf(res.Params.Symbol, history, on)
		if err != nil {
			return nil, err
		}
		ratio, err := price.Mul(units).Ratio(invested, HalfEven)
		if err != nil {
			return nil, err
		}
		r := ratio.Sub(One)
		series = append(series, DailyReturn{Date: on, Return: r, Weighted: r, CashFlow: flow})
	}
	return series, nil
}
