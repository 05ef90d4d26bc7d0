package basis

import (
	"fmt"

	"github.com/etnz/basis/date"
)

// TradeStats summarizes the signed realized P/L of sells.
//
// A sell with exactly zero P/L counts as a trade but neither as a win nor a loss.
type TradeStats struct {
	Trades      int
	Wins        int
	Losses      int
	WinRate     Ratio
	GrossProfit Money
	GrossLoss   Money // Positive magnitude of the losses.
	AverageWin  Money
	AverageLoss Money // Positive magnitude.
	// ProfitFactor is GrossProfit / GrossLoss, infinite when there are trades
	// but no loss, and zero without trades. Trades that all break even have
	// no loss either, so their factor is infinite too.
	ProfitFactor Factor
	// Average holding periods in days of the lot matches of winning and losing trades.
	AvgHoldingDaysWinners Ratio
	AvgHoldingDaysLosers  Ratio
}

// ComputeTradeStats derives trade statistics from sells and their lot matches.
func ComputeTradeStats(sells []SellResult, matches []LotMatch) (TradeStats, error) {
	var s TradeStats
	s.Trades = len(sells)
	for _, sell := range sells {
		switch {
		case sell.PL.IsPositive():
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(sell.PL)
		case sell.PL.IsNegative():
			s.Losses++
			s.GrossLoss = s.GrossLoss.Sub(sell.PL)
		}
	}
	if s.Trades == 0 {
		return s, nil
	}
	var err error
	if s.WinRate, err = Q(s.Wins).Ratio(Q(s.Trades), HalfEven); err != nil {
		return s, err
	}
	if s.Wins > 0 {
		if s.AverageWin, err = s.GrossProfit.Div(Q(s.Wins), HalfEven); err != nil {
			return s, err
		}
	}
	if s.Losses > 0 {
		if s.AverageLoss, err = s.GrossLoss.Div(Q(s.Losses), HalfEven); err != nil {
			return s, err
		}
	}
	if s.GrossLoss.IsZero() {
		s.ProfitFactor = Factor{Infinite: true}
	} else if s.ProfitFactor.Ratio, err = s.GrossProfit.Ratio(s.GrossLoss, HalfEven); err != nil {
		return s, err
	}

	var winDays, winCount, lossDays, lossCount int
	for _, m := range matches {
		switch {
		case m.PL.IsPositive():
			winDays += m.HoldingDays()
			winCount++
		case m.PL.IsNegative():
			lossDays += m.HoldingDays()
			lossCount++
		}
	}
	if winCount > 0 {
		if s.AvgHoldingDaysWinners, err = Q(winDays).Ratio(Q(winCount), HalfEven); err != nil {
			return s, err
		}
	}
	if lossCount > 0 {
		if s.AvgHoldingDaysLosers, err = Q(lossDays).Ratio(Q(lossCount), HalfEven); err != nil {
			return s, err
		}
	}
	return s, nil
}

// OpenTrade is an open lot valued at a market price.
type OpenTrade struct {
	Symbol      string
	LotTxID     string
	Opened      date.Date
	Quantity    Quantity
	Cost        Money
	Value       Money
	PL          Money
	HoldingDays int
	Excursion   *Excursion // Nil until measured.
}

// OpenTrades values the open lots of r at price on day on.
func OpenTrades(r *SymbolResult, price Money, on date.Date) []OpenTrade {
	trades := make([]OpenTrade, 0, len(r.Lots))
	for _, lot := range r.Lots {
		value := price.Mul(lot.Quantity)
		trades = append(trades, OpenTrade{
			Symbol:      r.Symbol,
			LotTxID:     lot.TxID,
			Opened:      lot.Date,
			Quantity:    lot.Quantity,
			Cost:        lot.Cost,
			Value:       value,
			PL:          value.Sub(lot.Cost),
			HoldingDays: on.DaysSince(lot.Date),
		})
	}
	return trades
}

// Excursion measures the closes seen while a trade was held against its
// entry price, the cost per unit fees included.
type Excursion struct {
	MFE Ratio // Best close / entry - 1, never negative.
	MAE Ratio // Worst close / entry - 1, never positive.
	// Efficiency is the share of the best move kept at exit:
	// (exit - entry) / (best - entry), zero when no close beat the entry.
	Efficiency Ratio
}

// measureExcursion scans the closes of h from from to to, both included.
// It returns nil when h has no close in that range.
func measureExcursion(h *PriceHistory, from, to date.Date, entry, exit Money) (*Excursion, error) {
	if h == nil || !entry.IsPositive() {
		return nil, nil
	}
	held := date.Between(from, to)
	best, worst := entry, entry
	found := false
	for on, price := range h.Values() {
		if on.After(to) {
			break
		}
		if !held.Contains(on) {
			continue
		}
		found = true
		if price.GreaterThan(best) {
			best = price
		}
		if price.LessThan(worst) {
			worst = price
		}
	}
	if !found {
		return nil, nil
	}
	var e Excursion
	var err error
	if e.MFE, err = best.Sub(entry).Ratio(entry, HalfEven); err != nil {
		return nil, err
	}
	if e.MAE, err = worst.Sub(entry).Ratio(entry, HalfEven); err != nil {
		return nil, err
	}
	if potential := best.Sub(entry); potential.IsPositive() {
		if e.Efficiency, err = exit.Sub(entry).Ratio(potential, HalfEven); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// MeasureExcursion sets m.Excursion from the closes of h between purchase
// and sale. The exit price is the proceeds per unit.
func (m *LotMatch) MeasureExcursion(h *PriceHistory) error {
	entry, err := m.Cost.Div(m.Quantity, HalfEven)
	if err != nil {
		return err
	}
	exit, err := m.Proceeds.Div(m.Quantity, HalfEven)
	if err != nil {
		return err
	}
	m.Excursion, err = measureExcursion(h, m.Purchased, m.Sold, entry, exit)
	return err
}

// MeasureExcursion sets t.Excursion from the closes of h between the opening
// of the lot and on. The exit price is the current value per unit.
func (t *OpenTrade) MeasureExcursion(h *PriceHistory, on date.Date) error {
	entry, err := t.Cost.Div(t.Quantity, HalfEven)
	if err != nil {
		return err
	}
	exit, err := t.Value.Div(t.Quantity, HalfEven)
	if err != nil {
		return err
	}
	t.Excursion, err = measureExcursion(h, t.Opened, on, entry, exit)
	return err
}

// MeasureExcursions measures every closed trade of r and every open trade
// against the price histories of md. Trades of symbols without history are
// left unmeasured.
func MeasureExcursions(r *PLReport, open []OpenTrade, md *MarketData) error {
	for i := range r.Matches {
		m := &r.Matches[i]
		if err := m.MeasureExcursion(md.History(m.Symbol)); err != nil {
			return fmt.Errorf("%s: %w", m.Symbol, err)
		}
	}
	for i := range open {
		t := &open[i]
		if err := t.MeasureExcursion(md.History(t.Symbol), r.Range.To); err != nil {
			return fmt.Errorf("%s: %w", t.Symbol, err)
		}
	}
	return nil
}
