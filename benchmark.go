package basis

import (
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/basis/date"
	"golang.org/x/sync/errgroup"
)

// CashFlow is money entering (positive) or leaving (negative) the portfolio.
type CashFlow struct {
	Date   date.Date
	Amount Money
}

// Valuation is the end of day value of the portfolio, that day's flow included.
type Valuation struct {
	Date  date.Date
	Value Money
}

// DailyReturn is a point of a cumulative return series.
type DailyReturn struct {
	Date     date.Date
	Return   Ratio  // Time weighted, since the first day of the series.
	Weighted Ratio  // Cash flow weighted, since the first day of the series.
	Realized *Ratio // Cumulative realized P/L over gross inflows, when requested.
	CashFlow *Money // Net flow of the day, nil when there is none.
}

// ComparisonInput gathers what Compare needs. CashFlows, Valuations and
// Realized must be sorted by date; several flows on the same date are summed.
type ComparisonInput struct {
	CashFlows  []CashFlow
	Valuations []Valuation
	Benchmarks map[string]*PriceHistory
	Realized   []CashFlow // Optional realized P/L events for the overlay.
}

// BenchmarkResult compares the portfolio against one benchmark symbol.
type BenchmarkResult struct {
	Symbol        string
	TWR           Ratio // Lump sum: P(end) / P(start) - 1.
	Weighted      Ratio // Same flows, same dates, invested in the benchmark.
	Alpha         Ratio // Portfolio TWR - benchmark TWR.
	WeightedAlpha Ratio // Portfolio weighted - benchmark weighted.
	FinalValue    Money // Value of the same timing replay.
	Series        []DailyReturn
}

// Comparison is the portfolio performance against its benchmarks.
type Comparison struct {
	Range        date.Range
	TWR          Ratio
	Weighted     Ratio // (FinalValue - NetFlows) / GrossInflows.
	FinalValue   Money
	NetFlows     Money
	GrossInflows Money
	Series       []DailyReturn
	Benchmarks   []BenchmarkResult // Sorted by symbol.
}

// timelineDay is a day of the merged valuation and cash flow timeline.
type timelineDay struct {
	date    date.Date
	value   Money
	flow    Money
	hasFlow bool
}

// buildTimeline merges valuations and flows. A flow day without valuation
// carries the last value forward, plus the flow.
func buildTimeline(flows []CashFlow, valuations []Valuation) ([]timelineDay, error) {
	flowByDay := make(map[date.Date]Money)
	var flowDays []date.Date
	for i, f := range flows {
		if i > 0 && f.Date.Before(flows[i-1].Date) {
			return nil, &UnsortedInputError{Index: i, Previous: flows[i-1].Date.String(), Current: f.Date.String()}
		}
		if _, ok := flowByDay[f.Date]; !ok {
			flowDays = append(flowDays, f.Date)
		}
		flowByDay[f.Date] = flowByDay[f.Date].Add(f.Amount)
	}
	valueByDay := make(map[date.Date]Money)
	valueDays := make([]date.Date, 0, len(valuations))
	for i, v := range valuations {
		if i > 0 && !v.Date.After(valuations[i-1].Date) {
			return nil, &UnsortedInputError{Index: i, Previous: valuations[i-1].Date.String(), Current: v.Date.String()}
		}
		valueByDay[v.Date] = v.Value
		valueDays = append(valueDays, v.Date)
	}

	var days []timelineDay
	var last Money
	for on := range date.Union(valueDays, flowDays) {
		flow, hasFlow := flowByDay[on]
		value, ok := valueByDay[on]
		if !ok {
			value = last.Add(flow)
		}
		days = append(days, timelineDay{date: on, value: value, flow: flow, hasFlow: hasFlow})
		last = value
	}
	return days, nil
}

// Compare computes the portfolio time weighted and cash flow weighted returns
// and compares them with each benchmark.
//
// The time weighted return links daily factors (V(d) - CF(d)) / V(d-1); days
// following a zero value have no capital at risk and are skipped. Each
// benchmark replays the portfolio flows at its own as-of prices.
func Compare(in ComparisonInput) (*Comparison, error) {
	days, err := buildTimeline(in.CashFlows, in.Valuations)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no valuation nor cash flow to compare", ErrInvalidArgument)
	}
	c := &Comparison{Range: date.Between(days[0].date, days[len(days)-1].date)}
	if c.Series, err = portfolioSeries(c, days, in.Realized); err != nil {
		return nil, err
	}

	symbols := slices.Sorted(maps.Keys(in.Benchmarks))
	c.Benchmarks = make([]BenchmarkResult, len(symbols))
	var g errgroup.Group
	for i, sym := range symbols {
		g.Go(func() error {
			b, err := compareBenchmark(sym, in.Benchmarks[sym], days)
			if err != nil {
				return fmt.Errorf("benchmark %s: %w", sym, err)
			}
			b.Alpha = c.TWR.Sub(b.TWR)
			b.WeightedAlpha = c.Weighted.Sub(b.Weighted)
			c.Benchmarks[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// portfolioSeries fills c totals and returns the daily series.
func portfolioSeries(c *Comparison, days []timelineDay, realized []CashFlow) ([]DailyReturn, error) {
	series := make([]DailyReturn, 0, len(days))
	growth := One
	var prev, cumRealized Money
	nextRealized := 0
	for i, d := range days {
		if i > 0 && !prev.IsZero() {
			factor, err := d.value.Sub(d.flow).Ratio(prev, HalfEven)
			if err != nil {
				return nil, err
			}
			growth = growth.Mul(factor).Round(DivisionScale)
		}
		prev = d.value
		c.NetFlows = c.NetFlows.Add(d.flow)
		if d.flow.IsPositive() {
			c.GrossInflows = c.GrossInflows.Add(d.flow)
		}
		point := DailyReturn{Date: d.date, Return: growth.Sub(One)}
		if !c.GrossInflows.IsZero() {
			w, err := d.value.Sub(c.NetFlows).Ratio(c.GrossInflows, HalfEven)
			if err != nil {
				return nil, err
			}
			point.Weighted = w
		}
		if d.hasFlow {
			flow := d.flow
			point.CashFlow = &flow
		}
		if realized != nil {
			for nextRealized < len(realized) && !realized[nextRealized].Date.After(d.date) {
				cumRealized = cumRealized.Add(realized[nextRealized].Amount)
				nextRealized++
			}
			var overlay Ratio
			if !c.GrossInflows.IsZero() {
				var err error
				if overlay, err = cumRealized.Ratio(c.GrossInflows, HalfEven); err != nil {
					return nil, err
				}
			}
			point.Realized = &overlay
		}
		series = append(series, point)
	}
	last := series[len(series)-1]
	c.TWR = last.Return
	c.Weighted = last.Weighted
	c.FinalValue = days[len(days)-1].value
	return series, nil
}

// compareBenchmark replays the portfolio flows into symbol.
func compareBenchmark(symbol string, history *PriceHistory, days []timelineDay) (BenchmarkResult, error) {
	b := BenchmarkResult{Symbol: symbol}
	start, err := priceAsOf(symbol, history, days[0].date)
	if err != nil {
		return b, err
	}
	h := &holding{symbol: symbol, history: history}
	for _, d := range days {
		if err := h.apply(d.date, d.flow); err != nil {
			return b, err
		}
		price, err := priceAsOf(symbol, history, d.date)
		if err != nil {
			return b, err
		}
		growth, err := price.Ratio(start, HalfEven)
		if err != nil {
			return b, err
		}
		value := price.Mul(h.units)
		weighted, err := h.weighted(value)
		if err != nil {
			return b, err
		}
		point := DailyReturn{Date: d.date, Return: growth.Sub(One), Weighted: weighted}
		if d.hasFlow {
			flow := d.flow
			point.CashFlow = &flow
		}
		b.Series = append(b.Series, point)
		b.FinalValue = value
	}
	last := b.Series[len(b.Series)-1]
	b.TWR = last.Return
	b.Weighted = last.Weighted
	return b, nil
}
