package basis

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/etnz/basis/date"
	"golang.org/x/sync/errgroup"
)

// ReportOptions parameterize BuildPLReport.
type ReportOptions struct {
	Method CostBasisMethod
	// Range selects the sells counted as realized. Open positions are valued
	// on Range.To, transactions after it are ignored.
	Range date.Range
	// Period is the size of the realized P/L buckets.
	Period date.Period
	// Workers bounds the number of symbols computed concurrently, GOMAXPROCS if not positive.
	Workers int
}

// SymbolPL is the profit and loss of a single symbol over a range.
type SymbolPL struct {
	Symbol           string
	Quantity         Quantity // Open quantity at the end of the range.
	OpenCost         Money
	AverageCost      Money
	Price            Money // Price used for the open quantity, zero when nothing is open.
	Realized         Money // Sells within the range.
	Unrealized       Money
	TotalInvested    Money // Buy costs up to the end of the range, fees included.
	CurrentValue     Money
	Income           Money
	Return           Ratio // (Realized + Unrealized) / TotalInvested.
	TransactionCount int
	Sells            []SellResult // Sells within the range.
	Matches          []LotMatch   // Lot matches of those sells.
}

// Total returns realized plus unrealized P/L.
func (s SymbolPL) Total() Money { return s.Realized.Add(s.Unrealized) }

// PeriodPL is the realized P/L of sells dated within a calendar period.
type PeriodPL struct {
	Range    date.Range
	Realized Money
	Trades   int
}

// PLReport aggregates SymbolPL entries. It is immutable: With returns a new report.
type PLReport struct {
	Range            date.Range
	Method           CostBasisMethod
	Period           date.Period
	Realized         Money
	Unrealized       Money
	Total            Money
	Income           Money
	TotalValue       Money // Market value of open positions.
	TotalCost        Money // Cost basis of open positions.
	Return           Ratio // Total / TotalCost, zero without open cost.
	Symbols          map[string]SymbolPL
	TransactionCount int
	SymbolCount      int
	Periods          []PeriodPL
	Stats            TradeStats
	Matches          []LotMatch
}

// NewPLReport returns an empty report.
func NewPLReport(r date.Range, method CostBasisMethod, period date.Period) *PLReport {
	return &PLReport{Range: r, Method: method, Period: period, Symbols: map[string]SymbolPL{}}
}

// With returns a copy of the report where the entry of s.Symbol is s.
func (r *PLReport) With(s SymbolPL) (*PLReport, error) {
	symbols := maps.Clone(r.Symbols)
	if symbols == nil {
		symbols = make(map[string]SymbolPL)
	}
	symbols[s.Symbol] = s
	next := NewPLReport(r.Range, r.Method, r.Period)
	next.Symbols = symbols
	if err := next.fold(); err != nil {
		return nil, err
	}
	return next, nil
}

// SortedSymbols returns the report symbols in lexical order.
func (r *PLReport) SortedSymbols() []string { return slices.Sorted(maps.Keys(r.Symbols)) }

// fold recomputes every aggregate from Symbols, in symbol order.
func (r *PLReport) fold() error {
	var sells []SellResult
	var matches []LotMatch
	for _, sym := range r.SortedSymbols() {
		s := r.Symbols[sym]
		r.Realized = r.Realized.Add(s.Realized)
		r.Unrealized = r.Unrealized.Add(s.Unrealized)
		r.Income = r.Income.Add(s.Income)
		r.TotalValue = r.TotalValue.Add(s.CurrentValue)
		r.TotalCost = r.TotalCost.Add(s.OpenCost)
		r.TransactionCount += s.TransactionCount
		sells = append(sells, s.Sells...)
		matches = append(matches, s.Matches...)
	}
	r.SymbolCount = len(r.Symbols)
	r.Total = r.Realized.Add(r.Unrealized)
	if !r.TotalCost.IsZero() {
		ret, err := r.Total.Ratio(r.TotalCost, HalfEven)
		if err != nil {
			return err
		}
		r.Return = ret
	}
	slices.SortStableFunc(matches, func(a, b LotMatch) int { return a.Sold.Compare(b.Sold) })
	r.Matches = matches
	r.Periods = bucketSells(sells, r.Period)

	stats, err := ComputeTradeStats(sells, matches)
	if err != nil {
		return err
	}
	r.Stats = stats
	return nil
}

// bucketSells groups realized P/L by the period containing each sale date.
// Periods between the first and last sale without any sell get an empty bucket.
func bucketSells(sells []SellResult, p date.Period) []PeriodPL {
	if len(sells) == 0 {
		return nil
	}
	first, last := sells[0].Date, sells[0].Date
	buckets := make(map[date.Range]*PeriodPL)
	for _, s := range sells {
		rng := p.Range(s.Date)
		b, ok := buckets[rng]
		if !ok {
			b = &PeriodPL{Range: rng}
			buckets[rng] = b
		}
		b.Realized = b.Realized.Add(s.PL)
		b.Trades++
		if s.Date.Before(first) {
			first = s.Date
		}
		if s.Date.After(last) {
			last = s.Date
		}
	}
	var periods []PeriodPL
	for rng := range date.Between(first, last).Periods(p) {
		b, ok := buckets[rng]
		if !ok {
			b = &PeriodPL{Range: rng}
		}
		periods = append(periods, *b)
	}
	return periods
}

// BuildPLReport computes the P/L of every symbol in txs and folds them into a report.
//
// Each symbol's records must be sorted by date then id. Symbols are computed
// concurrently; a failing symbol fails the report and the errors of all
// failing symbols are joined in symbol order.
func BuildPLReport(txs []Transaction, prices Valuer, opts ReportOptions) (*PLReport, error) {
	if opts.Range.To.IsZero() {
		return nil, fmt.Errorf("%w: report range has no end date", ErrInvalidArgument)
	}
	groups := GroupBySymbol(txs)
	symbols := slices.Sorted(maps.Keys(groups))

	results := make([]SymbolPL, len(symbols))
	errs := make([]error, len(symbols))
	var g errgroup.Group
	g.SetLimit(cmp.Or(max(opts.Workers, 0), runtime.GOMAXPROCS(0)))
	for i, sym := range symbols {
		g.Go(func() error {
			results[i], errs[i] = computeSymbol(sym, groups[sym], prices, opts)
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	report := NewPLReport(opts.Range, opts.Method, opts.Period)
	for _, s := range results {
		report.Symbols[s.Symbol] = s
	}
	if err := report.fold(); err != nil {
		return nil, err
	}
	return report, nil
}

// computeSymbol replays txs up to the end of the range and values the open position.
func computeSymbol(symbol string, txs []Transaction, prices Valuer, opts ReportOptions) (SymbolPL, error) {
	end := opts.Range.To
	n := len(txs)
	for n > 0 && txs[n-1].Day().After(end) {
		n--
	}
	// Dates after the end may hide an ordering error in the dropped tail.
	if err := checkOrder(txs); err != nil {
		return SymbolPL{}, fmt.Errorf("%s: %w", symbol, err)
	}
	txs = txs[:n]

	res, err := ComputeSymbolPL(txs, opts.Method)
	if err != nil {
		return SymbolPL{}, err
	}
	s := SymbolPL{
		Symbol:           symbol,
		Quantity:         res.Quantity,
		OpenCost:         res.Cost,
		TotalInvested:    res.Invested,
		Income:           res.Income,
		TransactionCount: len(txs),
	}
	for _, sell := range res.Sells {
		if opts.Range.Contains(sell.Date) {
			s.Realized = s.Realized.Add(sell.PL)
			s.Sells = append(s.Sells, sell)
		}
	}
	for _, m := range res.Matches {
		if opts.Range.Contains(m.Sold) {
			s.Matches = append(s.Matches, m)
		}
	}
	if s.AverageCost, err = res.AverageCost(); err != nil {
		return SymbolPL{}, err
	}
	if !res.Quantity.IsZero() {
		if s.Price, err = prices.Price(symbol, end); err != nil {
			return SymbolPL{}, err
		}
		s.CurrentValue = s.Price.Mul(res.Quantity)
		s.Unrealized = s.CurrentValue.Sub(res.Cost)
	}
	if !s.TotalInvested.IsZero() {
		if s.Return, err = s.Total().Ratio(s.TotalInvested, HalfEven); err != nil {
			return SymbolPL{}, err
		}
	}
	return s, nil
}
