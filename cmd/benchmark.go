package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/basis"
	"github.com/etnz/basis/renderer"
	"github.com/google/subcommands"
)

type benchmarkCmd struct {
	rangeFlags
	outputFlags
	benchmarks string
	realized   bool
	chart      string
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "compare the portfolio return against benchmarks" }
func (*benchmarkCmd) Usage() string {
	return `pnl benchmark [-s <date>] [-d <date>] [-b <symbols>] [-realized] [-chart <file.png>] [-format <format>]

  Computes the time weighted and the cash flow weighted return of the
  portfolio, and of each benchmark given the same cash flows on the same
  dates. Buys are inflows, sells and distributions are outflows.
`
}

func (c *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.set(f)
	c.outputFlags.set(f)
	f.StringVar(&c.benchmarks, "b", "", "Comma separated benchmark symbols, defaults to the settings")
	f.BoolVar(&c.realized, "realized", false, "Add the cumulated realized gains to the daily series")
	f.StringVar(&c.chart, "chart", "", "Write a PNG chart of the returns to this file")
}

func (c *benchmarkCmd) symbols(e *env) []string {
	if c.benchmarks == "" {
		return e.settings.Benchmarks
	}
	var symbols []string
	for _, s := range strings.Split(c.benchmarks, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func (c *benchmarkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}
	opts, err := reportOptions(e, c.rangeFlags, "", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return subcommands.ExitUsageError
	}
	txs, err := e.transactions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := e.market(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}

	in, err := comparisonInput(txs, md, opts, c.symbols(e), c.realized)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing comparison: %v\n", err)
		return subcommands.ExitFailure
	}
	cmp, err := basis.Compare(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing: %v\n", err)
		return subcommands.ExitFailure
	}
	e.log.Debug().Int("days", len(cmp.Series)).Int("benchmarks", len(cmp.Benchmarks)).Msg("comparison computed")

	if c.chart != "" {
		png, err := renderer.ReturnChart(cmp)
		if err := writeChart(c.chart, png, err); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.chart, err)
			return subcommands.ExitFailure
		}
	}
	if err := c.print("Performance", renderer.BenchmarkMarkdown(cmp, e.formatter())); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// comparisonInput derives the portfolio flows and valuations from txs and
// collects the benchmark histories.
func comparisonInput(txs []basis.Transaction, md *basis.MarketData, opts basis.ReportOptions, symbols []string, realized bool) (basis.ComparisonInput, error) {
	flows, valuations, err := basis.InvestmentTimeline(txs, md.Histories(), opts.Range)
	if err != nil {
		return basis.ComparisonInput{}, err
	}
	in := basis.ComparisonInput{
		CashFlows:  flows,
		Valuations: valuations,
		Benchmarks: make(map[string]*basis.PriceHistory, len(symbols)),
	}
	for _, symbol := range symbols {
		h := md.History(symbol)
		if h == nil {
			return in, fmt.Errorf("%w: no price history for benchmark %q", basis.ErrMissingPriceData, symbol)
		}
		in.Benchmarks[symbol] = h
	}
	if realized {
		report, err := basis.BuildPLReport(txs, md, opts)
		if err != nil {
			return in, err
		}
		in.Realized = basis.RealizedFlows(report)
	}
	return in, nil
}
