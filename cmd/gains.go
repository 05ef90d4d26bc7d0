package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/basis"
	"github.com/etnz/basis/date"
	"github.com/etnz/basis/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	rangeFlags
	outputFlags
	period string
	method string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized and unrealized gain analysis" }
func (*gainsCmd) Usage() string {
	return `pnl gains [-s <date>] [-d <date>] [-period <period>] [-method <method>] [-format <format>]

  Calculates and displays realized and unrealized gains for each symbol, and
  the realized gains of each period of the range.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.set(f)
	c.outputFlags.set(f)
	f.StringVar(&c.period, "period", "", "Period of the realized breakdown (day, week, month, quarter, year), defaults to the settings")
	f.StringVar(&c.method, "method", "", "Cost basis method (fifo, average), defaults to the settings")
}

// reportOptions resolves the report options from the flags over the settings.
func reportOptions(e *env, rf rangeFlags, method, period string) (basis.ReportOptions, error) {
	opts := basis.ReportOptions{
		Method:  e.settings.CostBasisMethod(),
		Period:  e.settings.ReportPeriod(),
		Workers: e.settings.Workers,
	}
	var err error
	if opts.Range, err = rf.parse(); err != nil {
		return opts, err
	}
	if method != "" {
		if opts.Method, err = basis.ParseCostBasisMethod(method); err != nil {
			return opts, err
		}
	}
	if period != "" {
		if opts.Period, err = date.ParsePeriod(period); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}
	opts, err := reportOptions(e, c.rangeFlags, c.method, c.period)
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

	report, err := basis.BuildPLReport(txs, md, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}
	e.log.Debug().Int("symbols", report.SymbolCount).Int("transactions", report.TransactionCount).Msg("gains computed")

	if err := c.print("Gains", renderer.GainsMarkdown(report, e.formatter())); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
