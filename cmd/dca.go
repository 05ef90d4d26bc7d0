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

type dcaCmd struct {
	outputFlags
	frequency string
	amount    string
	start     string
	end       string
	chart     string
}

func (*dcaCmd) Name() string     { return "dca" }
func (*dcaCmd) Synopsis() string { return "simulate a dollar cost averaging plan" }
func (*dcaCmd) Usage() string {
	return `pnl dca [-freq <frequency>] [-amount <amount>] [-s <date>] [-d <date>] [-chart <file.png>] <symbol>

  Simulates investing a fixed amount in a symbol at a regular frequency,
  each purchase at the last known close, and reports the final value.
`
}

func (c *dcaCmd) SetFlags(f *flag.FlagSet) {
	c.outputFlags.set(f)
	f.StringVar(&c.frequency, "freq", "", "Purchase frequency (weekly, biweekly, monthly), defaults to the settings")
	f.StringVar(&c.amount, "amount", "", "Amount invested at each purchase, defaults to the settings")
	f.StringVar(&c.start, "s", "", "First purchase date, defaults to the settings")
	f.StringVar(&c.end, "d", date.Today().String(), "End of the plan")
	f.StringVar(&c.chart, "chart", "", "Write a PNG chart of the plan return to this file")
}

// params resolves the plan from the flags over the settings.
func (c *dcaCmd) params(e *env, symbol string) (basis.DCAParams, error) {
	p := basis.DCAParams{
		Symbol:    symbol,
		Frequency: e.settings.DCAFrequency(),
		Amount:    e.settings.DCAAmount(),
		Start:     e.settings.DCAStart(),
	}
	var err error
	if c.frequency != "" {
		if p.Frequency, err = basis.ParseFrequency(c.frequency); err != nil {
			return p, err
		}
	}
	if c.amount != "" {
		if p.Amount, err = basis.ParseMoney(c.amount); err != nil {
			return p, err
		}
	}
	if c.start != "" {
		if p.Start, err = date.Parse(c.start); err != nil {
			return p, err
		}
	}
	if p.End, err = date.Parse(c.end); err != nil {
		return p, err
	}
	return p, nil
}

func (c *dcaCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one symbol is required")
		return subcommands.ExitUsageError
	}
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := c.params(e, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return subcommands.ExitUsageError
	}
	md, err := e.market(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading market data: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := basis.SimulateDCA(p, md.History(p.Symbol))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(res.Skipped) > 0 {
		e.log.Warn().Int("skipped", len(res.Skipped)).Str("symbol", p.Symbol).Msg("purchases scheduled before the first price")
	}

	if c.chart != "" {
		png, err := renderer.DCAChart(res)
		if err := writeChart(c.chart, png, err); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.chart, err)
			return subcommands.ExitFailure
		}
	}
	if err := c.print("DCA "+p.Symbol, renderer.DCAMarkdown(res, e.formatter())); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
