package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/basis"
	"github.com/etnz/basis/renderer"
	"github.com/google/subcommands"
)

type tradesCmd struct {
	rangeFlags
	outputFlags
	method string
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "closed and open trades with win/loss statistics" }
func (*tradesCmd) Usage() string {
	return `pnl trades [-s <date>] [-d <date>] [-method <method>] [-format <format>]

  Lists every lot matched by a sell within the range, the lots still open at
  its end, and statistics over the closed trades: win rate, profit factor
  and holding days. Trades of symbols with a price history also show their
  maximum favorable and adverse excursions (MFE, MAE) and the share of the
  best move kept at exit.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.set(f)
	c.outputFlags.set(f)
	f.StringVar(&c.method, "method", "", "Cost basis method (fifo, average), defaults to the settings")
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}
	opts, err := reportOptions(e, c.rangeFlags, c.method, "")
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
		fmt.Fprintf(os.Stderr, "Error calculating trades: %v\n", err)
		return subcommands.ExitFailure
	}
	open, err := openTrades(txs, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating open trades: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := basis.MeasureExcursions(report, open, md); err != nil {
		fmt.Fprintf(os.Stderr, "Error measuring excursions: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.print("Trades", renderer.TradesMarkdown(report, open, e.formatter())); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// openTrades values the open lots of every symbol of the report at the
// price the report used.
func openTrades(txs []basis.Transaction, report *basis.PLReport) ([]basis.OpenTrade, error) {
	groups := basis.GroupBySymbol(txs)
	var open []basis.OpenTrade
	for _, symbol := range report.SortedSymbols() {
		s := report.Symbols[symbol]
		if s.Quantity.IsZero() {
			continue
		}
		var upto []basis.Transaction
		for _, tx := range groups[symbol] {
			if !tx.Day().After(report.Range.To) {
				upto = append(upto, tx)
			}
		}
		res, err := basis.ComputeSymbolPL(upto, report.Method)
		if err != nil {
			return nil, err
		}
		open = append(open, basis.OpenTrades(res, s.Price, report.Range.To)...)
	}
	return open, nil
}
