// Package cmd implements the pnl command line: importing transactions, and
// reporting gains, trades, performance against benchmarks and DCA simulations.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/basis"
	"github.com/etnz/basis/config"
	"github.com/etnz/basis/date"
	"github.com/etnz/basis/market"
	"github.com/etnz/basis/renderer"
	"github.com/etnz/basis/store"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "basis.toml", "Path to the settings file (TOML, or YAML with a .yaml extension)")
	ledgerFile = flag.String("ledger-file", "", "Path to a JSONL ledger. When empty, transactions are read from the store")
	storePath  = flag.String("store", "", "Path to the SQLite store, overrides store.path")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides log.level")
	currency   = flag.String("currency", "", "Display currency, overrides currency")
)

// stdout receives the reports.
var stdout io.Writer = os.Stdout

type entry struct {
	group string
	cmd   subcommands.Command
}

func commands() []entry {
	return []entry{
		{"ledger", &importCmd{}},
		{"ledger", &fmtCmd{}},
		{"reports", &gainsCmd{}},
		{"reports", &tradesCmd{}},
		{"reports", &benchmarkCmd{}},
		{"reports", &dcaCmd{}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands() {
		c.Register(e.cmd, e.group)
	}
}

// env is the state shared by the subcommands: settings and logger.
type env struct {
	settings *config.Settings
	log      *Logger
}

// loadEnv reads the settings file and applies the global flags over it.
func loadEnv() (*env, error) {
	s, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *storePath != "" {
		s.Store.Path = *storePath
	}
	if *logLevel != "" {
		s.Logging.Level = *logLevel
	}
	if *currency != "" {
		s.Currency = strings.ToUpper(*currency)
	}
	return &env{settings: s, log: NewLogger(s.Logging.Level)}, nil
}

func (e *env) formatter() renderer.Formatter { return renderer.NewFormatter(e.settings.Currency) }

// transactions loads the ledger file if one is given, the store otherwise.
func (e *env) transactions(ctx context.Context) ([]basis.Transaction, error) {
	if *ledgerFile != "" {
		return decodeLedger(*ledgerFile)
	}
	st, err := store.Open(ctx, e.settings.Store.Path, e.log.Logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Transactions(ctx)
}

// decodeLedger reads a JSONL ledger file, sorted by date then id.
func decodeLedger(name string) ([]basis.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %q: %w", name, err)
	}
	defer f.Close()
	txs, err := basis.DecodeTransactions(name, f)
	if err != nil {
		return nil, err
	}
	basis.SortTransactions(txs)
	return txs, nil
}

// market loads the price files and quotes named in the settings.
func (e *env) market(ctx context.Context) (*basis.MarketData, error) {
	sel := e.settings.Market.Selectors
	l := market.NewLoader(e.log.Logger).WithSelectors(market.Selectors{Dates: sel.Dates, Prices: sel.Prices})
	if err := l.LoadFiles(ctx, e.settings.Market.Prices...); err != nil {
		return nil, err
	}
	if q := e.settings.Market.Quotes; q != "" {
		if err := l.LoadQuotesFile(ctx, q); err != nil {
			return nil, err
		}
	}
	return l.Market(), nil
}

// rangeFlags are the -s and -d flags of the reports.
type rangeFlags struct {
	start string
	end   string
}

func (r *rangeFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.start, "s", "", "Start date of the reporting range, inception when empty")
	f.StringVar(&r.end, "d", date.Today().String(), "End date of the reporting range")
}

func (r *rangeFlags) parse() (date.Range, error) {
	end, err := date.Parse(r.end)
	if err != nil {
		return date.Range{}, fmt.Errorf("end date: %w", err)
	}
	if r.start == "" {
		return date.Range{To: end}, nil
	}
	start, err := date.Parse(r.start)
	if err != nil {
		return date.Range{}, fmt.Errorf("start date: %w", err)
	}
	return date.Between(start, end), nil
}

// outputFlags select how a markdown report is printed.
type outputFlags struct {
	format string
}

func (o *outputFlags) set(f *flag.FlagSet) {
	f.StringVar(&o.format, "format", "term", "Output format (term, md, html)")
}

func (o *outputFlags) print(title, md string) error {
	switch o.format {
	case "md":
		_, err := fmt.Fprint(stdout, md)
		return err
	case "html":
		body, err := renderer.HTML(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, renderer.HTMLPage(title, body))
		return err
	case "term", "":
		printMarkdown(md)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}
}

// printMarkdown renders markdown for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

func writeChart(name string, png []byte, err error) error {
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := os.WriteFile(name, png, 0o644); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	return nil
}
