package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/basis"
	"github.com/etnz/basis/store"
	"github.com/google/subcommands"
)

type importCmd struct {
	source string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import JSONL transaction files into the store" }
func (*importCmd) Usage() string {
	return `pnl import [-source <name>] <file.jsonl>...

  Validates and imports transactions into the SQLite store. Transactions
  already imported, from this file or another, are skipped. Transactions
  without id get a time ordered one.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "Name recorded for the import batch, defaults to the file name")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one file to import is required")
		return subcommands.ExitUsageError
	}
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}

	st, err := store.Open(ctx, e.settings.Store.Path, e.log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	for _, name := range f.Args() {
		txs, err := decodeFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		source := c.source
		if source == "" {
			source = filepath.Base(name)
		}
		batch, err := st.Import(ctx, source, txs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "%s: %d imported, %d duplicates (batch %s)\n", name, batch.Inserted, batch.Duplicates, batch.ID)
	}
	return subcommands.ExitSuccess
}

func decodeFile(name string) ([]basis.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return basis.DecodeTransactions(name, f)
}
