package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/basis"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats ledger files into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `pnl fmt <file.jsonl>...

  Validates and formats ledger files in place. This command reads all
  transactions, validates them, sorts them by date then id, and writes them
  back in a canonical JSONL format.

Usage Examples:
$ pnl fmt transactions.jsonl

`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one ledger file is required")
		return subcommands.ExitUsageError
	}
	for _, name := range f.Args() {
		if err := formatLedger(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting ledger %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Formatted ledger %q.\n", name)
	}
	return subcommands.ExitSuccess
}

func formatLedger(name string) error {
	txs, err := decodeLedger(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := basis.EncodeTransactions(&buf, txs); err != nil {
		return err
	}
	return os.WriteFile(name, buf.Bytes(), 0o644)
}
