package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/basis"
)

// GainsMarkdown renders the profit and loss of a report.
func GainsMarkdown(r *basis.PLReport, f Formatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Gains Report from %s to %s\n\n", fromLabel(r), r.Range.To)
	fmt.Fprintf(&b, "Method: %s\n\n", r.Method)

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Realized | %s |\n", f.Signed(r.Realized))
	fmt.Fprintf(&b, "| Unrealized | %s |\n", f.Signed(r.Unrealized))
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", f.Signed(r.Total))
	fmt.Fprintf(&b, "| Income | %s |\n", f.Signed(r.Income))
	fmt.Fprintf(&b, "| Market Value | %s |\n", f.Money(r.TotalValue))
	fmt.Fprintf(&b, "| Open Cost | %s |\n", f.Money(r.TotalCost))
	fmt.Fprintf(&b, "| Return | %s |\n\n", r.Return.SignedPercent())

	fmt.Fprint(&b, "## Gains per Symbol\n\n")
	fmt.Fprintln(&b, "| Symbol | Quantity | Avg Cost | Price | Realized | Unrealized | Total | Return |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, symbol := range r.SortedSymbols() {
		s := r.Symbols[symbol]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			symbol,
			s.Quantity,
			f.Money(s.AverageCost),
			f.Money(s.Price),
			f.Signed(s.Realized),
			f.Signed(s.Unrealized),
			f.Signed(s.Total()),
			s.Return.SignedPercent(),
		)
	}
	fmt.Fprintf(&b, "| **%s** | | | | **%s** | **%s** | **%s** | **%s** |\n",
		"Total",
		f.Signed(r.Realized),
		f.Signed(r.Unrealized),
		f.Signed(r.Total),
		r.Return.SignedPercent(),
	)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Realized per %s\n\n", r.Period.Name())
		fmt.Fprintln(w, "| Period | Trades | Realized |")
		fmt.Fprintln(w, "|:---|---:|---:|")
		for _, p := range r.Periods {
			fmt.Fprintf(w, "| %s | %d | %s |\n", p.Range.Identifier(), p.Trades, f.Signed(p.Realized))
		}
		return len(r.Periods) > 0
	})

	return b.String()
}

func fromLabel(r *basis.PLReport) string {
	if r.Range.From.IsZero() {
		return "inception"
	}
	return r.Range.From.String()
}
