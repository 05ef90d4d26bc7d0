package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/basis"
)

// DCAMarkdown renders a dollar cost averaging simulation.
func DCAMarkdown(res *basis.DCAResult, f Formatter) string {
	var b strings.Builder
	p := res.Params

	fmt.Fprintf(&b, "# DCA %s: %s %s from %s to %s\n\n", p.Symbol, f.Money(p.Amount), p.Frequency, p.Start, p.End)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Purchases | %d |\n", len(res.Purchases))
	fmt.Fprintf(&b, "| Units | %s |\n", res.Units.Decimal().StringFixed(4))
	fmt.Fprintf(&b, "| Invested | %s |\n", f.Money(res.TotalInvested))
	fmt.Fprintf(&b, "| Final Price | %s |\n", f.Money(res.FinalPrice))
	fmt.Fprintf(&b, "| Final Value | %s |\n", f.Money(res.FinalValue))
	fmt.Fprintf(&b, "| Return | %s |\n", res.TotalReturn.SignedPercent())

	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&b, "\n%d scheduled dates before the first price were skipped, from %s to %s.\n",
			n, res.Skipped[0], res.Skipped[n-1])
	}

	fmt.Fprint(&b, "\n## Purchases\n\n")
	fmt.Fprintln(&b, "| Date | Price | Units |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, pu := range res.Purchases {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", pu.Date, f.Money(pu.Price), pu.Units.Decimal().StringFixed(4))
	}
	return b.String()
}
