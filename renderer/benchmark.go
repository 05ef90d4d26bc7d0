package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/basis"
)

// BenchmarkMarkdown renders a portfolio against benchmark comparison.
func BenchmarkMarkdown(c *basis.Comparison, f Formatter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Performance from %s to %s\n\n", c.Range.From, c.Range.To)
	fmt.Fprintf(&b, "Final value %s for %s invested (%s net flows).\n\n",
		f.Money(c.FinalValue), f.Money(c.GrossInflows), f.Signed(c.NetFlows))

	fmt.Fprintln(&b, "| | Time Weighted | Cash Weighted | Alpha | Weighted Alpha | Same Timing Value |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	fmt.Fprintf(&b, "| **Portfolio** | **%s** | **%s** | | | **%s** |\n",
		c.TWR.SignedPercent(), c.Weighted.SignedPercent(), f.Money(c.FinalValue))
	for _, bm := range c.Benchmarks {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			bm.Symbol,
			bm.TWR.SignedPercent(),
			bm.Weighted.SignedPercent(),
			bm.Alpha.SignedPercent(),
			bm.WeightedAlpha.SignedPercent(),
			f.Money(bm.FinalValue),
		)
	}
	return b.String()
}
