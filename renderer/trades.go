package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/basis"
)

// TradesMarkdown renders the trade statistics, the closed trades of a report
// and the open trades given.
func TradesMarkdown(r *basis.PLReport, open []basis.OpenTrade, f Formatter) string {
	var b strings.Builder
	st := r.Stats

	fmt.Fprintf(&b, "# Trades from %s to %s\n\n", fromLabel(r), r.Range.To)

	fmt.Fprint(&b, "## Statistics\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Trades | %d |\n", st.Trades)
	fmt.Fprintf(&b, "| Wins / Losses | %d / %d |\n", st.Wins, st.Losses)
	fmt.Fprintf(&b, "| Win Rate | %s |\n", st.WinRate.Percent())
	fmt.Fprintf(&b, "| Gross Profit | %s |\n", f.Money(st.GrossProfit))
	fmt.Fprintf(&b, "| Gross Loss | %s |\n", f.Money(st.GrossLoss))
	fmt.Fprintf(&b, "| Average Win | %s |\n", f.Money(st.AverageWin))
	fmt.Fprintf(&b, "| Average Loss | %s |\n", f.Money(st.AverageLoss))
	fmt.Fprintf(&b, "| Profit Factor | %s |\n", factor(st.ProfitFactor))
	fmt.Fprintf(&b, "| Avg Days Held (winners) | %s |\n", days(st.AvgHoldingDaysWinners))
	fmt.Fprintf(&b, "| Avg Days Held (losers) | %s |\n", days(st.AvgHoldingDaysLosers))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Closed Trades\n\n")
		fmt.Fprintln(w, "| Symbol | Bought | Sold | Days | Quantity | Cost | Proceeds | P/L | MFE | MAE | Efficiency |")
		fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
		for _, m := range r.Matches {
			fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %s | %s | %s |\n",
				m.Symbol, m.Purchased, m.Sold, m.HoldingDays(), m.Quantity,
				f.Money(m.Cost), f.Money(m.Proceeds), f.Signed(m.PL), excursion(m.Excursion))
		}
		return len(r.Matches) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Open Trades\n\n")
		fmt.Fprintln(w, "| Symbol | Opened | Days | Quantity | Cost | Value | P/L | MFE | MAE | Efficiency |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
		for _, o := range open {
			fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s | %s | %s |\n",
				o.Symbol, o.Opened, o.HoldingDays, o.Quantity,
				f.Money(o.Cost), f.Money(o.Value), f.Signed(o.PL), excursion(o.Excursion))
		}
		return len(open) > 0
	})

	return b.String()
}

// excursion renders the MFE, MAE and efficiency cells, empty when unmeasured.
func excursion(e *basis.Excursion) string {
	if e == nil {
		return " | "
	}
	return fmt.Sprintf("%s | %s | %s", e.MFE.SignedPercent(), e.MAE.SignedPercent(), e.Efficiency.Percent())
}
