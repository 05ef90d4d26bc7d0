package basis

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/etnz/basis/date"
)

func jan(d int) date.Date { return date.New(2025, time.January, d) }

func sampleComparison() ComparisonInput {
	return ComparisonInput{
		CashFlows: []CashFlow{
			{Date: jan(1), Amount: money("100")},
			{Date: jan(3), Amount: money("100")},
		},
		Valuations: []Valuation{
			{Date: jan(1), Value: money("100")},
			{Date: jan(2), Value: money("110")},
			{Date: jan(3), Value: money("220")},
			{Date: jan(4), Value: money("231")},
		},
		Benchmarks: map[string]*PriceHistory{
			"SPY": history("2024-12-31", "50", "2025-01-02", "55", "2025-01-03", "60"),
		},
	}
}

func TestCompare(t *testing.T) {
	got, err := Compare(sampleComparison())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	// 1.1 * 120/110 * 231/220 - 1
	if want := MustRatio("0.26"); !got.TWR.Equal(want) {
		t.Errorf("TWR = %v, want %v", got.TWR, want)
	}
	// (231 - 200) / 200
	if want := MustRatio("0.155"); !got.Weighted.Equal(want) {
		t.Errorf("Weighted = %v, want %v", got.Weighted, want)
	}
	if got.Range != date.Between(jan(1), jan(4)) {
		t.Errorf("Range = %v, want 2025-01-01..2025-01-04", got.Range)
	}
	if len(got.Series) != 4 {
		t.Fatalf("len(Series) = %d, want 4", len(got.Series))
	}
	for i, d := range got.Series {
		hasFlow := i == 0 || i == 2
		if (d.CashFlow != nil) != hasFlow {
			t.Errorf("Series[%d].CashFlow = %v, want flow marked %v", i, d.CashFlow, hasFlow)
		}
	}

	if len(got.Benchmarks) != 1 {
		t.Fatalf("len(Benchmarks) = %d, want 1", len(got.Benchmarks))
	}
	b := got.Benchmarks[0]
	// Lump sum from the 2024-12-31 close (as of Jan 1) to the Jan 3 close (as of Jan 4).
	if want := MustRatio("0.2"); !b.TWR.Equal(want) {
		t.Errorf("benchmark TWR = %v, want %v", b.TWR, want)
	}
	if want := MustRatio("0.06"); !b.Alpha.Equal(want) {
		t.Errorf("Alpha = %v, want %v", b.Alpha, want)
	}
	// 2 units on Jan 1 at 50, 100/60 units on Jan 3 at 60, valued at 60.
	if want := MustRatio("0.1"); !b.Weighted.Equal(want) {
		t.Errorf("benchmark Weighted = %v, want %v", b.Weighted, want)
	}
	if want := MustRatio("0.055"); !b.WeightedAlpha.Equal(want) {
		t.Errorf("WeightedAlpha = %v, want %v", b.WeightedAlpha, want)
	}
}

func TestCompare_ZeroFlowIsNeutral(t *testing.T) {
	extended := func() ComparisonInput {
		in := sampleComparison()
		in.Valuations = append(in.Valuations, Valuation{Date: jan(6), Value: money("242.55")})
		return in
	}
	base, err := Compare(extended())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	testCases := []struct {
		name string
		on   date.Date
	}{
		{"on a valuation day", jan(2)},
		{"between valuations", jan(5)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := extended()
			in.CashFlows = append(in.CashFlows, CashFlow{Date: tc.on})
			slices.SortStableFunc(in.CashFlows, func(a, b CashFlow) int { return a.Date.Compare(b.Date) })
			got, err := Compare(in)
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if !got.TWR.Equal(base.TWR) {
				t.Errorf("TWR with a $0 flow = %v, want %v", got.TWR, base.TWR)
			}
			if !got.Weighted.Equal(base.Weighted) {
				t.Errorf("Weighted with a $0 flow = %v, want %v", got.Weighted, base.Weighted)
			}
			if !got.Benchmarks[0].Weighted.Equal(base.Benchmarks[0].Weighted) {
				t.Errorf("benchmark Weighted with a $0 flow = %v, want %v", got.Benchmarks[0].Weighted, base.Benchmarks[0].Weighted)
			}
		})
	}
}

func TestCompare_ZeroCapitalDaysSkipped(t *testing.T) {
	got, err := Compare(ComparisonInput{
		CashFlows: []CashFlow{{Date: jan(2), Amount: money("100")}},
		Valuations: []Valuation{
			{Date: jan(1), Value: Money{}},
			{Date: jan(2), Value: money("100")},
			{Date: jan(3), Value: money("110")},
		},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if want := MustRatio("0.1"); !got.TWR.Equal(want) {
		t.Errorf("TWR = %v, want %v", got.TWR, want)
	}
}

func TestCompare_CarryForward(t *testing.T) {
	// A withdrawal without valuation on Jan 3 carries 110 forward minus 10.
	got, err := Compare(ComparisonInput{
		CashFlows: []CashFlow{{Date: jan(1), Amount: money("100")}, {Date: jan(3), Amount: money("-10")}},
		Valuations: []Valuation{
			{Date: jan(1), Value: money("100")},
			{Date: jan(2), Value: money("110")},
			{Date: jan(4), Value: money("100")},
		},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if v := got.Series[2]; v.CashFlow == nil || !v.CashFlow.Equal(money("-10")) {
		t.Errorf("Series[2].CashFlow = %v, want -10", v.CashFlow)
	}
	// 1.1 * 1 * 100/100 - 1
	if want := MustRatio("0.1"); !got.TWR.Equal(want) {
		t.Errorf("TWR = %v, want %v", got.TWR, want)
	}
	if !got.FinalValue.Equal(money("100")) || !got.NetFlows.Equal(money("90")) || !got.GrossInflows.Equal(money("100")) {
		t.Errorf("totals = %v / %v / %v, want 100 / 90 / 100", got.FinalValue, got.NetFlows, got.GrossInflows)
	}
}

func TestCompare_RealizedOverlay(t *testing.T) {
	in := sampleComparison()
	in.Realized = []CashFlow{{Date: jan(4), Amount: money("20")}}
	got, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if r := got.Series[2].Realized; r == nil || !r.IsZero() {
		t.Errorf("Series[2].Realized = %v, want 0", r)
	}
	if r := got.Series[3].Realized; r == nil || !r.Equal(MustRatio("0.1")) {
		t.Errorf("Series[3].Realized = %v, want 0.1", r)
	}
}

func TestCompare_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := Compare(ComparisonInput{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Compare() error = %v, want %v", err, ErrInvalidArgument)
		}
	})
	t.Run("unsorted valuations", func(t *testing.T) {
		in := sampleComparison()
		in.Valuations[1], in.Valuations[2] = in.Valuations[2], in.Valuations[1]
		if _, err := Compare(in); !errors.Is(err, ErrUnsortedInput) {
			t.Errorf("Compare() error = %v, want %v", err, ErrUnsortedInput)
		}
	})
	t.Run("benchmark starts too late", func(t *testing.T) {
		in := sampleComparison()
		in.Benchmarks["LATE"] = history("2025-01-02", "10")
		_, err := Compare(in)
		if !errors.Is(err, ErrMissingPriceData) {
			t.Errorf("Compare() error = %v, want %v", err, ErrMissingPriceData)
		}
	})
}

func TestHolding_LiquidatesOnLargeWithdrawal(t *testing.T) {
	h := &holding{symbol: "SPY", history: history("2025-01-01", "10", "2025-01-02", "20")}
	if err := h.apply(jan(1), money("100")); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if err := h.apply(jan(2), money("-500")); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if !h.units.IsZero() {
		t.Errorf("units = %v, want 0", h.units)
	}
	last := h.applied[1]
	if !last.Units.Equal(qty("-10")) {
		t.Errorf("withdrawal units = %v, want -10", last.Units)
	}
	if !last.Amount.Equal(money("-200")) {
		t.Errorf("withdrawal amount = %v, want -200", last.Amount)
	}
	if !h.net.Equal(money("-100")) {
		t.Errorf("net = %v, want -100", h.net)
	}
}

func TestCompare_WithdrawalLiquidatesBenchmark(t *testing.T) {
	in := ComparisonInput{
		CashFlows: []CashFlow{
			{Date: jan(1), Amount: money("100")},
			{Date: jan(3), Amount: money("-200")},
		},
		Valuations: []Valuation{
			{Date: jan(1), Value: money("100")},
			{Date: jan(2), Value: money("200")},
			{Date: jan(3), Value: money("0")},
		},
		Benchmarks: map[string]*PriceHistory{
			"SPY": history("2025-01-01", "50", "2025-01-02", "50", "2025-01-03", "50"),
		},
	}
	got, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	// (0 - (100 - 200)) / 100
	if want := MustRatio("1"); !got.Weighted.Equal(want) {
		t.Errorf("Weighted = %v, want %v", got.Weighted, want)
	}
	b := got.Benchmarks[0]
	if !b.TWR.IsZero() {
		t.Errorf("benchmark TWR = %v, want 0", b.TWR)
	}
	// The flat benchmark only gives back the 100 it received.
	if !b.Weighted.IsZero() {
		t.Errorf("benchmark Weighted = %v, want 0", b.Weighted)
	}
	if !b.FinalValue.IsZero() {
		t.Errorf("benchmark FinalValue = %v, want 0", b.FinalValue)
	}
	if want := MustRatio("1"); !b.WeightedAlpha.Equal(want) {
		t.Errorf("WeightedAlpha = %v, want %v", b.WeightedAlpha, want)
	}
}
