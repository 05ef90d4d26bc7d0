package basis

import (
	"testing"
	"time"

	"github.com/etnz/basis/date"
)

func sells(pls ...string) []SellResult {
	var s []SellResult
	for _, pl := range pls {
		s = append(s, SellResult{PL: money(pl)})
	}
	return s
}

func TestComputeTradeStats(t *testing.T) {
	testCases := []struct {
		name     string
		sells    []SellResult
		wins     int
		losses   int
		winRate  string
		factor   string
		infinite bool
	}{
		{"no trades", nil, 0, 0, "0", "0", false},
		{"only wins", sells("10", "5"), 2, 0, "1", "0", true},
		{"only breakeven", sells("0"), 0, 0, "0", "0", true},
		{"mixed", sells("30", "-10", "0", "-5"), 1, 2, "0.25", "2", false},
		{"only losses", sells("-1"), 0, 1, "0", "0", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTradeStats(tc.sells, nil)
			if err != nil {
				t.Fatalf("ComputeTradeStats() error = %v", err)
			}
			if got.Trades != len(tc.sells) || got.Wins != tc.wins || got.Losses != tc.losses {
				t.Errorf("ComputeTradeStats() = %d/%d/%d, want %d/%d/%d", got.Trades, got.Wins, got.Losses, len(tc.sells), tc.wins, tc.losses)
			}
			if !got.WinRate.Equal(MustRatio(tc.winRate)) {
				t.Errorf("WinRate = %v, want %v", got.WinRate, tc.winRate)
			}
			if got.ProfitFactor.Infinite != tc.infinite {
				t.Errorf("ProfitFactor.Infinite = %v, want %v", got.ProfitFactor.Infinite, tc.infinite)
			}
			if !tc.infinite && !got.ProfitFactor.Equal(MustRatio(tc.factor)) {
				t.Errorf("ProfitFactor = %v, want %v", got.ProfitFactor, tc.factor)
			}
		})
	}
}

func TestComputeTradeStats_HoldingDays(t *testing.T) {
	matches := []LotMatch{
		{Purchased: date.New(2025, 1, 1), Sold: date.New(2025, 1, 11), PL: money("1")},
		{Purchased: date.New(2025, 1, 1), Sold: date.New(2025, 1, 21), PL: money("2")},
		{Purchased: date.New(2025, 1, 1), Sold: date.New(2025, 1, 4), PL: money("-2")},
	}
	got, err := ComputeTradeStats(sells("3", "-2"), matches)
	if err != nil {
		t.Fatalf("ComputeTradeStats() error = %v", err)
	}
	if !got.AvgHoldingDaysWinners.Equal(MustRatio("15")) || !got.AvgHoldingDaysLosers.Equal(MustRatio("3")) {
		t.Errorf("holding days = %v / %v, want 15 / 3", got.AvgHoldingDaysWinners, got.AvgHoldingDaysLosers)
	}
}

func TestOpenTrades(t *testing.T) {
	res, err := ComputeSymbolPL([]Transaction{
		buy("a", "X", day(2025, time.January, 1), "5", "10", "0"),
		buy("b", "X", day(2025, time.February, 1), "5", "20", "0"),
		sell("s", "X", day(2025, time.March, 1), "2", "30", "0"),
	}, FIFO)
	if err != nil {
		t.Fatalf("ComputeSymbolPL() error = %v", err)
	}
	got := OpenTrades(res, money("25"), date.New(2025, time.March, 11))
	if len(got) != 2 {
		t.Fatalf("len(OpenTrades()) = %d, want 2", len(got))
	}
	// 3 units left in lot a at 10, valued at 25.
	if a := got[0]; a.LotTxID != "a" || !a.PL.Equal(money("45")) || a.HoldingDays != 69 {
		t.Errorf("OpenTrades()[0] = %+v, want lot a with 45 P/L held 69 days", a)
	}
	if b := got[1]; !b.PL.Equal(money("25")) {
		t.Errorf("OpenTrades()[1].PL = %v, want 25", b.PL)
	}
}

func TestLotMatch_MeasureExcursion(t *testing.T) {
	closes := history(
		"2025-01-01", "200", // before the purchase
		"2025-01-10", "100",
		"2025-01-15", "130",
		"2025-01-20", "95",
		"2025-01-31", "120",
		"2025-02-05", "300", // after the sale
	)
	testCases := []struct {
		name       string
		match      LotMatch
		history    *PriceHistory
		measured   bool
		mfe        string
		mae        string
		efficiency string
	}{
		{
			name:  "winner",
			match: LotMatch{Purchased: date.New(2025, 1, 10), Sold: date.New(2025, 1, 31), Quantity: qty("2"), Cost: money("200"), Proceeds: money("240")},
			// Best 130, worst 95 for an entry at 100 and an exit at 120.
			history: closes, measured: true, mfe: "0.3", mae: "-0.05", efficiency: "0.66666666666666666667",
		},
		{
			name:  "no favorable close",
			match: LotMatch{Purchased: date.New(2025, 1, 15), Sold: date.New(2025, 1, 20), Quantity: qty("1"), Cost: money("150"), Proceeds: money("95")},
			history: closes, measured: true, mfe: "0", mae: "-0.36666666666666666667", efficiency: "0",
		},
		{
			name:    "no close while held",
			match:   LotMatch{Purchased: date.New(2025, 1, 11), Sold: date.New(2025, 1, 14), Quantity: qty("1"), Cost: money("100"), Proceeds: money("110")},
			history: closes,
		},
		{
			name:  "no history",
			match: LotMatch{Purchased: date.New(2025, 1, 10), Sold: date.New(2025, 1, 31), Quantity: qty("1"), Cost: money("100"), Proceeds: money("110")},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.match
			if err := m.MeasureExcursion(tc.history); err != nil {
				t.Fatalf("MeasureExcursion() error = %v", err)
			}
			if (m.Excursion != nil) != tc.measured {
				t.Fatalf("Excursion = %+v, want measured %v", m.Excursion, tc.measured)
			}
			if !tc.measured {
				return
			}
			e := m.Excursion
			if !e.MFE.Equal(MustRatio(tc.mfe)) || !e.MAE.Equal(MustRatio(tc.mae)) || !e.Efficiency.Equal(MustRatio(tc.efficiency)) {
				t.Errorf("Excursion = %v/%v/%v, want %v/%v/%v", e.MFE, e.MAE, e.Efficiency, tc.mfe, tc.mae, tc.efficiency)
			}
		})
	}
}
