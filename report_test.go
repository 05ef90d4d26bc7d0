package basis

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/etnz/basis/date"
)

func sampleLedger() []Transaction {
	txs := []Transaction{
		buy("1", "AAPL", day(2025, time.January, 2), "10", "100", "10"),
		buy("2", "MSFT", day(2025, time.January, 10), "4", "50", "0"),
		sell("3", "AAPL", day(2025, time.March, 3), "5", "150", "5"),
		sell("4", "MSFT", day(2025, time.April, 15), "4", "40", "0"),
		buy("5", "MSFT", day(2025, time.May, 1), "2", "45", "0"),
		{ID: "6", Type: Transfer, Date: day(2025, time.May, 2), Amount: money("1000")},
	}
	return txs
}

func sampleMarket() *MarketData {
	m := NewMarketData()
	m.Append("AAPL", date.New(2025, time.June, 30), money("160"))
	m.Append("MSFT", date.New(2025, time.June, 27), money("50"))
	return m
}

func TestBuildPLReport(t *testing.T) {
	opts := ReportOptions{
		Method: FIFO,
		Range:  date.Between(date.New(2025, time.January, 1), date.New(2025, time.June, 30)),
		Period: date.Quarterly,
	}
	got, err := BuildPLReport(sampleLedger(), sampleMarket(), opts)
	if err != nil {
		t.Fatalf("BuildPLReport() error = %v", err)
	}

	checks := []struct {
		name string
		got  Money
		want string
	}{
		{"Realized", got.Realized, "200"},
		{"Unrealized", got.Unrealized, "305"},
		{"Total", got.Total, "505"},
		{"TotalValue", got.TotalValue, "900"},
		{"TotalCost", got.TotalCost, "595"},
		{"AAPL.Unrealized", got.Symbols["AAPL"].Unrealized, "295"},
		{"MSFT.Realized", got.Symbols["MSFT"].Realized, "-40"},
		{"MSFT.TotalInvested", got.Symbols["MSFT"].TotalInvested, "290"},
		{"Stats.AverageWin", got.Stats.AverageWin, "240"},
		{"Stats.AverageLoss", got.Stats.AverageLoss, "40"},
	}
	for _, c := range checks {
		if !c.got.Equal(money(c.want)) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if got.SymbolCount != 2 || got.TransactionCount != 5 {
		t.Errorf("counts = %d symbols / %d transactions, want 2 / 5", got.SymbolCount, got.TransactionCount)
	}
	if want := MustRatio("0.5"); !got.Stats.WinRate.Equal(want) {
		t.Errorf("WinRate = %v, want %v", got.Stats.WinRate, want)
	}
	if got.Stats.ProfitFactor.Infinite || !got.Stats.ProfitFactor.Equal(MustRatio("6")) {
		t.Errorf("ProfitFactor = %v, want 6", got.Stats.ProfitFactor)
	}
	// AAPL: (240 + 295) / 1010
	if want, _ := money("535").Ratio(money("1010"), HalfEven); !got.Symbols["AAPL"].Return.Equal(want) {
		t.Errorf("AAPL.Return = %v, want %v", got.Symbols["AAPL"].Return, want)
	}

	if len(got.Periods) != 2 {
		t.Fatalf("len(Periods) = %d, want 2", len(got.Periods))
	}
	wantPeriods := []struct {
		id       string
		realized string
	}{{"2025-Q1", "240"}, {"2025-Q2", "-40"}}
	var sum Money
	for i, w := range wantPeriods {
		p := got.Periods[i]
		if p.Range.Identifier() != w.id || !p.Realized.Equal(money(w.realized)) || p.Trades != 1 {
			t.Errorf("Periods[%d] = %s %v (%d trades), want %s %s (1 trade)", i, p.Range.Identifier(), p.Realized, p.Trades, w.id, w.realized)
		}
		sum = sum.Add(p.Realized)
	}
	if !sum.Equal(got.Realized) {
		t.Errorf("sum of periods = %v, want %v", sum, got.Realized)
	}
}

func TestBuildPLReport_Range(t *testing.T) {
	opts := ReportOptions{
		Method: FIFO,
		Range:  date.Between(date.New(2025, time.April, 1), date.New(2025, time.June, 30)),
		Period: date.Monthly,
	}
	got, err := BuildPLReport(sampleLedger(), sampleMarket(), opts)
	if err != nil {
		t.Fatalf("BuildPLReport() error = %v", err)
	}
	if !got.Realized.Equal(money("-40")) {
		t.Errorf("Realized = %v, want -40", got.Realized)
	}
	if !got.Unrealized.Equal(money("305")) {
		t.Errorf("Unrealized = %v, want 305", got.Unrealized)
	}
	if got.Stats.Trades != 1 || !got.Stats.ProfitFactor.IsZero() || got.Stats.ProfitFactor.Infinite {
		t.Errorf("Stats = %+v, want a single losing trade", got.Stats)
	}

	// Transactions after the end of the range are ignored, even an oversell.
	txs := append(sampleLedger(), sell("7", "AAPL", day(2025, time.July, 1), "100", "1", "0"))
	if _, err := BuildPLReport(txs, sampleMarket(), opts); err != nil {
		t.Errorf("BuildPLReport() with later oversell error = %v", err)
	}
}

func TestBucketSells_EmptyPeriods(t *testing.T) {
	got := bucketSells([]SellResult{
		{Date: date.New(2025, time.March, 5), PL: money("-10")},
		{Date: date.New(2025, time.January, 20), PL: money("30")},
		{Date: date.New(2025, time.January, 31), PL: money("5")},
	}, date.Monthly)
	want := []struct {
		id       string
		trades   int
		realized string
	}{{"2025-01", 2, "35"}, {"2025-02", 0, "0"}, {"2025-03", 1, "-10"}}
	if len(got) != len(want) {
		t.Fatalf("len(bucketSells()) = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		p := got[i]
		if p.Range.Identifier() != w.id || p.Trades != w.trades || !p.Realized.Equal(money(w.realized)) {
			t.Errorf("bucketSells()[%d] = %s %v (%d trades), want %s %s (%d trades)", i, p.Range.Identifier(), p.Realized, p.Trades, w.id, w.realized, w.trades)
		}
	}
	if bucketSells(nil, date.Monthly) != nil {
		t.Errorf("bucketSells(nil) want nil")
	}
}

func TestBuildPLReport_Errors(t *testing.T) {
	opts := ReportOptions{Method: WeightedAverage, Range: date.Range{To: date.New(2025, time.June, 30)}}

	t.Run("missing price", func(t *testing.T) {
		txs := []Transaction{
			buy("1", "AAPL", day(2025, time.January, 2), "1", "100", "0"),
			buy("2", "NOPE", day(2025, time.January, 2), "1", "100", "0"),
			buy("3", "ZILCH", day(2025, time.January, 2), "1", "100", "0"),
		}
		_, err := BuildPLReport(txs, sampleMarket(), opts)
		if !errors.Is(err, ErrMissingPriceData) {
			t.Fatalf("BuildPLReport() error = %v, want %v", err, ErrMissingPriceData)
		}
		msg := err.Error()
		if i, j := strings.Index(msg, "NOPE"), strings.Index(msg, "ZILCH"); i < 0 || j < i {
			t.Errorf("BuildPLReport() error = %q, want both symbols in order", msg)
		}
	})

	t.Run("closed position needs no price", func(t *testing.T) {
		txs := []Transaction{
			buy("1", "NOPE", day(2025, time.January, 2), "1", "100", "0"),
			sell("2", "NOPE", day(2025, time.January, 3), "1", "110", "0"),
		}
		got, err := BuildPLReport(txs, sampleMarket(), opts)
		if err != nil {
			t.Fatalf("BuildPLReport() error = %v", err)
		}
		if !got.Realized.Equal(money("10")) {
			t.Errorf("Realized = %v, want 10", got.Realized)
		}
		if !got.Stats.ProfitFactor.Infinite {
			t.Errorf("ProfitFactor = %v, want inf", got.Stats.ProfitFactor)
		}
	})

	t.Run("shortfall", func(t *testing.T) {
		txs := []Transaction{sell("1", "AAPL", day(2025, time.January, 2), "1", "100", "0")}
		if _, err := BuildPLReport(txs, sampleMarket(), opts); !errors.Is(err, ErrLotShortfall) {
			t.Errorf("BuildPLReport() error = %v, want %v", err, ErrLotShortfall)
		}
	})

	t.Run("no end date", func(t *testing.T) {
		if _, err := BuildPLReport(sampleLedger(), sampleMarket(), ReportOptions{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("BuildPLReport() error = %v, want %v", err, ErrInvalidArgument)
		}
	})
}

func TestBuildPLReport_Deterministic(t *testing.T) {
	opts := ReportOptions{Method: FIFO, Range: date.Range{To: date.New(2025, time.June, 30)}, Period: date.Monthly, Workers: 1}
	want, err := BuildPLReport(sampleLedger(), sampleMarket(), opts)
	if err != nil {
		t.Fatalf("BuildPLReport() error = %v", err)
	}
	opts.Workers = 8
	for range 10 {
		got, err := BuildPLReport(sampleLedger(), sampleMarket(), opts)
		if err != nil {
			t.Fatalf("BuildPLReport() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("BuildPLReport() with 8 workers differs from a single worker")
		}
	}
}

func TestPLReport_With(t *testing.T) {
	r := NewPLReport(date.Range{To: date.New(2025, time.June, 30)}, FIFO, date.Monthly)
	r1, err := r.With(SymbolPL{Symbol: "A", Realized: money("10"), Unrealized: money("5"), OpenCost: money("100"), TransactionCount: 2})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	r2, err := r1.With(SymbolPL{Symbol: "B", Realized: money("-4"), TransactionCount: 1})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if r.SymbolCount != 0 || len(r.Symbols) != 0 {
		t.Errorf("With() mutated the empty report: %+v", r)
	}
	if r1.SymbolCount != 1 || !r1.Total.Equal(money("15")) {
		t.Errorf("r1 = %d symbols, total %v, want 1 and 15", r1.SymbolCount, r1.Total)
	}
	if r2.SymbolCount != 2 || r2.TransactionCount != 3 || !r2.Total.Equal(money("11")) {
		t.Errorf("r2 = %d symbols, %d txs, total %v, want 2, 3 and 11", r2.SymbolCount, r2.TransactionCount, r2.Total)
	}
	if !r2.Return.Equal(MustRatio("0.11")) {
		t.Errorf("r2.Return = %v, want 0.11", r2.Return)
	}
}
