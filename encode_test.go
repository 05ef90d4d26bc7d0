package basis

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleJSONL = `{"id":"1","date":"2025-01-02","type":"buy","symbol":"AAPL","quantity":"10","price":"100","fees":"10","broker":"ibkr"}
{"id":"2","date":"2025-03-03T14:30:00Z","type":"sell","symbol":"AAPL","quantity":"5","price":"150","fees":"5","broker":"ibkr"}

{"id":"3","date":"2025-03-10","type":"dividend","symbol":"AAPL","amount":"1.25"}
{"id":"4","date":"2025-04-01","type":"transfer","amount":"-200"}
`

func TestDecodeTransactions(t *testing.T) {
	txs, err := DecodeTransactions("sample.jsonl", strings.NewReader(sampleJSONL))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	if len(txs) != 4 {
		t.Fatalf("len(txs) = %d, want 4", len(txs))
	}
	if got := txs[1]; got.Type != Sell || !got.Date.Equal(time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC)) || !got.Quantity.Equal(qty("5")) {
		t.Errorf("txs[1] = %+v, want the sell of 5 on 2025-03-03T14:30:00Z", got)
	}
	if got := txs[3]; got.Type != Transfer || !got.Amount.Equal(money("-200")) || got.Symbol != "" {
		t.Errorf("txs[3] = %+v, want a transfer of -200", got)
	}

	res, err := ComputeSymbolPL(txs[:3], FIFO)
	if err != nil {
		t.Fatalf("ComputeSymbolPL() error = %v", err)
	}
	if !res.Realized.Equal(money("240")) || !res.Income.Equal(money("1.25")) {
		t.Errorf("ComputeSymbolPL() = realized %v income %v, want 240 and 1.25", res.Realized, res.Income)
	}
}

func TestEncodeTransactions_RoundTrip(t *testing.T) {
	txs, err := DecodeTransactions("sample.jsonl", strings.NewReader(sampleJSONL))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatalf("EncodeTransactions() error = %v", err)
	}
	want := strings.ReplaceAll(sampleJSONL, "\n\n", "\n")
	if got := buf.String(); got != want {
		t.Errorf("EncodeTransactions() =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeTransactions_Errors(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want error
	}{
		{"unknown type", `{"id":"1","date":"2025-01-02","type":"swap","symbol":"X"}`, ErrInvalidTransaction},
		{"bad date", `{"id":"1","date":"02/01/2025","type":"buy","symbol":"X","quantity":"1","price":"1"}`, ErrInvalidTransaction},
		{"zero buy", `{"id":"1","date":"2025-01-02","type":"buy","symbol":"X","price":"1"}`, ErrInvalidTransaction},
		{"malformed decimal", `{"id":"1","date":"2025-01-02","type":"buy","symbol":"X","quantity":"1,5","price":"1"}`, ErrInvalidArithmetic},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTransactions("bad.jsonl", strings.NewReader(tc.line))
			if !errors.Is(err, tc.want) {
				t.Errorf("DecodeTransactions() error = %v, want %v", err, tc.want)
			}
			if err != nil && !strings.Contains(err.Error(), "bad.jsonl:1") {
				t.Errorf("DecodeTransactions() error = %q, want the line position", err)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{"buy", buy("1", "X", day(2025, 1, 1), "1", "10", "0"), false},
		{"buy without symbol", buy("1", "", day(2025, 1, 1), "1", "10", "0"), true},
		{"buy negative", buy("1", "X", day(2025, 1, 1), "-1", "10", "0"), true},
		{"negative fees", buy("1", "X", day(2025, 1, 1), "1", "10", "-1"), true},
		{"negative price", sell("1", "X", day(2025, 1, 1), "1", "-10", "0"), true},
		{"no date", Transaction{ID: "1", Type: Transfer, Amount: money("1")}, true},
		{"zero split", split("1", "X", day(2025, 1, 1), "0"), true},
		{"reverse split", split("1", "X", day(2025, 1, 1), "0.1"), false},
		{"fee", Transaction{ID: "1", Type: Fee, Date: day(2025, 1, 1), Amount: money("-3")}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidTransaction)
			}
		})
	}
}

func TestSortTransactions(t *testing.T) {
	txs := []Transaction{
		buy("c", "X", day(2025, 1, 2), "1", "1", "0"),
		buy("b", "X", day(2025, 1, 1), "1", "1", "0"),
		buy("a", "X", day(2025, 1, 2), "1", "1", "0"),
	}
	SortTransactions(txs)
	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	if got := strings.Join(ids, ""); got != "bac" {
		t.Errorf("SortTransactions() order = %q, want %q", got, "bac")
	}
	if err := checkOrder(txs); err != nil {
		t.Errorf("checkOrder() after sort error = %v", err)
	}
}

func TestParseCostBasisMethod(t *testing.T) {
	testCases := []struct {
		in   string
		want CostBasisMethod
	}{
		{"fifo", FIFO},
		{"FIFO", FIFO},
		{"average", WeightedAverage},
		{"weighted-average", WeightedAverage},
	}
	for _, tc := range testCases {
		got, err := ParseCostBasisMethod(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseCostBasisMethod(%q) = %v, %v want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseCostBasisMethod("lifo"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseCostBasisMethod(lifo) error = %v, want %v", err, ErrInvalidArgument)
	}
}
