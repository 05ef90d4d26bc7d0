package basis

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/etnz/basis/date"
)

// TxType is a typed string for identifying transaction kinds.
type TxType string

// Transaction types.
const (
	Buy      TxType = "buy"
	Sell     TxType = "sell"
	Dividend TxType = "dividend"
	Fee      TxType = "fee"
	Transfer TxType = "transfer"
	Interest TxType = "interest"
	Split    TxType = "split"
)

// ParseTxType parses a transaction type, ignoring case.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Buy, Sell, Dividend, Fee, Transfer, Interest, Split:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, s)
	}
}

// Transaction is a normalized broker record.
//
// Quantity, Price and Fees are stored non-negative. For a Split, Quantity holds
// the number of new units per old unit (2 for a 2-for-1, 0.1 for a 1-for-10).
// Amount is the signed cash amount of Dividend, Interest, Fee and Transfer rows.
type Transaction struct {
	ID       string
	Symbol   string
	Type     TxType
	Date     time.Time
	Quantity Quantity
	Price    Money
	Fees     Money
	Amount   Money
	Broker   string
}

// Day returns the UTC calendar day of the transaction.
func (t Transaction) Day() date.Date { return date.FromTime(t.Date) }

// Gross returns the cash paid for a Buy (quantity*price+fees), or received
// for a Sell (quantity*price-fees).
func (t Transaction) Gross() Money {
	v := t.Price.Mul(t.Quantity.Abs())
	switch t.Type {
	case Buy:
		return v.Add(t.Fees)
	case Sell:
		return v.Sub(t.Fees)
	default:
		return t.Amount
	}
}

// Validate checks the invariants of a single record.
func (t Transaction) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s %q: %s", ErrInvalidTransaction, t.Type, t.ID, fmt.Sprintf(format, args...))
	}
	if t.Date.IsZero() {
		return fail("missing date")
	}
	if t.Fees.IsNegative() {
		return fail("negative fees %s", t.Fees)
	}
	if t.Price.IsNegative() {
		return fail("negative price %s", t.Price)
	}
	switch t.Type {
	case Buy:
		if t.Symbol == "" {
			return fail("missing symbol")
		}
		if !t.Quantity.IsPositive() {
			return fail("quantity must be positive, got %s", t.Quantity)
		}
	case Sell:
		if t.Symbol == "" {
			return fail("missing symbol")
		}
		if t.Quantity.IsZero() {
			return fail("zero quantity")
		}
	case Split:
		if t.Symbol == "" {
			return fail("missing symbol")
		}
		if !t.Quantity.IsPositive() {
			return fail("split ratio must be positive, got %s", t.Quantity)
		}
	case Dividend, Fee, Transfer, Interest:
	default:
		return fail("unknown type")
	}
	return nil
}

// compareTransactions orders by date then id.
func compareTransactions(a, b Transaction) int {
	return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.ID, b.ID))
}

// SortTransactions sorts txs in place by date, breaking ties by id.
//
// The engine never sorts on its own: callers that need a different tie-break
// must order the records themselves.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, compareTransactions)
}

// checkOrder returns an *UnsortedInputError at the first record out of (date, id) order.
func checkOrder(txs []Transaction) error {
	for i := 1; i < len(txs); i++ {
		if compareTransactions(txs[i-1], txs[i]) > 0 {
			return &UnsortedInputError{Index: i, Previous: txs[i-1].ID, Current: txs[i].ID}
		}
	}
	return nil
}

// GroupBySymbol splits txs per symbol, keeping the input order in each group.
// Records without a symbol are not part of any group.
func GroupBySymbol(txs []Transaction) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, tx := range txs {
		if tx.Symbol == "" {
			continue
		}
		groups[tx.Symbol] = append(groups[tx.Symbol], tx)
	}
	return groups
}

// Symbols returns the sorted list of symbols traded in txs.
func Symbols(txs []Transaction) []string {
	return slices.Sorted(maps.Keys(GroupBySymbol(txs)))
}

// MarshalJSON writes fields in a fixed order and omits empty ones.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("date", formatTime(t.Date))
	w.Append("type", t.Type)
	w.Optional("symbol", t.Symbol)
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	if !t.Price.IsZero() {
		w.Append("price", t.Price)
	}
	if !t.Fees.IsZero() {
		w.Append("fees", t.Fees)
	}
	if !t.Amount.IsZero() {
		w.Append("amount", t.Amount)
	}
	w.Optional("broker", t.Broker)
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string   `json:"id"`
		Date     string   `json:"date"`
		Type     string   `json:"type"`
		Symbol   string   `json:"symbol"`
		Quantity Quantity `json:"quantity"`
		Price    Money    `json:"price"`
		Fees     Money    `json:"fees"`
		Amount   Money    `json:"amount"`
		Broker   string   `json:"broker"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typ, err := ParseTxType(raw.Type)
	if err != nil {
		return err
	}
	on, err := parseTime(raw.Date)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	*t = Transaction{
		ID:       raw.ID,
		Symbol:   raw.Symbol,
		Type:     typ,
		Date:     on,
		Quantity: raw.Quantity,
		Price:    raw.Price,
		Fees:     raw.Fees,
		Amount:   raw.Amount,
		Broker:   raw.Broker,
	}
	return nil
}

// formatTime writes a bare date when t is midnight UTC.
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(date.Day)) {
		return t.Format(date.DateFormat)
	}
	return t.Format(time.RFC3339)
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(), nil
}
