package basis

import (
	"time"

	"github.com/etnz/basis/date"
)

// day is a helper for test to create a transaction time from a date.
func day(y int, m time.Month, d int) time.Time { return date.New(y, m, d).Time() }

// money is a helper for test to create money from a decimal literal.
func money(s string) Money { return MustMoney(s) }

// qty is a helper for test to create a quantity from a decimal literal.
func qty(s string) Quantity { return MustQuantity(s) }

func buy(id, symbol string, on time.Time, q, price, fees string) Transaction {
	return Transaction{ID: id, Symbol: symbol, Type: Buy, Date: on, Quantity: qty(q), Price: money(price), Fees: money(fees)}
}

func sell(id, symbol string, on time.Time, q, price, fees string) Transaction {
	return Transaction{ID: id, Symbol: symbol, Type: Sell, Date: on, Quantity: qty(q), Price: money(price), Fees: money(fees)}
}

func split(id, symbol string, on time.Time, ratio string) Transaction {
	return Transaction{ID: id, Symbol: symbol, Type: Split, Date: on, Quantity: qty(ratio)}
}

// history builds a price history from alternating date and price literals.
func history(points ...string) *PriceHistory {
	h := new(PriceHistory)
	for i := 0; i+1 < len(points); i += 2 {
		h.Append(date.MustParse(points[i]), money(points[i+1]))
	}
	return h
}
