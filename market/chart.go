package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/basis/date"
)

// Selectors locate the two parallel arrays of a chart document: the dates and
// the closing prices. Dates are either unix timestamps in seconds or date
// strings.
type Selectors struct {
	Dates  string `toml:"dates" yaml:"dates"`
	Prices string `toml:"prices" yaml:"prices"`
}

// DefaultSelectors match a flat {"timestamp": [...], "close": [...]} document.
var DefaultSelectors = Selectors{Dates: "$.timestamp", Prices: "$.close"}

// YahooSelectors match the v8 chart API of Yahoo Finance.
var YahooSelectors = Selectors{
	Dates:  "$.chart.result[0].timestamp",
	Prices: "$.chart.result[0].indicators.quote[0].close",
}

// LoadChart appends the history of symbol found in a chart document, and
// returns the number of prices read. Null closes (non trading days) are
// skipped.
func (l *Loader) LoadChart(ctx context.Context, symbol string, r io.Reader, sel Selectors) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return 0, fmt.Errorf("parse error %s: not a correct json: %w", symbol, err)
	}

	days, err := selectList(sel.Dates, jobj)
	if err != nil {
		return 0, fmt.Errorf("parse error %s: %w", symbol, err)
	}
	closes, err := selectList(sel.Prices, jobj)
	if err != nil {
		return 0, fmt.Errorf("parse error %s: %w", symbol, err)
	}
	if len(days) != len(closes) {
		return 0, fmt.Errorf("parse error %s: %d dates for %d prices", symbol, len(days), len(closes))
	}

	n := 0
	for i, jday := range days {
		if closes[i] == nil {
			continue
		}
		on, err := toDate(jday)
		if err != nil {
			return n, fmt.Errorf("parse error %s: date #%d: %w", symbol, i, err)
		}
		price, err := toMoney(closes[i])
		if err != nil {
			return n, fmt.Errorf("parse error %s: price #%d: %w", symbol, i, err)
		}
		l.market.Append(symbol, on, price)
		n++
	}
	l.log.Debug().Str("symbol", symbol).Int("prices", n).Int("skipped", len(days)-n).Msg("chart loaded")
	return n, nil
}

func selectList(path string, jobj any) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", path, err)
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("selector %q: want a list, got %T", path, jval)
	}
	// a wildcard selector wraps the answer in an extra list of one.
	if len(list) == 1 {
		if inner, ok := list[0].([]any); ok {
			list = inner
		}
	}
	return list, nil
}

func toDate(v any) (date.Date, error) {
	switch v := v.(type) {
	case json.Number:
		sec, err := v.Int64()
		if err != nil {
			return date.Date{}, err
		}
		return date.FromTime(time.Unix(sec, 0)), nil
	case string:
		return date.Parse(v)
	default:
		return date.Date{}, fmt.Errorf("must be a timestamp or a date, got %T", v)
	}
}
