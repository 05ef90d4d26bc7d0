// Package market loads price histories and latest quotes into a
// basis.MarketData.
//
// Three sources are understood:
//
//   - JSONL price files, one line per day. A line is either wide,
//     {"on": "2025-01-02", "AAPL": 243.85, "MSFT": 418.58}, or long,
//     {"date": "2025-01-02", "symbol": "AAPL", "close": 243.85}.
//   - chart documents, any JSON whose dates and closes can be selected with a
//     pair of jsonpath expressions (see Selectors).
//   - quote documents, a single JSON object mapping symbols to prices.
package market

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/basis"
	"github.com/etnz/basis/date"
	"github.com/rs/zerolog"
)

const (
	attrOn     = "on"
	attrDate   = "date"
	attrSymbol = "symbol"
	attrClose  = "close"
)

// Loader accumulates market data from several sources.
type Loader struct {
	log       zerolog.Logger
	market    *basis.MarketData
	selectors Selectors
}

// NewLoader returns a Loader reading chart documents with DefaultSelectors.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		log:       logger.With().Str("component", "market").Logger(),
		market:    basis.NewMarketData(),
		selectors: DefaultSelectors,
	}
}

// WithSelectors changes the selectors used by LoadFiles for chart documents.
func (l *Loader) WithSelectors(s Selectors) *Loader {
	l.selectors = s
	return l
}

// Market returns the market data loaded so far.
func (l *Loader) Market() *basis.MarketData { return l.market }

// LoadFiles loads every file matching the patterns. A ".jsonl" file is a price
// file; a ".json" file is a chart document for the symbol named by its base
// name (SPY.json holds SPY).
func (l *Loader) LoadFiles(ctx context.Context, patterns ...string) error {
	for _, pattern := range patterns {
		names, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("load error: bad pattern %q: %w", pattern, err)
		}
		if len(names) == 0 {
			l.log.Warn().Str("pattern", pattern).Msg("no market file matches")
		}
		for _, name := range names {
			if err := l.loadFile(ctx, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadFile(ctx context.Context, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("load error: cannot open %q: %w", name, err)
	}
	defer f.Close()

	switch ext := filepath.Ext(name); ext {
	case ".jsonl":
		return l.LoadPrices(ctx, name, f)
	case ".json":
		symbol := strings.TrimSuffix(filepath.Base(name), ext)
		_, err := l.LoadChart(ctx, symbol, f, l.selectors)
		return err
	default:
		return fmt.Errorf("load error: %q: unsupported extension %q", name, ext)
	}
}

// LoadPrices reads a JSONL price file. name is for error messages only.
func (l *Loader) LoadPrices(ctx context.Context, name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	i, points := 0, 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		i++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		n, err := l.decodeLine(line)
		if err != nil {
			return fmt.Errorf("parse error %s:%d: %w", name, i, err)
		}
		points += n
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read error %s: %w", name, err)
	}
	l.log.Debug().Str("file", name).Int("lines", i).Int("prices", points).Msg("prices loaded")
	return nil
}

// decodeLine appends the prices of a single line, and returns how many.
func (l *Loader) decodeLine(line []byte) (int, error) {
	jobj, err := decodeObject(line)
	if err != nil {
		return 0, fmt.Errorf("not a correct json: %w", err)
	}

	if _, long := jobj[attrSymbol]; long {
		on, err := dateAttr(jobj, attrDate)
		if err != nil {
			return 0, err
		}
		symbol, ok := jobj[attrSymbol].(string)
		if !ok || symbol == "" {
			return 0, fmt.Errorf("property %q must be a non empty string", attrSymbol)
		}
		price, err := toMoney(jobj[attrClose])
		if err != nil {
			return 0, fmt.Errorf("property %q: %w", attrClose, err)
		}
		l.market.Append(symbol, on, price)
		return 1, nil
	}

	on, err := dateAttr(jobj, attrOn)
	if err != nil {
		return 0, err
	}
	n := 0
	for symbol, v := range jobj {
		if symbol == attrOn {
			continue
		}
		price, err := toMoney(v)
		if err != nil {
			return 0, fmt.Errorf("property %q: %w", symbol, err)
		}
		l.market.Append(symbol, on, price)
		n++
	}
	return n, nil
}

// LoadQuotes reads a JSON object of latest prices, {"AAPL": 243.85}.
func (l *Loader) LoadQuotes(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read error %s: %w", name, err)
	}
	jobj, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("parse error %s: not a correct json: %w", name, err)
	}
	for symbol, v := range jobj {
		price, err := toMoney(v)
		if err != nil {
			return fmt.Errorf("parse error %s: property %q: %w", name, symbol, err)
		}
		l.market.SetQuote(symbol, price)
	}
	l.log.Debug().Str("file", name).Int("quotes", len(jobj)).Msg("quotes loaded")
	return nil
}

// LoadQuotesFile is LoadQuotes on a file. A missing file is not an error.
func (l *Loader) LoadQuotesFile(ctx context.Context, name string) error {
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		l.log.Warn().Str("file", name).Msg("no quotes file")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load error: cannot open %q: %w", name, err)
	}
	defer f.Close()
	return l.LoadQuotes(ctx, name, f)
}

// decodeObject decodes a JSON object keeping numbers as json.Number, so that
// prices are never rounded through a float.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	jobj := make(map[string]any)
	if err := dec.Decode(&jobj); err != nil {
		return nil, err
	}
	return jobj, nil
}

func dateAttr(jobj map[string]any, attr string) (date.Date, error) {
	jvalue, ok := jobj[attr]
	if !ok {
		return date.Date{}, fmt.Errorf("missing the property %q with a date", attr)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("property %q must be of type 'string'", attr)
	}
	on, err := date.Parse(jstring)
	if err != nil {
		return date.Date{}, fmt.Errorf("property %q must be a valid date: %w", attr, err)
	}
	return on, nil
}

// toMoney accepts a json number or a decimal string.
func toMoney(v any) (basis.Money, error) {
	switch v := v.(type) {
	case json.Number:
		return basis.ParseMoney(v.String())
	case string:
		return basis.ParseMoney(v)
	default:
		return basis.Money{}, fmt.Errorf("must be a number, got %T", v)
	}
}
