// Package config holds the settings of the pnl command, read from a TOML or
// YAML file and overridden by BASIS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/basis"
	"github.com/etnz/basis/date"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings holds all configuration for pnl.
type Settings struct {
	Method     string        `toml:"method" yaml:"method"`
	Currency   string        `toml:"currency" yaml:"currency"` // ISO 4217 code used to display amounts
	Benchmarks []string      `toml:"benchmarks" yaml:"benchmarks"`
	Period     string        `toml:"period" yaml:"period"`
	Workers    int           `toml:"workers" yaml:"workers"` // 0 means one per CPU
	Store      StoreConfig   `toml:"store" yaml:"store"`
	Market     MarketConfig  `toml:"market" yaml:"market"`
	DCA        DCAConfig     `toml:"dca" yaml:"dca"`
	Logging    LoggingConfig `toml:"log" yaml:"log"`
}

// StoreConfig locates the SQLite transaction store.
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// MarketConfig lists the market data files.
type MarketConfig struct {
	Prices    []string  `toml:"prices" yaml:"prices"` // glob patterns of .jsonl price files and .json chart documents
	Quotes    string    `toml:"quotes" yaml:"quotes"`
	Selectors Selectors `toml:"selectors" yaml:"selectors"`
}

// Selectors are the jsonpath expressions used on chart documents.
type Selectors struct {
	Dates  string `toml:"dates" yaml:"dates"`
	Prices string `toml:"prices" yaml:"prices"`
}

// DCAConfig holds the defaults of the dca command.
type DCAConfig struct {
	Frequency string `toml:"frequency" yaml:"frequency"`
	Amount    string `toml:"amount" yaml:"amount"`
	Start     string `toml:"start" yaml:"start"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// NewDefaultSettings returns Settings with sensible defaults.
func NewDefaultSettings() *Settings {
	return &Settings{
		Method:   basis.FIFO.String(),
		Currency: "USD",
		Period:   date.Monthly.String(),
		Store:    StoreConfig{Path: "basis.db"},
		Market: MarketConfig{
			Selectors: Selectors{Dates: "$.timestamp", Prices: "$.close"},
		},
		DCA: DCAConfig{
			Frequency: basis.Monthly.String(),
			Amount:    "100",
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads the settings file at path over the defaults. A missing file
// yields the defaults. The format is chosen by extension: ".yaml" and ".yml"
// are YAML, anything else is TOML.
func Load(path string) (*Settings, error) {
	s := NewDefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := unmarshal(path, data, s); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(s)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func unmarshal(path string, data []byte, s *Settings) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, s)
	}
	return toml.Unmarshal(data, s)
}

// Save writes the settings to path, in the format chosen by its extension.
func (s *Settings) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = toml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("BASIS_METHOD"); v != "" {
		s.Method = v
	}
	if v := os.Getenv("BASIS_CURRENCY"); v != "" {
		s.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("BASIS_STORE_PATH"); v != "" {
		s.Store.Path = v
	}
	if v := os.Getenv("BASIS_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	if v := os.Getenv("BASIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Workers = n
		}
	}
}

// Validate checks that every enumerated setting parses.
func (s *Settings) Validate() error {
	if _, err := basis.ParseCostBasisMethod(s.Method); err != nil {
		return fmt.Errorf("method: %w", err)
	}
	if _, err := date.ParsePeriod(s.Period); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	if len(s.Currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code, got %q", s.Currency)
	}
	if _, err := basis.ParseFrequency(s.DCA.Frequency); err != nil {
		return fmt.Errorf("dca.frequency: %w", err)
	}
	if s.DCA.Amount != "" {
		if _, err := basis.ParseMoney(s.DCA.Amount); err != nil {
			return fmt.Errorf("dca.amount: %w", err)
		}
	}
	if s.DCA.Start != "" {
		if _, err := date.Parse(s.DCA.Start); err != nil {
			return fmt.Errorf("dca.start: %w", err)
		}
	}
	return nil
}

// CostBasisMethod returns the parsed method. Settings must be valid.
func (s *Settings) CostBasisMethod() basis.CostBasisMethod {
	m, _ := basis.ParseCostBasisMethod(s.Method)
	return m
}

// ReportPeriod returns the parsed period. Settings must be valid.
func (s *Settings) ReportPeriod() date.Period {
	p, _ := date.ParsePeriod(s.Period)
	return p
}

// DCAFrequency returns the parsed dca frequency. Settings must be valid.
func (s *Settings) DCAFrequency() basis.Frequency {
	f, _ := basis.ParseFrequency(s.DCA.Frequency)
	return f
}

// DCAAmount returns the parsed dca amount, zero when unset.
func (s *Settings) DCAAmount() basis.Money {
	m, _ := basis.ParseMoney(s.DCA.Amount)
	return m
}

// DCAStart returns the parsed dca start, zero when unset.
func (s *Settings) DCAStart() date.Date {
	if s.DCA.Start == "" {
		return date.Date{}
	}
	d, _ := date.Parse(s.DCA.Start)
	return d
}
