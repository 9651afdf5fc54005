// Package config handles configuration loading and validation for wiz.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/quote"
	"github.com/colonyops/wiz/internal/core/sampler"
)

// Config holds the application configuration.
type Config struct {
	Colors   ColorsConfig   `yaml:"colors"`
	Sampling sampler.Policy `yaml:"sampling"`
	Quote    QuoteConfig    `yaml:"quote"`
	Brief    BriefConfig    `yaml:"brief"`
	Palette  PaletteConfig  `yaml:"palette"`
	Database DatabaseConfig `yaml:"database"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// ColorsConfig holds colour selection and match quality settings.
type ColorsConfig struct {
	MaxSelected int                   `yaml:"max_selected"`
	Quality     colormatch.Thresholds `yaml:"quality"`
}

// QuoteConfig holds pricing policy. TaxRate is a pointer so an explicit 0
// can be told apart from an unset value.
type QuoteConfig struct {
	TaxRate           *float64                             `yaml:"tax_rate"`
	ValidityDays      int                                  `yaml:"validity_days"`
	DefaultMarginType quote.MarginType                     `yaml:"default_margin_type"`
	Guardrails        map[quote.MarginType]quote.Guardrail `yaml:"guardrails"`
}

// BriefConfig holds design brief settings.
type BriefConfig struct {
	MaxLength int `yaml:"max_length"`
}

// PaletteConfig lists extra palette files. Entries are doublestar glob
// patterns, loaded after the built-in palette.
type PaletteConfig struct {
	Files []string `yaml:"files"`
}

// DatabaseConfig tunes the local SQLite store.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme    string        `yaml:"theme"`
	ToastTTL time.Duration `yaml:"toast_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	tax := quote.DefaultTaxRate
	return Config{
		Colors: ColorsConfig{
			MaxSelected: colormatch.DefaultMaxColors,
			Quality:     colormatch.DefaultThresholds(),
		},
		Sampling: sampler.DefaultPolicy(),
		Quote: QuoteConfig{
			TaxRate:           &tax,
			ValidityDays:      30,
			DefaultMarginType: quote.MarginWholesale,
			Guardrails:        quote.DefaultPolicy().Guardrails,
		},
		Brief: BriefConfig{
			MaxLength: gateway.DefaultBriefLength,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			Theme:    "default",
			ToastTTL: 5 * time.Second,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := Config{}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Colors.MaxSelected == 0 {
		c.Colors.MaxSelected = d.Colors.MaxSelected
	}
	if c.Colors.Quality == (colormatch.Thresholds{}) {
		c.Colors.Quality = d.Colors.Quality
	}

	s := &c.Sampling
	if s.MaxDimension == 0 {
		s.MaxDimension = d.Sampling.MaxDimension
	}
	if s.QuantizeStep == 0 {
		s.QuantizeStep = d.Sampling.QuantizeStep
	}
	if s.AlphaThreshold == 0 {
		s.AlphaThreshold = d.Sampling.AlphaThreshold
	}
	if s.WhiteCutoff == 0 {
		s.WhiteCutoff = d.Sampling.WhiteCutoff
	}
	if s.BlackCutoff == 0 {
		s.BlackCutoff = d.Sampling.BlackCutoff
	}
	if s.MaxCandidates == 0 {
		s.MaxCandidates = d.Sampling.MaxCandidates
	}

	if c.Quote.TaxRate == nil {
		c.Quote.TaxRate = d.Quote.TaxRate
	}
	if c.Quote.ValidityDays == 0 {
		c.Quote.ValidityDays = d.Quote.ValidityDays
	}
	if c.Quote.DefaultMarginType == "" {
		c.Quote.DefaultMarginType = d.Quote.DefaultMarginType
	}
	c.Quote.Guardrails = mergeGuardrails(d.Quote.Guardrails, c.Quote.Guardrails)

	if c.Brief.MaxLength == 0 {
		c.Brief.MaxLength = d.Brief.MaxLength
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = d.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = d.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = d.Database.BusyTimeout
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = d.TUI.ToastTTL
	}
}

// mergeGuardrails merges user guardrails into defaults.
// User entries override defaults for the same margin type.
func mergeGuardrails(defaults, user map[quote.MarginType]quote.Guardrail) map[quote.MarginType]quote.Guardrail {
	result := make(map[quote.MarginType]quote.Guardrail, len(defaults)+len(user))

	for k, v := range defaults {
		result[k] = v
	}

	for k, v := range user {
		result[k] = v
	}

	return result
}

// QuotePolicy returns the pricing policy described by the config.
func (c *Config) QuotePolicy() quote.Policy {
	p := quote.Policy{Guardrails: c.Quote.Guardrails, TaxRate: quote.DefaultTaxRate}
	if c.Quote.TaxRate != nil {
		p.TaxRate = *c.Quote.TaxRate
	}
	return p
}
