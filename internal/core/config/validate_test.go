package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/quote"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldErrors(t *testing.T, err error) criterio.FieldErrors {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	return fieldErrs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"zero colour cap", func(c *Config) { c.Colors.MaxSelected = -1 }, "colors.max_selected"},
		{"unordered tiers", func(c *Config) { c.Colors.Quality.Good = 10 }, "colors.quality"},
		{"bad sampling", func(c *Config) { c.Sampling.QuantizeStep = 300 }, "sampling"},
		{"negative tax", func(c *Config) { tax := -0.1; c.Quote.TaxRate = &tax }, "quote.tax_rate"},
		{"validity days", func(c *Config) { c.Quote.ValidityDays = 0 }, "quote.validity_days"},
		{
			"inverted guardrail",
			func(c *Config) {
				c.Quote.Guardrails = map[quote.MarginType]quote.Guardrail{
					quote.MarginWholesale: {Min: 0.7, Max: 0.5},
				}
			},
			"quote.guardrails.wholesale",
		},
		{"unknown default margin", func(c *Config) { c.Quote.DefaultMarginType = "bulk" }, "quote.default_margin_type"},
		{"brief length", func(c *Config) { c.Brief.MaxLength = 0 }, "brief.max_length"},
		{"bad glob", func(c *Config) { c.Palette.Files = []string{"palettes/[.yaml"} }, "palette.files[0]"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 50 }, "database.max_idle_conns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			fieldErrs := fieldErrors(t, err)
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(t.TempDir()))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_PaletteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brand.yaml"), []byte("entries: []"), 0o644))

	cfg := validConfig(t)
	cfg.Palette.Files = []string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "missing", "*.yaml")}

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "palette.files[1]", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "no files match")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	tax := 0.3
	cfg.Quote.TaxRate = &tax
	cfg.Sampling.QuantizeStep = 128
	cfg.Quote.Guardrails = map[quote.MarginType]quote.Guardrail{quote.MarginWholesale: {Min: 0.4}}

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "Quote", warnings[0].Category)
}
