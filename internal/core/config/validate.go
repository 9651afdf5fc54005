package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is valid. Errors are returned as
// criterio.FieldErrors keyed by the YAML path of the offending value.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", errors.New("cannot be empty"))
	}

	if c.Colors.MaxSelected < 1 {
		errs = errs.Append("colors.max_selected", errors.New("must be at least 1"))
	}
	if err := c.Colors.Quality.Validate(); err != nil {
		errs = errs.Append("colors.quality", err)
	}
	if err := c.Sampling.Validate(); err != nil {
		errs = errs.Append("sampling", err)
	}

	if c.Quote.TaxRate != nil && (*c.Quote.TaxRate < 0 || *c.Quote.TaxRate >= 1) {
		errs = errs.Append("quote.tax_rate", errors.New("must be in [0, 1)"))
	}
	if c.Quote.ValidityDays < 1 {
		errs = errs.Append("quote.validity_days", errors.New("must be at least 1"))
	}
	for mt, g := range c.Quote.Guardrails {
		field := fmt.Sprintf("quote.guardrails.%s", mt)
		switch {
		case g.Min < 0 || g.Max > 1:
			errs = errs.Append(field, errors.New("bounds must be between 0 and 1"))
		case g.Max != 0 && g.Min > g.Max:
			errs = errs.Append(field, errors.New("min cannot exceed max"))
		}
	}
	if _, ok := c.Quote.Guardrails[c.Quote.DefaultMarginType]; !ok {
		errs = errs.Append("quote.default_margin_type", fmt.Errorf("no guardrail for %q", c.Quote.DefaultMarginType))
	}

	if c.Brief.MaxLength < 1 {
		errs = errs.Append("brief.max_length", errors.New("must be at least 1"))
	}

	for i, pattern := range c.Palette.Files {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			errs = errs.Append(fmt.Sprintf("palette.files[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", errors.New("must be between 0 and max_open_conns"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("cannot be negative"))
	}

	if c.TUI.ToastTTL < 0 {
		errs = errs.Append("tui.toast_ttl", errors.New("cannot be negative"))
	}

	return errs.ToError()
}

// ValidateDeep performs Validate plus file system checks: the config file,
// the data directory and the palette file patterns. An empty configPath skips
// the config file check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validatePaletteFiles(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Quote.TaxRate != nil && *c.Quote.TaxRate > 0.25 {
		warnings = append(warnings, ValidationWarning{
			Category: "Quote",
			Item:     "tax_rate",
			Message:  fmt.Sprintf("tax rate %.2f is unusually high", *c.Quote.TaxRate),
		})
	}

	for mt, g := range c.Quote.Guardrails {
		if g.Max == 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Quote",
				Item:     string(mt),
				Message:  "guardrail has no max; high margins will not be flagged",
			})
		}
	}

	if c.Sampling.QuantizeStep > 64 {
		warnings = append(warnings, ValidationWarning{
			Category: "Sampling",
			Item:     "quantize_step",
			Message:  "large quantize steps merge distinct brand colours",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validatePaletteFiles checks every palette pattern matches at least one file.
func (c *Config) validatePaletteFiles() error {
	var errs criterio.FieldErrorsBuilder

	for i, pattern := range c.Palette.Files {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			errs = errs.Append(fmt.Sprintf("palette.files[%d]", i), err)
			continue
		}
		if len(matches) == 0 {
			errs = errs.Append(fmt.Sprintf("palette.files[%d]", i), fmt.Errorf("no files match %s", pattern))
		}
	}

	return errs.ToError()
}
