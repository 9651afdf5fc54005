package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/config"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "wiz config validate [options]",
				Description: "Validates the configuration file, policy tables, data directory and palette file patterns.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func validate(cfg *config.Config, configPath string) validationResult {
	res := validationResult{Valid: true, Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return res
	}
	res.Valid = false

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		res.Errors = []validationError{{Message: err.Error()}}
		return res
	}
	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, validationError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return res
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	result := validate(cmd.flags.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result); err != nil {
			return err
		}
		if !result.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	p := printer.Ctx(ctx)
	for _, w := range result.Warnings {
		if w.Item != "" {
			p.Warnf("%s (%s): %s", w.Category, w.Item, w.Message)
		} else {
			p.Warnf("%s: %s", w.Category, w.Message)
		}
	}
	for _, e := range result.Errors {
		p.Errorf("%s: %s", e.Field, e.Message)
	}

	p.Printf("")
	if result.Valid {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found", len(result.Errors))
	return cli.Exit("", 1)
}
