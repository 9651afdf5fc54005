package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/palette"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

type PaletteCmd struct {
	flags *Flags
	app   *wiz.App

	search     string
	jsonOutput bool
}

// NewPaletteCmd creates a new palette command
func NewPaletteCmd(flags *Flags, app *wiz.App) *PaletteCmd {
	return &PaletteCmd{flags: flags, app: app}
}

// Register adds the palette command to the application
func (cmd *PaletteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "palette",
		Usage:     "List reference palette colours",
		UsageText: "wiz palette [--search text] [--json]",
		Description: `Lists the loaded palette: the built-in entries followed by any files matched
by palette.files in the config.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "only show entries whose code or name contains text",
				Destination: &cmd.search,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PaletteCmd) run(ctx context.Context, c *cli.Command) error {
	entries := cmd.app.Palette.Entries()
	if cmd.search != "" {
		entries = cmd.app.Palette.Search(cmd.search)
	}
	return writeEntries(c, entries, cmd.jsonOutput)
}

func writeEntries(c *cli.Command, entries []palette.Entry, jsonOutput bool) error {
	out := c.Root().Writer
	if jsonOutput {
		for _, e := range entries {
			if err := iojson.WriteLine(out, e); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tCODE\tNAME\tHEX")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", styles.Swatch(e.Hex), e.Code, e.Name, e.Hex)
	}
	return w.Flush()
}
