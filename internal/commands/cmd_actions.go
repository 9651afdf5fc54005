package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

type ActionsCmd struct {
	flags *Flags
	app   *wiz.App

	jsonOutput bool
}

// NewActionsCmd creates a new actions command
func NewActionsCmd(flags *Flags, app *wiz.App) *ActionsCmd {
	return &ActionsCmd{flags: flags, app: app}
}

// Register adds the actions command to the application
func (cmd *ActionsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "actions",
		Usage:     "List registered actions",
		UsageText: "wiz actions [--json]",
		Flags: []cli.Flag{
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

type actionInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

func (cmd *ActionsCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	defs := cmd.app.Registry.List()

	if cmd.jsonOutput {
		for _, d := range defs {
			info := actionInfo{ID: d.ID, Title: d.Title, Description: d.Description}
			for _, s := range d.Steps {
				info.Steps = append(info.Steps, fmt.Sprintf("%s:%s", s.Type, s.Title))
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode action: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTEPS\tDESCRIPTION")
	for _, d := range defs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, d.Title, len(d.Steps), d.Description)
	}
	return w.Flush()
}
