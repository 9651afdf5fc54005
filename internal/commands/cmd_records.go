package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

type RecordsCmd struct {
	flags *Flags
	app   *wiz.App

	kind       string
	jsonOutput bool
}

// NewRecordsCmd creates a new records command
func NewRecordsCmd(flags *Flags, app *wiz.App) *RecordsCmd {
	return &RecordsCmd{flags: flags, app: app}
}

// Register adds the records command to the application
func (cmd *RecordsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "records",
		Usage: "Inspect records created by actions",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List records, newest first",
				UsageText: "wiz records ls [--kind quote] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "kind",
						Aliases:     []string{"k"},
						Usage:       "only list records of this kind",
						Destination: &cmd.kind,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "show",
				Usage:     "Show one record by id or code",
				UsageText: "wiz records show <id|code>",
				Action:    cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *RecordsCmd) runList(ctx context.Context, c *cli.Command) error {
	kind := gateway.Kind(cmd.kind)
	if kind != "" && !kind.IsValid() {
		return fmt.Errorf("unknown record kind %q", cmd.kind)
	}

	records, err := cmd.app.Gateway.ListRecords(ctx, kind)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range records {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No records found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tKIND\tSTATUS\tTITLE\tCREATED")
	for _, r := range records {
		code := r.Code
		if code == "" {
			code = r.ID
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", code, r.Kind, r.Status, r.Title, humanize.Time(r.CreatedAt))
	}
	return w.Flush()
}

func (cmd *RecordsCmd) runShow(ctx context.Context, c *cli.Command) error {
	ref := c.Args().First()
	if ref == "" {
		return errors.New("record id or code is required")
	}

	rec, err := cmd.app.Gateway.GetRecord(ctx, ref)
	if err != nil {
		return err
	}
	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, rec)
}
