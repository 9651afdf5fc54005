package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/notify"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/internal/wiz"
)

type NotificationsCmd struct {
	flags *Flags
	app   *wiz.App

	clear bool
	level string
	limit int
}

func NewNotificationsCmd(flags *Flags, app *wiz.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Usage:     "Show messages raised during past wizard sessions",
		UsageText: "wiz notifications [--level LEVEL] [--limit N] [--clear]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "level",
				Aliases:     []string{"l"},
				Usage:       "only show info, success, warning or error",
				Destination: &cmd.level,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show at most N entries (0 for all)",
				Value:       50,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete the notification history",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		n, err := cmd.app.History.Clear(ctx)
		if err != nil {
			return err
		}
		p.Successf("Removed %d notification(s)", n)
		return nil
	}

	q := notify.Query{Limit: cmd.limit}
	if cmd.level != "" {
		level, err := notify.ParseLevel(cmd.level)
		if err != nil {
			return err
		}
		q.Level = level
	}

	items, err := cmd.app.History.Recent(ctx, q)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		p.Infof("No notifications")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	for _, n := range items {
		action := n.Action
		if action == "" {
			action = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Level, action, humanize.Time(n.At), n.Message)
	}
	return w.Flush()
}
