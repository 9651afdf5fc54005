package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/internal/tui"
	tuinotify "github.com/colonyops/wiz/internal/tui/notify"
	"github.com/colonyops/wiz/internal/wiz"
)

type RunCmd struct {
	flags *Flags
	app   *wiz.App
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *wiz.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run an action wizard",
		UsageText: "wiz run [action]",
		Description: `Opens the interactive wizard for an action. Without an action id a picker
lists every registered action.

Inside the wizard type a step command and press enter. Enter on an empty line
moves to the next step; esc goes back.`,
		Action: cmd.Run,
	})

	return app
}

// Run starts the wizard. It is also the root command's default action.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		picked, err := cmd.pick()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("pick action: %w", err)
		}
		id = picked
	}

	flow, err := cmd.app.Start(id)
	if err != nil {
		return err
	}

	m := tui.New(ctx, flow, tui.Options{
		Bus:      tuinotify.NewBus(cmd.app.History),
		ToastTTL: cmd.app.Config.TUI.ToastTTL,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	p := printer.Ctx(ctx)
	title := flow.Definition().Title
	if !flow.Done() {
		p.Infof("%s cancelled", title)
		return nil
	}
	p.Success(title+" complete", flow.View())
	return nil
}

func (cmd *RunCmd) pick() (string, error) {
	defs := cmd.app.Registry.List()
	opts := make([]huh.Option[string], 0, len(defs))
	for _, d := range defs {
		opts = append(opts, huh.NewOption(optionLabel(d), d.ID))
	}

	var id string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Action").
				Description("What would you like to do?").
				Options(opts...).
				Value(&id),
		),
	).WithTheme(styles.FormTheme()).Run()
	return id, err
}

func optionLabel(d action.Definition) string {
	if d.Description == "" {
		return d.Title
	}
	return d.Title + " - " + d.Description
}
