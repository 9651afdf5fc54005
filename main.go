package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/commands"
	"github.com/colonyops/wiz/internal/core/config"
	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/data/db"
	"github.com/colonyops/wiz/internal/data/stores"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/logutils"
)

const description = `Wiz walks you through multi-step actions such as building a quote,
submitting a design job or onboarding an organization. Each step checks its
input before you move on, and results are kept in a local database.

With no command, wiz asks which action to start.`

// bootstrap is the state the root Before hook prepares for every command.
type bootstrap struct {
	flags    *commands.Flags
	app      *wiz.App
	database *db.DB
	closeLog func()
}

func (rt *bootstrap) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	// The TUI owns the terminal, so logs go to a file unless one is given.
	logFile := rt.flags.LogFile
	if logFile == "" {
		logFile = filepath.Join(rt.flags.DataDir, "wiz.log")
	}
	logger, closeLog, err := logutils.Open(logutils.Options{Level: rt.flags.LogLevel, File: logFile})
	if err != nil {
		return ctx, err
	}
	log.Logger = logger.Hook(logging.ContextHook{})
	rt.closeLog = closeLog

	cfg, err := config.Load(rt.flags.ConfigPath, rt.flags.DataDir)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	rt.flags.Config = cfg
	if err := styles.UseTheme(cfg.TUI.Theme); err != nil {
		return ctx, err
	}

	rt.database, err = stores.OpenDatabase(cfg.DataDir, db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return ctx, err
	}

	app, err := wiz.NewApp(cfg, rt.database, afero.NewOsFs())
	if err != nil {
		return ctx, err
	}
	// Commands were built with a pointer to rt.app before flags were parsed.
	*rt.app = *app

	return printer.NewContext(ctx, printer.New(c.Root().ErrWriter)), nil
}

func (rt *bootstrap) after(context.Context, *cli.Command) error {
	var err error
	if rt.database != nil {
		if err = rt.database.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if rt.closeLog != nil {
		rt.closeLog()
	}
	return err
}

func globalFlags(f *commands.Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "trace, debug, info, warn or error",
			Value:       "info",
			Sources:     cli.EnvVars("WIZ_LOG_LEVEL"),
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "log file `PATH` (default <data-dir>/wiz.log)",
			Sources:     cli.EnvVars("WIZ_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "config file `PATH`",
			Value:       commands.DefaultConfigPath(),
			Sources:     cli.EnvVars("WIZ_CONFIG"),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "`DIR` for the database, assets and logs",
			Value:       commands.DefaultDataDir(),
			Sources:     cli.EnvVars("WIZ_DATA_DIR"),
			Destination: &f.DataDir,
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rt := &bootstrap{flags: &commands.Flags{}, app: &wiz.App{}}
	root := &cli.Command{
		Name:        "wiz",
		Usage:       "Guided wizards for quotes, design jobs and onboarding",
		UsageText:   "wiz [global options] [command [command options]]",
		Description: description,
		Version:     versionString(),
		Flags:       globalFlags(rt.flags),
		Before:      rt.before,
		After:       rt.after,
	}

	run := commands.NewRunCmd(rt.flags, rt.app)
	for _, r := range []interface {
		Register(*cli.Command) *cli.Command
	}{
		run,
		commands.NewActionsCmd(rt.flags, rt.app),
		commands.NewPaletteCmd(rt.flags, rt.app),
		commands.NewMatchCmd(rt.flags, rt.app),
		commands.NewPickCmd(rt.flags, rt.app),
		commands.NewExtractCmd(rt.flags, rt.app),
		commands.NewQuoteCmd(rt.flags, rt.app),
		commands.NewRecordsCmd(rt.flags, rt.app),
		commands.NewNotificationsCmd(rt.flags, rt.app),
		commands.NewConfigValidateCmd(rt.flags),
	} {
		root = r.Register(root)
	}

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Present() {
			return fmt.Errorf("unknown command %q, see 'wiz --help'", c.Args().First())
		}
		return run.Run(ctx, c)
	}

	err := root.Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "wiz:", err)
		os.Exit(1)
	}
}
