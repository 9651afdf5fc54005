// Package wiz wires configuration, storage and the action registry into the
// App consumed by commands and the TUI.
package wiz

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/colonyops/wiz/internal/actions"
	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/config"
	"github.com/colonyops/wiz/internal/core/palette"
	"github.com/colonyops/wiz/internal/data/assets"
	"github.com/colonyops/wiz/internal/data/db"
	"github.com/colonyops/wiz/internal/data/stores"
)

// AssetsDir is the directory under the data dir holding uploaded assets.
const AssetsDir = "assets"

// App is the central entry point for all wiz operations. Commands and the TUI
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Fs       afero.Fs
	Gateway  *stores.GatewayStore
	History  *stores.History
	Assets   *assets.Store
	Palette  *palette.Store
	Matcher  *colormatch.Matcher
	Registry *action.Registry
}

// NewApp constructs an App from explicit dependencies. The palette is loaded
// from the embedded default plus cfg.Palette.Files.
func NewApp(cfg *config.Config, database *db.DB, fs afero.Fs) (*App, error) {
	pal, err := palette.Load(cfg.Palette.Files...)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}

	registry, err := actions.Registry()
	if err != nil {
		return nil, fmt.Errorf("register actions: %w", err)
	}

	store := assets.New(fs, filepath.Join(cfg.DataDir, AssetsDir))

	return &App{
		Config:   cfg,
		DB:       database,
		Fs:       fs,
		Gateway:  stores.NewGatewayStore(database, store),
		History:  stores.NewHistory(database),
		Assets:   store,
		Palette:  pal,
		Matcher:  colormatch.NewMatcher(pal, cfg.Colors.Quality),
		Registry: registry,
	}, nil
}

// Env returns the action environment described by the config.
func (a *App) Env() *action.Env {
	env := action.NewEnv(a.Gateway, a.Matcher)
	env.Fs = a.Fs
	env.MaxColors = a.Config.Colors.MaxSelected
	env.Sampling = a.Config.Sampling
	env.Quote = a.Config.QuotePolicy()
	env.DefaultMarginType = a.Config.Quote.DefaultMarginType
	env.ValidityDays = a.Config.Quote.ValidityDays
	env.BriefMaxLength = a.Config.Brief.MaxLength
	return env
}

// Start creates a flow for the action id using Env.
func (a *App) Start(id string) (*action.Flow, error) {
	return a.Registry.Start(id, a.Env())
}
