package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/wiz/internal/core/config"
)

// Flags holds the global flag values. Config is set by the root Before hook.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	Config *config.Config
}

// DefaultConfigPath is $XDG_CONFIG_HOME/wiz/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "wiz", "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/wiz.
func DefaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "wiz")
}

// xdgDir reads env, falling back to a path under the home directory.
func xdgDir(env string, homeRel ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(append([]string{home}, homeRel...)...)
}
