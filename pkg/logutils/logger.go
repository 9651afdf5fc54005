// Package logutils builds the process logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultMaxSize is the log size at which Open rotates the file.
const DefaultMaxSize = 10 << 20

type Options struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string
	// File receives JSON lines. When empty, Console is used instead.
	File string
	// MaxSize rotates File to File+".1" on open once it grows past this many
	// bytes. Zero means DefaultMaxSize, negative disables rotation.
	MaxSize int64
	// Console defaults to stderr.
	Console io.Writer
}

// Open returns the logger and a func releasing its file.
func Open(opts Options) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("log level: %w", err)
	}

	if opts.File == "" {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
		return zerolog.New(cw).Level(lvl).With().Timestamp().Logger(), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("log dir: %w", err)
	}
	if err := rotate(opts.File, opts.MaxSize); err != nil {
		return zerolog.Nop(), noop, err
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("log file: %w", err)
	}

	l := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return l, func() { _ = f.Close() }, nil
}

func rotate(path string, maxSize int64) error {
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if maxSize < 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() < maxSize {
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}
