package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no input: pass --file or pipe JSON on stdin")

// FileReader decodes a T from the file named by its --file flag, or from
// stdin when the flag is empty or "-". Unknown fields are rejected.
type FileReader[T any] struct {
	path string

	// Stdin and IsTerminal default to the process stdin.
	Stdin      io.Reader
	IsTerminal func() bool
}

func (r *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read JSON input from `PATH` (default stdin)",
		Destination: &r.path,
	}
}

func (r *FileReader[T]) Read() (T, error) {
	var v T

	src, closeFn, err := r.open()
	if err != nil {
		return v, err
	}
	defer closeFn()

	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON input: %w", err)
	}
	return v, nil
}

func (r *FileReader[T]) open() (io.Reader, func(), error) {
	if r.path != "" && r.path != "-" {
		f, err := os.Open(r.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if r.Stdin != nil {
		return r.Stdin, func() {}, nil
	}
	tty := r.IsTerminal
	if tty == nil {
		tty = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if tty() {
		return nil, nil, ErrNoInput
	}
	return os.Stdin, func() {}, nil
}
