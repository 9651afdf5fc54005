package logutils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wiz.log")

	l, done, err := Open(Options{Level: "warn", File: path})
	require.NoError(t, err)
	l.Info().Msg("below level")
	l.Warn().Str("quote", "Q-1").Msg("margin low")
	done()

	got := readFile(t, path)
	assert.NotContains(t, got, "below level")
	assert.Contains(t, got, `"quote":"Q-1"`)

	l, done, err = Open(Options{Level: "info", File: path})
	require.NoError(t, err)
	l.Info().Msg("second run")
	done()

	got = readFile(t, path)
	assert.Contains(t, got, "margin low")
	assert.Contains(t, got, "second run")
}

func TestOpen_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiz.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o644))

	l, done, err := Open(Options{Level: "info", File: path, MaxSize: 32})
	require.NoError(t, err)
	l.Info().Msg("fresh")
	done()

	assert.Equal(t, strings.Repeat("x", 64), readFile(t, path+".1"))
	assert.NotContains(t, readFile(t, path), "xxxx")

	_, done, err = Open(Options{Level: "info", File: path, MaxSize: -1})
	require.NoError(t, err)
	done()
	assert.Contains(t, readFile(t, path), "fresh")
}

func TestOpen_Console(t *testing.T) {
	var buf bytes.Buffer
	l, done, err := Open(Options{Level: "debug", Console: &buf})
	require.NoError(t, err)
	defer done()

	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	l.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestOpen_BadLevel(t *testing.T) {
	_, done, err := Open(Options{Level: "loud"})
	require.ErrorContains(t, err, "log level")
	done()
}
