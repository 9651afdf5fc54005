package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/rgb"
)

func TestDefault(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)
	require.Positive(t, s.Len())

	e, ok := s.Lookup("185 C")
	require.True(t, ok)
	assert.Equal(t, "#e4002b", e.Hex)
	assert.Equal(t, rgb.New(0xe4, 0x00, 0x2b), e.RGB)
}

func TestLookup_Normalization(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"185 C", "185c", "  185   c ", "185C"} {
		e, ok := s.Lookup(code)
		require.True(t, ok, "lookup %q", code)
		assert.Equal(t, "185 C", e.Code)
	}

	_, ok := s.Lookup("999 Z")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	t.Run("duplicate codes", func(t *testing.T) {
		_, err := New([]Entry{
			{Code: "1 C", Hex: "#000000"},
			{Code: "1c", Hex: "#ffffff"},
		})
		require.ErrorIs(t, err, ErrDuplicateCode)
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, err := New([]Entry{{Code: "1 C", Hex: "nope"}})
		require.Error(t, err)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := New([]Entry{{Code: " ", Hex: "#000000"}})
		require.Error(t, err)
	})

	t.Run("preserves order and normalizes hex", func(t *testing.T) {
		s, err := New([]Entry{
			{Code: "B", Hex: "#FFFFFF"},
			{Code: "A", Hex: "000"},
		})
		require.NoError(t, err)
		entries := s.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "B", entries[0].Code)
		assert.Equal(t, "#ffffff", entries[0].Hex)
		assert.Equal(t, "#000000", entries[1].Hex)
	})
}

func TestEntries_ReturnsCopy(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	entries := s.Entries()
	entries[0].Code = "changed"

	assert.NotEqual(t, "changed", s.At(0).Code)
}

func TestLoad_AppendsGlobMatches(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "brands")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	content := []byte(`name: house
entries:
  - { code: "HOUSE-1", name: "House Teal", hex: "#0f7c80" }
`)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "house.yaml"), content, 0o644))

	base, err := Default()
	require.NoError(t, err)

	s, err := Load(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)
	assert.Equal(t, base.Len()+1, s.Len())

	e, ok := s.Lookup("house-1")
	require.True(t, ok)
	assert.Equal(t, "House Teal", e.Name)
	assert.Equal(t, s.Len()-1, indexOf(s, "HOUSE-1"), "extra palettes follow the default entries")
}

func TestLoad_DuplicateOfDefault(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`entries:
  - { code: "185 C", name: "Clash", hex: "#000000" }
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clash.yaml"), content, 0o644))

	_, err := Load(filepath.Join(dir, "*.yaml"))
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestSearch(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	got := s.Search("navy")
	require.NotEmpty(t, got)
	for _, e := range got {
		assert.Contains(t, []string{"280 C", "281 C"}, e.Code)
	}

	assert.Len(t, s.Search(""), s.Len())
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Entries())
	_, ok := s.Lookup("185 C")
	assert.False(t, ok)
}

func indexOf(s *Store, code string) int {
	for i, e := range s.Entries() {
		if e.Code == code {
			return i
		}
	}
	return -1
}
