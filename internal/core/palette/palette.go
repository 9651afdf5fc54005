// Package palette holds the read-only list of reference colours that sampled
// colours are matched against.
package palette

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/wiz/internal/core/rgb"
)

//go:embed data/default.yaml
var defaultPalette []byte

// ErrDuplicateCode is returned when two entries normalise to the same code.
var ErrDuplicateCode = errors.New("duplicate palette code")

// Entry is a named reference colour.
type Entry struct {
	Code string  `json:"code" yaml:"code"`
	Name string  `json:"name" yaml:"name"`
	Hex  string  `json:"hex"  yaml:"hex"`
	RGB  rgb.RGB `json:"rgb"  yaml:"-"`
}

// File is the on-disk palette format.
type File struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// Store is an immutable, ordered palette. The zero value is an empty palette.
type Store struct {
	entries []Entry
	byCode  map[string]int
}

// New validates entries and builds a Store. Order is preserved.
func New(entries []Entry) (*Store, error) {
	s := &Store{
		entries: make([]Entry, 0, len(entries)),
		byCode:  make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Code) == "" {
			return nil, fmt.Errorf("entry %d: code is required", i)
		}
		c, err := rgb.ParseHex(e.Hex)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Code, err)
		}

		key := NormalizeCode(e.Code)
		if _, dup := s.byCode[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCode, e.Code)
		}

		e.RGB = c
		e.Hex = c.Hex()
		s.byCode[key] = len(s.entries)
		s.entries = append(s.entries, e)
	}

	return s, nil
}

// Default returns the embedded reference palette.
func Default() (*Store, error) {
	f, err := Parse(defaultPalette)
	if err != nil {
		return nil, fmt.Errorf("default palette: %w", err)
	}
	return New(f.Entries)
}

// Parse decodes a palette file.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse palette: %w", err)
	}
	return f, nil
}

// Load builds a Store from the embedded default palette followed by every
// file matched by the given glob patterns, in pattern order. Matches within a
// pattern are sorted by doublestar.
func Load(patterns ...string) (*Store, error) {
	base, err := Parse(defaultPalette)
	if err != nil {
		return nil, fmt.Errorf("default palette: %w", err)
	}
	entries := base.Entries

	for _, pattern := range patterns {
		paths, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read palette %s: %w", path, err)
			}
			f, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			entries = append(entries, f.Entries...)
		}
	}

	return New(entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in palette order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// At returns the entry at index i.
func (s *Store) At(i int) Entry {
	return s.entries[i]
}

// Lookup finds an entry by code, ignoring case and extra whitespace.
func (s *Store) Lookup(code string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	i, ok := s.byCode[NormalizeCode(code)]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Search returns entries whose code or name contains query, case-insensitive.
// An empty query returns every entry.
func (s *Store) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Entries()
	}

	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Code), q) || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// NormalizeCode folds case and drops whitespace, so "185C", " 185 c " and
// "185 C" all compare equal.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), ""))
}
