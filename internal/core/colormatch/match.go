// Package colormatch finds the nearest palette entry for a colour and grades
// how close the match is.
package colormatch

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/colonyops/wiz/internal/core/palette"
	"github.com/colonyops/wiz/internal/core/rgb"
)

// ErrNotFound is returned when a manually entered palette code is unknown.
var ErrNotFound = errors.New("palette code not found")

// ErrEmptyPalette is returned when matching against a palette with no entries.
var ErrEmptyPalette = errors.New("palette is empty")

// Result is the outcome of matching one colour.
type Result struct {
	Entry    palette.Entry `json:"entry"`
	Distance float64       `json:"distance"`
	Tier     Tier          `json:"tier"`
	Manual   bool          `json:"manual,omitempty"`
}

// Distance is the Euclidean distance between two colours in RGB space.
func Distance(a, b rgb.RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Nearest scans entries in order and returns the index and distance of the
// closest one. Ties keep the first entry encountered. Returns -1 when
// entries is empty.
func Nearest(c rgb.RGB, entries []palette.Entry) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, e := range entries {
		d := Distance(c, e.RGB)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// Matcher matches colours against a palette using a tier policy.
type Matcher struct {
	palette    *palette.Store
	entries    []palette.Entry
	thresholds Thresholds
}

// NewMatcher creates a Matcher. The palette is snapshotted once.
func NewMatcher(p *palette.Store, th Thresholds) *Matcher {
	return &Matcher{
		palette:    p,
		entries:    p.Entries(),
		thresholds: th,
	}
}

// Palette returns the palette the matcher scans.
func (m *Matcher) Palette() *palette.Store { return m.palette }

// Thresholds returns the tier policy in use.
func (m *Matcher) Thresholds() Thresholds { return m.thresholds }

// Match returns the nearest palette entry for c.
func (m *Matcher) Match(c rgb.RGB) (Result, error) {
	i, d := Nearest(c, m.entries)
	if i < 0 {
		return Result{}, ErrEmptyPalette
	}
	return Result{
		Entry:    m.entries[i],
		Distance: d,
		Tier:     m.thresholds.Classify(d),
	}, nil
}

// MatchCode resolves a manually typed palette code. A known code is an exact
// match regardless of its colour: distance 0, tier excellent.
func (m *Matcher) MatchCode(code string) (Result, error) {
	e, ok := m.palette.Lookup(code)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(code))
	}
	return Result{
		Entry:    e,
		Distance: 0,
		Tier:     TierExcellent,
		Manual:   true,
	}, nil
}

// InputKind describes how a colour was entered.
type InputKind string

const (
	InputHex    InputKind = "hex"
	InputTriple InputKind = "rgb"
	InputCode   InputKind = "code"
)

// Input is a parsed colour entry.
type Input struct {
	Kind InputKind
	RGB  rgb.RGB
	Code string
}

// ParseInput accepts "#rrggbb", "r,g,b", or anything else as a palette code.
func ParseInput(s string) (Input, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Input{}, errors.New("colour is required")
	}

	switch {
	case strings.HasPrefix(s, "#"):
		c, err := rgb.ParseHex(s)
		if err != nil {
			return Input{}, err
		}
		return Input{Kind: InputHex, RGB: c}, nil
	case strings.Count(s, ",") == 2:
		c, err := rgb.ParseTriple(s)
		if err != nil {
			return Input{}, err
		}
		return Input{Kind: InputTriple, RGB: c}, nil
	default:
		return Input{Kind: InputCode, Code: s}, nil
	}
}

// Resolve matches a parsed input, using the manual path for codes.
func (m *Matcher) Resolve(in Input) (Result, rgb.RGB, error) {
	if in.Kind == InputCode {
		res, err := m.MatchCode(in.Code)
		if err != nil {
			return Result{}, rgb.RGB{}, err
		}
		return res, res.Entry.RGB, nil
	}

	res, err := m.Match(in.RGB)
	return res, in.RGB, err
}
