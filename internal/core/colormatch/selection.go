package colormatch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/colonyops/wiz/internal/core/palette"
	"github.com/colonyops/wiz/internal/core/rgb"
)

// DefaultMaxColors is the number of colours a session may hold at once.
const DefaultMaxColors = 6

var (
	// ErrColorCap is returned when adding to a full selection.
	ErrColorCap = errors.New("colour limit reached")
	// ErrColorNotSelected is returned when removing an unknown colour id.
	ErrColorNotSelected = errors.New("colour not in selection")
)

// SelectedColor is a colour the user has added to a session.
type SelectedColor struct {
	ID             string        `json:"id"`
	Hex            string        `json:"hex"`
	RGB            rgb.RGB       `json:"rgb"`
	MatchedPalette palette.Entry `json:"matched_palette"`
	Distance       float64       `json:"distance"`
	Tier           Tier          `json:"tier"`
	Manual         bool          `json:"manual,omitempty"`
}

// NewSelectedColor combines a sampled colour with its match result.
func NewSelectedColor(id string, c rgb.RGB, res Result) SelectedColor {
	return SelectedColor{
		ID:             id,
		Hex:            c.Hex(),
		RGB:            c,
		MatchedPalette: res.Entry,
		Distance:       res.Distance,
		Tier:           res.Tier,
		Manual:         res.Manual,
	}
}

// Selection is a capped, ordered set of selected colours. Methods never modify
// the receiver.
type Selection struct {
	Max    int             `json:"max"`
	Colors []SelectedColor `json:"colors"`
}

// NewSelection creates an empty selection. A non-positive max uses
// DefaultMaxColors.
func NewSelection(maxColors int) Selection {
	if maxColors <= 0 {
		maxColors = DefaultMaxColors
	}
	return Selection{Max: maxColors}
}

// Len returns the number of selected colours.
func (s Selection) Len() int { return len(s.Colors) }

// Full reports whether the cap has been reached.
func (s Selection) Full() bool { return len(s.Colors) >= s.limit() }

// Remaining returns how many more colours fit.
func (s Selection) Remaining() int { return max(0, s.limit()-len(s.Colors)) }

func (s Selection) limit() int {
	if s.Max <= 0 {
		return DefaultMaxColors
	}
	return s.Max
}

// Add appends c. The receiver is returned unchanged with ErrColorCap when full.
func (s Selection) Add(c SelectedColor) (Selection, error) {
	if s.Full() {
		return s, fmt.Errorf("%w: at most %d colours", ErrColorCap, s.limit())
	}
	next := s
	next.Colors = append(slices.Clone(s.Colors), c)
	return next, nil
}

// Remove drops the colour with the given id.
func (s Selection) Remove(id string) (Selection, error) {
	i := slices.IndexFunc(s.Colors, func(c SelectedColor) bool { return c.ID == id })
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrColorNotSelected, id)
	}
	next := s
	next.Colors = slices.Delete(slices.Clone(s.Colors), i, i+1)
	return next, nil
}

// RemoveAt drops the colour at a 1-based position, as shown to users.
func (s Selection) RemoveAt(pos int) (Selection, error) {
	if pos < 1 || pos > len(s.Colors) {
		return s, fmt.Errorf("%w: position %d", ErrColorNotSelected, pos)
	}
	return s.Remove(s.Colors[pos-1].ID)
}
