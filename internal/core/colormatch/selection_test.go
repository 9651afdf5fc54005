package colormatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/rgb"
)

func color(id string) SelectedColor {
	return SelectedColor{ID: id, Hex: "#000000", RGB: rgb.New(0, 0, 0)}
}

func TestSelection_Cap(t *testing.T) {
	s := NewSelection(0)
	assert.Equal(t, DefaultMaxColors, s.Max)

	for i := range DefaultMaxColors {
		var err error
		s, err = s.Add(color(fmt.Sprint(i)))
		require.NoError(t, err)
	}
	assert.True(t, s.Full())
	assert.Equal(t, 0, s.Remaining())

	next, err := s.Add(color("overflow"))
	require.ErrorIs(t, err, ErrColorCap)
	assert.Equal(t, s, next)
	assert.Equal(t, DefaultMaxColors, next.Len())
}

func TestSelection_AddDoesNotAlias(t *testing.T) {
	base, err := NewSelection(3).Add(color("a"))
	require.NoError(t, err)

	left, err := base.Add(color("b"))
	require.NoError(t, err)
	right, err := base.Add(color("c"))
	require.NoError(t, err)

	assert.Equal(t, "b", left.Colors[1].ID)
	assert.Equal(t, "c", right.Colors[1].ID)
	assert.Equal(t, 1, base.Len())
}

func TestSelection_Remove(t *testing.T) {
	s := NewSelection(6)
	s, _ = s.Add(color("a"))
	s, _ = s.Add(color("b"))

	next, err := s.Remove("a")
	require.NoError(t, err)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, "b", next.Colors[0].ID)
	assert.Equal(t, 2, s.Len(), "receiver unchanged")

	_, err = s.Remove("zzz")
	require.ErrorIs(t, err, ErrColorNotSelected)

	next, err = s.RemoveAt(2)
	require.NoError(t, err)
	assert.Equal(t, "a", next.Colors[0].ID)

	_, err = s.RemoveAt(3)
	require.ErrorIs(t, err, ErrColorNotSelected)
}

func TestNewSelectedColor(t *testing.T) {
	m := defaultMatcher(t)
	res, err := m.MatchCode("185 C")
	require.NoError(t, err)

	sc := NewSelectedColor("x", rgb.New(1, 2, 3), res)
	assert.Equal(t, "#010203", sc.Hex)
	assert.Equal(t, "185 C", sc.MatchedPalette.Code)
	assert.True(t, sc.Manual)
	assert.Equal(t, TierExcellent, sc.Tier)
}
