package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphabet(t *testing.T) {
	require.Len(t, Alphabet, 32)
	for _, c := range "01lo" {
		assert.NotContains(t, Alphabet, string(c))
	}
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 6, 32} {
		got := Generate(n)
		assert.Len(t, got, max(n, 0))
		assert.Empty(t, strings.Trim(got, Alphabet), "Generate(%d) = %q", n, got)
	}
}

func TestGenerate_Spread(t *testing.T) {
	seen := map[string]struct{}{}
	chars := map[rune]struct{}{}
	for range 500 {
		id := Generate(6)
		seen[id] = struct{}{}
		for _, c := range id {
			chars[c] = struct{}{}
		}
	}
	assert.GreaterOrEqual(t, len(seen), 495)
	assert.Len(t, chars, len(Alphabet))
}
