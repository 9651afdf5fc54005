package rgb

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{"with hash", "#e4002b", New(0xe4, 0x00, 0x2b), false},
		{"without hash", "E4002B", New(0xe4, 0x00, 0x2b), false},
		{"short form", "#fa0", New(0xff, 0xaa, 0x00), false},
		{"surrounding space", "  #000000 ", New(0, 0, 0), false},
		{"garbage", "#zzzzzz", RGB{}, true},
		{"too short", "#12", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 15, 16, 127, 128, 200, 254, 255} {
		c := New(v, 255-v, v/2)
		back, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestParseTriple(t *testing.T) {
	got, err := ParseTriple("10, 20,30")
	require.NoError(t, err)
	assert.Equal(t, New(10, 20, 30), got)

	_, err = ParseTriple("1,2")
	require.Error(t, err)

	_, err = ParseTriple("1,2,256")
	require.Error(t, err)

	_, err = ParseTriple("a,2,3")
	require.Error(t, err)
}

func TestFromColor_IgnoresAlpha(t *testing.T) {
	got := FromColor(color.NRGBA{R: 200, G: 100, B: 50, A: 10})
	assert.Equal(t, New(200, 100, 50), got)
}

func TestBrightness(t *testing.T) {
	assert.InDelta(t, 20.0, New(10, 20, 30).Brightness(), 1e-9)
}
