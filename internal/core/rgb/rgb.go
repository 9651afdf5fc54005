// Package rgb provides the 8-bit RGB colour value shared by the palette,
// matcher and sampler packages.
package rgb

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque 8-bit colour.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// New builds an RGB from components.
func New(r, g, b uint8) RGB { return RGB{R: r, G: g, B: b} }

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MustParseHex is ParseHex for static tables; it panics on bad input.
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseTriple parses "r,g,b" with each component in [0,255]. Whitespace
// around components is ignored.
func ParseTriple(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("expected r,g,b, got %q", s)
	}

	var out [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, fmt.Errorf("component %d: %w", i, err)
		}
		if n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("component %d out of range: %d", i, n)
		}
		out[i] = uint8(n)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// FromColor converts any colour to RGB, discarding alpha.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// Hex formats the colour as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

// Colorful returns the go-colorful representation.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Brightness is the mean of the three channels.
func (c RGB) Brightness() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3.0
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
