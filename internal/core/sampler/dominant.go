package sampler

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"

	"github.com/colonyops/wiz/internal/core/rgb"
)

// Policy holds the tunables for dominant-colour extraction.
type Policy struct {
	MaxDimension   int     `yaml:"max_dimension"   json:"max_dimension"`
	QuantizeStep   int     `yaml:"quantize_step"   json:"quantize_step"`
	AlphaThreshold uint8   `yaml:"alpha_threshold" json:"alpha_threshold"`
	WhiteCutoff    float64 `yaml:"white_cutoff"    json:"white_cutoff"`
	BlackCutoff    float64 `yaml:"black_cutoff"    json:"black_cutoff"`
	MaxCandidates  int     `yaml:"max_candidates"  json:"max_candidates"`
}

// DefaultPolicy returns the standard extraction settings.
func DefaultPolicy() Policy {
	return Policy{
		MaxDimension:   100,
		QuantizeStep:   32,
		AlphaThreshold: 128,
		WhiteCutoff:    240,
		BlackCutoff:    15,
		MaxCandidates:  6,
	}
}

// Validate checks the policy values are usable.
func (p Policy) Validate() error {
	switch {
	case p.MaxDimension < 1:
		return fmt.Errorf("max_dimension must be at least 1")
	case p.QuantizeStep < 1 || p.QuantizeStep > 255:
		return fmt.Errorf("quantize_step must be between 1 and 255")
	case p.BlackCutoff >= p.WhiteCutoff:
		return fmt.Errorf("black_cutoff must be below white_cutoff")
	case p.MaxCandidates < 1:
		return fmt.Errorf("max_candidates must be at least 1")
	}
	return nil
}

// Extraction is the ranked result of dominant-colour extraction.
type Extraction struct {
	Candidates []string `json:"candidates"`
	Counts     []int    `json:"counts"`
	Sampled    int      `json:"sampled"`
	Primary    string   `json:"primary,omitempty"`
	Secondary  string   `json:"secondary,omitempty"`
}

// Empty reports whether no candidate colours were found.
func (e Extraction) Empty() bool { return len(e.Candidates) == 0 }

// Apply picks brand-colour defaults from the extraction. With two or more
// candidates the top two replace both values; with one only the primary is
// replaced; with none the previous values are kept.
func (e Extraction) Apply(prevPrimary, prevSecondary string) (string, string) {
	switch len(e.Candidates) {
	case 0:
		return prevPrimary, prevSecondary
	case 1:
		return e.Candidates[0], prevSecondary
	default:
		return e.Candidates[0], e.Candidates[1]
	}
}

// Quantize rounds v to the nearest multiple of step, clamped to 255.
func Quantize(v uint8, step int) uint8 {
	if step <= 1 {
		return v
	}
	q := int(math.Round(float64(v)/float64(step))) * step
	return uint8(min(q, 255))
}

// Downscale shrinks img so neither side exceeds maxDim, preserving aspect
// ratio. Images already within bounds are returned as is.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	ratio := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
	nw := max(1, int(math.Round(float64(w)*ratio)))
	nh := max(1, int(math.Round(float64(h)*ratio)))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

type bucket struct {
	key   string
	count int
	order int
}

// ExtractDominant ranks the quantised colours of img by pixel count after
// dropping transparent, near-white and near-black pixels.
func ExtractDominant(img image.Image, p Policy) Extraction {
	small := Downscale(img, p.MaxDimension)
	b := small.Bounds()

	buckets := map[string]*bucket{}
	var ext Extraction

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := color.NRGBAModel.Convert(small.At(x, y)).(color.NRGBA)
			if px.A < p.AlphaThreshold {
				continue
			}

			c := rgb.New(px.R, px.G, px.B)
			bright := c.Brightness()
			if bright > p.WhiteCutoff || bright < p.BlackCutoff {
				continue
			}
			ext.Sampled++

			q := rgb.New(
				Quantize(c.R, p.QuantizeStep),
				Quantize(c.G, p.QuantizeStep),
				Quantize(c.B, p.QuantizeStep),
			)
			key := q.Hex()
			if bk, ok := buckets[key]; ok {
				bk.count++
				continue
			}
			buckets[key] = &bucket{key: key, count: 1, order: len(buckets)}
		}
	}

	ranked := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ranked = append(ranked, bk)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].order < ranked[j].order
	})

	limit := p.MaxCandidates
	if limit <= 0 {
		limit = DefaultPolicy().MaxCandidates
	}
	for _, bk := range ranked[:min(limit, len(ranked))] {
		ext.Candidates = append(ext.Candidates, bk.key)
		ext.Counts = append(ext.Counts, bk.count)
	}

	ext.Primary, ext.Secondary = ext.Apply("", "")
	return ext
}

// ExtractFile decodes path from fsys and extracts its dominant colours.
func ExtractFile(fsys afero.Fs, path string, p Policy) (Extraction, error) {
	img, err := DecodeFile(fsys, path)
	if err != nil {
		return Extraction{}, err
	}
	return ExtractDominant(img, p), nil
}
