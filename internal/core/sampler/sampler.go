// Package sampler extracts colours from images, either a single pixel picked
// on a displayed image or the dominant colours of a whole image.
package sampler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/colonyops/wiz/internal/core/rgb"
)

var (
	// ErrOutOfBounds is returned when a click falls outside the displayed image.
	ErrOutOfBounds = errors.New("point is outside the image")
	// ErrInvalidSize is returned for non-positive display or image sizes.
	ErrInvalidSize = errors.New("invalid image size")
)

// ExtractionError reports a failed image operation. Callers must handle it;
// previous colour state is never silently kept on failure.
type ExtractionError struct {
	Op   string // "open", "decode"
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s image: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Decode reads a PNG, JPEG, GIF, BMP or WebP image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &ExtractionError{Op: "decode", Err: err}
	}
	return img, format, nil
}

// DecodeFile opens and decodes path from fsys.
func DecodeFile(fsys afero.Fs, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ExtractionError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, _, err := Decode(f)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			ee.Path = path
		}
		return nil, err
	}
	return img, nil
}

// Size is a width and height in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a coordinate on the displayed image, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scale returns the factors mapping displayed coordinates to natural ones.
func Scale(natural, displayed Size) (float64, float64, error) {
	if displayed.W <= 0 || displayed.H <= 0 || natural.W <= 0 || natural.H <= 0 {
		return 0, 0, ErrInvalidSize
	}
	return natural.W / displayed.W, natural.H / displayed.H, nil
}

// MapPoint converts a click on the displayed image into natural pixel
// coordinates, clamped to the image.
func MapPoint(p Point, natural, displayed Size) (image.Point, error) {
	if p.X < 0 || p.Y < 0 || p.X > displayed.W || p.Y > displayed.H {
		return image.Point{}, fmt.Errorf("%w: (%g, %g)", ErrOutOfBounds, p.X, p.Y)
	}
	sx, sy, err := Scale(natural, displayed)
	if err != nil {
		return image.Point{}, err
	}

	x := int(math.Floor(p.X * sx))
	y := int(math.Floor(p.Y * sy))
	x = min(max(x, 0), int(natural.W)-1)
	y = min(max(y, 0), int(natural.H)-1)
	return image.Point{X: x, Y: y}, nil
}

// PointPick reads the pixel under a click on an image displayed at the given
// size. Alpha is ignored.
func PointPick(img image.Image, p Point, displayed Size) (rgb.RGB, error) {
	b := img.Bounds()
	natural := Size{W: float64(b.Dx()), H: float64(b.Dy())}

	pt, err := MapPoint(p, natural, displayed)
	if err != nil {
		return rgb.RGB{}, err
	}
	return rgb.FromColor(img.At(b.Min.X+pt.X, b.Min.Y+pt.Y)), nil
}
