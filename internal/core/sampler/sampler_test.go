package sampler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/rgb"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, fs afero.Fs, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestMapPoint(t *testing.T) {
	natural := Size{W: 1000, H: 500}
	displayed := Size{W: 250, H: 125}

	pt, err := MapPoint(Point{X: 10, Y: 20}, natural, displayed)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 80), pt)

	pt, err = MapPoint(Point{X: 250, Y: 125}, natural, displayed)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(999, 499), pt, "far edge clamps to the last pixel")

	_, err = MapPoint(Point{X: -1, Y: 0}, natural, displayed)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = MapPoint(Point{X: 1, Y: 1}, natural, Size{W: 0, H: 10})
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestPointPick(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	left := color.NRGBA{R: 200, G: 10, B: 10, A: 255}
	right := color.NRGBA{R: 10, G: 10, B: 200, A: 40}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				img.SetNRGBA(x, y, left)
			} else {
				img.SetNRGBA(x, y, right)
			}
		}
	}

	// Displayed at 2x.
	got, err := PointPick(img, Point{X: 1, Y: 1}, Size{W: 8, H: 4})
	require.NoError(t, err)
	assert.Equal(t, rgb.New(200, 10, 10), got)

	got, err = PointPick(img, Point{X: 7, Y: 3}, Size{W: 8, H: 4})
	require.NoError(t, err)
	assert.Equal(t, rgb.New(10, 10, 200), got, "alpha is ignored")
}

func TestPointPick_OffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 12, 12))
	img.SetNRGBA(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	got, err := PointPick(img, Point{X: 0, Y: 0}, Size{W: 2, H: 2})
	require.NoError(t, err)
	assert.Equal(t, rgb.New(1, 2, 3), got)
}

func TestDecodeFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := DecodeFile(fs, "missing.png")
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "open", ee.Op)

	require.NoError(t, afero.WriteFile(fs, "broken.png", []byte("not an image"), 0o644))
	_, err = DecodeFile(fs, "broken.png")
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "decode", ee.Op)
	assert.Equal(t, "broken.png", ee.Path)
	assert.Contains(t, err.Error(), "broken.png")
}

func TestDecodeFile_PNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "logo.png", solid(3, 3, color.NRGBA{R: 9, G: 8, B: 7, A: 255}))

	img, err := DecodeFile(fs, "logo.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}
