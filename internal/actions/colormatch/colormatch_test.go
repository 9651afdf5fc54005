package colormatch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/action"
	cm "github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/gateway/gatewaytest"
	"github.com/colonyops/wiz/internal/core/palette"
	"github.com/colonyops/wiz/internal/core/wizard"
)

func testEnv(t *testing.T, gw *gatewaytest.Gateway) *action.Env {
	t.Helper()
	p, err := palette.New([]palette.Entry{
		{Code: "RED", Name: "Red", Hex: "#ff0000"},
		{Code: "BLUE", Name: "Blue", Hex: "#0000ff"},
		{Code: "BLK", Name: "Black", Hex: "#000000"},
	})
	require.NoError(t, err)

	env := action.NewEnv(gw, cm.NewMatcher(p, cm.DefaultThresholds()))
	env.Fs = afero.NewMemMapFs()
	env.MaxColors = 3
	n := 0
	env.NewID = func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
	return env
}

func writeLogo(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 10 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func input(t *testing.T, f *action.Flow, line string) action.Reply {
	t.Helper()
	r, err := f.Input(line)
	require.NoError(t, err, line)
	return r
}

func selection(f *action.Flow) cm.Selection {
	return wizard.GetOr(f.Session(), KeySelection, cm.Selection{})
}

func TestColorMatch_ManualEntry(t *testing.T) {
	gw := gatewaytest.New()
	f, err := action.NewFlow(Definition(), testEnv(t, gw))
	require.NoError(t, err)

	require.NoError(t, f.Advance(context.Background()), "image is optional")
	assert.Contains(t, f.View(), "No colours selected.")

	_, err = f.Input("pick 1 1 10 10")
	require.ErrorIs(t, err, ErrNoImage)

	reply := input(t, f, "hex ff0000")
	assert.Equal(t, "Added #ff0000: RED Red (Excellent)", reply.Info)
	assert.Empty(t, reply.Warn)

	input(t, f, "rgb 0, 0, 250")
	reply = input(t, f, "hex #808080")
	assert.Contains(t, reply.Warn, "far from every palette colour")

	reply = input(t, f, "code BLK")
	assert.Equal(t, "Colour limit reached (3). Remove one first.", reply.Warn)
	assert.Empty(t, reply.Info)
	assert.Nil(t, reply.Set)
	assert.Equal(t, 3, selection(f).Len(), "full selection is unchanged")

	input(t, f, "rm 3")
	input(t, f, "code blk")

	sel := selection(f)
	require.Equal(t, 3, sel.Len())
	assert.Equal(t, "BLUE", sel.Colors[1].MatchedPalette.Code)
	assert.True(t, sel.Colors[2].Manual)
	assert.Equal(t, cm.TierExcellent, sel.Colors[2].Tier)
	assert.Contains(t, f.View(), "0 of 3 slots free")

	input(t, f, "name Home kit")
	require.NoError(t, f.Advance(context.Background()))
	require.NoError(t, f.Advance(context.Background()))
	assert.True(t, f.Done())
	assert.Contains(t, f.View(), "saved with 3 colours")
	assert.Equal(t, 1, gw.CallCount(gatewaytest.OpCreateColorSpec))
}

func TestColorMatch_ImageSampling(t *testing.T) {
	gw := gatewaytest.New()
	env := testEnv(t, gw)
	writeLogo(t, env.Fs, "/logo.png")

	f, err := action.NewFlow(Definition(), env)
	require.NoError(t, err)

	_, err = f.Input("image /missing.png")
	require.Error(t, err)
	input(t, f, "image /logo.png")

	require.NoError(t, f.Advance(context.Background()))
	assert.Equal(t, []string{"#ff0000", "#0000ff"}, wizard.GetOr[[]string](f.Session(), KeyCandidates, nil))
	assert.Contains(t, f.View(), "1:#ff0000 2:#0000ff")

	reply := input(t, f, "pick 15 5 20 10")
	assert.Contains(t, reply.Info, "Added #0000ff")

	reply = input(t, f, "use 1")
	assert.Contains(t, reply.Info, "Added #ff0000")

	_, err = f.Input("pick 25 5 20 10")
	require.Error(t, err, "outside the displayed image")
	_, err = f.Input("use 9")
	require.Error(t, err)

	assert.Equal(t, 2, selection(f).Len())
}

func TestColorMatch_BadImageKeepsStep(t *testing.T) {
	env := testEnv(t, gatewaytest.New())
	require.NoError(t, afero.WriteFile(env.Fs, "/notes.png", []byte("not an image"), 0o644))

	f, err := action.NewFlow(Definition(), env)
	require.NoError(t, err)
	input(t, f, "image /notes.png")

	err = f.Advance(context.Background())
	require.Error(t, err)
	assert.False(t, f.Busy())
	assert.Equal(t, wizard.StepChoose, f.Session().Current().Type)

	// Manual entry still works after a failed decode.
	input(t, f, "hex #0000ff")
	assert.Equal(t, 1, selection(f).Len())
}

func TestColorMatch_RequiresColor(t *testing.T) {
	f, err := action.NewFlow(Definition(), testEnv(t, gatewaytest.New()))
	require.NoError(t, err)
	require.NoError(t, f.Advance(context.Background()))

	_, err = f.Next()
	require.ErrorIs(t, err, action.ErrNotReady)
}
