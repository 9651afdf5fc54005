package onboarding

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/gateway/gatewaytest"
	"github.com/colonyops/wiz/internal/core/wizard"
)

func newFlow(t *testing.T, gw *gatewaytest.Gateway) (*action.Flow, afero.Fs) {
	t.Helper()
	env := action.NewEnv(gw, nil)
	env.Fs = afero.NewMemMapFs()

	f, err := action.NewFlow(Definition(), env)
	require.NoError(t, err)
	return f, env.Fs
}

// writeLogo writes a logo that is 3/4 navy and 1/4 gold.
func writeLogo(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.NRGBA{R: 0, G: 32, B: 96, A: 255}
			if y >= 6 {
				c = color.NRGBA{R: 224, G: 192, B: 64, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func input(t *testing.T, f *action.Flow, lines ...string) action.Reply {
	t.Helper()
	var last action.Reply
	for _, l := range lines {
		r, err := f.Input(l)
		require.NoError(t, err, l)
		last = r
	}
	return last
}

func TestOnboarding_WithLogoAndContact(t *testing.T) {
	gw := gatewaytest.New()
	f, fs := newFlow(t, gw)
	logo := writeLogo(t, fs, "/in/Hornets Logo.png")

	input(t, f, "name Hornets FC", "type club", "city Austin", "state TX", "country US")
	reply := input(t, f, "logo /in/Hornets Logo.png")
	assert.Equal(t, "Logo: Hornets Logo.png (brand colours #002060 / #e0c040)", reply.Info)
	assert.Equal(t, "#002060", wizard.GetOr(f.Session(), KeyPrimary, ""))

	input(t, f, "secondary #FFFFFF", "contact Jo Smith", "email jo@hornets.example")
	require.NoError(t, f.Advance(context.Background()))
	assert.Contains(t, f.View(), "Secondary  #ffffff")

	require.NoError(t, f.Advance(context.Background()))
	require.True(t, f.Done())
	assert.Contains(t, f.View(), "Hornets FC is set up.\nContact Jo Smith added.")

	assert.Equal(t, []string{
		gatewaytest.OpUploadAsset, gatewaytest.OpPutAsset,
		gatewaytest.OpCreateOrg, gatewaytest.OpCreateContact,
	}, gw.Calls())

	require.Len(t, gw.Orgs, 1)
	org := gw.Orgs[0]
	assert.Equal(t, "Hornets FC", org.Name)
	assert.Equal(t, "#002060", org.PrimaryColor)
	assert.Equal(t, "#ffffff", org.SecondaryColor)
	assert.NotEmpty(t, org.LogoRef)
	assert.Equal(t, logo, gw.Uploads["mem://uploads/"+org.LogoRef])
}

func TestOnboarding_ContactFailureKeepsOrganization(t *testing.T) {
	gw := gatewaytest.New()
	gw.Fail(gatewaytest.OpCreateContact, errors.New("timeout"))
	f, _ := newFlow(t, gw)

	input(t, f, "name Acme", "contact Al")
	require.NoError(t, f.Advance(context.Background()))
	require.NoError(t, f.Advance(context.Background()))

	assert.True(t, f.Done())
	assert.False(t, wizard.GetOr(f.Session(), KeyContactSaved, true))
	assert.Contains(t, f.View(), "The contact could not be saved: Could not create contact. Please try again.")
	assert.Len(t, gw.Orgs, 1)
}

func TestOnboarding_UploadFailureCreatesNothing(t *testing.T) {
	gw := gatewaytest.New()
	gw.Fail(gatewaytest.OpPutAsset, errors.New("connection reset"))
	f, fs := newFlow(t, gw)
	writeLogo(t, fs, "/logo.png")

	input(t, f, "name Acme", "logo /logo.png")
	require.NoError(t, f.Advance(context.Background()))

	err := f.Advance(context.Background())
	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "upload logo", ge.Op)
	assert.Equal(t, wizard.StepConfirm, f.Session().Current().Type)
	assert.Empty(t, gw.Orgs)
}

type unreadableFs struct{ afero.Fs }

func (fs unreadableFs) Open(name string) (afero.File, error) {
	f, err := fs.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return unreadableFile{f}, nil
}

type unreadableFile struct{ afero.File }

func (unreadableFile) Read([]byte) (int, error) { return 0, errors.New("input/output error") }

func TestOnboarding_LogoReadErrorAborts(t *testing.T) {
	gw := gatewaytest.New()
	env := action.NewEnv(gw, nil)
	env.Fs = afero.NewMemMapFs()
	writeLogo(t, env.Fs, "/logo.png")

	f, err := action.NewFlow(Definition(), env)
	require.NoError(t, err)
	input(t, f, "name Acme", "logo /logo.png")
	require.NoError(t, f.Advance(context.Background()))

	// The file became unreadable between picking it and submitting.
	env.Fs = unreadableFs{env.Fs}
	err = f.Advance(context.Background())

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "upload logo", ge.Op)
	assert.ErrorContains(t, err, "input/output error")
	assert.Zero(t, gw.CallCount(gatewaytest.OpUploadAsset))
	assert.Empty(t, gw.Orgs)
}

func TestOnboarding_Validation(t *testing.T) {
	f, fs := newFlow(t, gatewaytest.New())
	require.NoError(t, afero.WriteFile(fs, "/notes.txt", []byte("hi"), 0o644))

	_, err := f.Next()
	require.ErrorIs(t, err, action.ErrNotReady)

	input(t, f, "name Acme", "phone 555-0100")
	_, err = f.Next()
	require.ErrorIs(t, err, action.ErrNotReady, "contact details without a name")

	for _, line := range []string{"email nope", "primary red", "logo /notes.txt", "logo /missing.png", "fly"} {
		_, err := f.Input(line)
		assert.Error(t, err, line)
	}

	reply := input(t, f, "logo")
	assert.Equal(t, "Logo cleared", reply.Info)
}
