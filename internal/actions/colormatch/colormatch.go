// Package colormatch is the colour-matching action: optionally load an image,
// collect up to MaxColors colours by point picking or manual entry, match each
// against the palette, and save the selection as a colour spec.
package colormatch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/spf13/afero"

	"github.com/colonyops/wiz/internal/core/action"
	cm "github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/rgb"
	"github.com/colonyops/wiz/internal/core/sampler"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "colormatch"

// Session keys.
const (
	KeyImagePath  = "image_path"
	KeyImage      = "image"
	KeyCandidates = "candidates"
	KeySelection  = "selection"
	KeyName       = "spec_name"
	KeySpecCode   = "spec_code"
)

// ErrNoPalette is returned when the environment has no matcher.
var ErrNoPalette = errors.New("no palette loaded")

// ErrNoImage is returned by point picks before an image is loaded.
var ErrNoImage = errors.New("no image loaded")

const colorsHelp = `pick <x> <y> <w> <h>   sample the image shown at w x h
use <n>                add dominant colour n
hex <#rrggbb>          add a colour by hex
rgb <r,g,b>            add a colour by components
code <palette code>    add a palette colour directly
rm <n>                 remove colour n
name <text>            name the spec`

// Definition returns the colour-match action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Color match",
		Description: "Match brand colours to the ink palette",
		Init: func(st action.State) map[string]any {
			return map[string]any{KeySelection: cm.NewSelection(st.MaxColors)}
		},
		Steps: []action.Step{
			{
				Type:  wizard.StepPick,
				Title: "Image",
				Help:  "image <path> to sample from a file, or next to enter colours by hand",
				View: func(st action.State) string {
					if p := wizard.GetOr(st.Session, KeyImagePath, ""); p != "" {
						return "Image: " + p + "\n"
					}
					return "No image. Colours can be entered manually.\n"
				},
				Handle: handleImage,
			},
			{
				Type:   wizard.StepChoose,
				Title:  "Colors",
				Help:   colorsHelp,
				Load:   loadImage,
				View:   viewSelection,
				Handle: handleColors,
				Ready: func(st action.State) error {
					if Selection(st).Len() == 0 {
						return criterio.NewFieldErrors(KeySelection, errors.New("add at least one colour"))
					}
					return nil
				},
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Review",
				View: func(st action.State) string {
					return "Save this colour spec?\n\n" + viewSelection(st)
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Saved",
				View: func(st action.State) string {
					return fmt.Sprintf("Colour spec %s saved with %d colours.",
						wizard.GetOr(st.Session, KeySpecCode, ""), Selection(st).Len())
				},
			},
		},
		Submit: submit,
	}
}

// Selection returns the current selection.
func Selection(st action.State) cm.Selection {
	return wizard.GetOr(st.Session, KeySelection, cm.NewSelection(st.MaxColors))
}

func handleImage(st action.State, cmd action.Command) (action.Reply, error) {
	switch cmd.Name {
	case "image":
		path := strings.TrimSpace(cmd.Rest)
		if path == "" {
			return action.Reply{}, errors.New("image: path is required")
		}
		ok, err := afero.Exists(st.Fs, path)
		if err != nil {
			return action.Reply{}, err
		}
		if !ok {
			return action.Reply{}, fmt.Errorf("image: %s does not exist", path)
		}
		return action.Reply{Set: map[string]any{KeyImagePath: path}, Info: "Image: " + path}, nil
	case "clear":
		return action.Reply{Set: map[string]any{KeyImagePath: ""}, Info: "Image cleared"}, nil
	}
	return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
}

// loadImage decodes the chosen image and ranks its dominant colours.
func loadImage(ctx context.Context, st action.State) (action.Result, error) {
	path := wizard.GetOr(st.Session, KeyImagePath, "")
	if path == "" {
		return action.Result{Data: map[string]any{KeyImage: nil, KeyCandidates: []string(nil)}}, nil
	}

	img, err := sampler.DecodeFile(st.Fs, path)
	if err != nil {
		return action.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return action.Result{}, err
	}
	ext := sampler.ExtractDominant(img, st.Sampling)

	return action.Result{
		Data:    map[string]any{KeyImage: img, KeyCandidates: ext.Candidates},
		Message: fmt.Sprintf("Found %d dominant colours", len(ext.Candidates)),
	}, nil
}

func handleColors(st action.State, cmd action.Command) (action.Reply, error) {
	sel := Selection(st)

	switch cmd.Name {
	case "rm":
		n, err := cmd.Int(0)
		if err != nil {
			return action.Reply{}, err
		}
		next, err := sel.RemoveAt(n)
		if err != nil {
			return action.Reply{}, err
		}
		return action.Reply{Set: map[string]any{KeySelection: next}, Info: "Removed " + sel.Colors[n-1].Hex}, nil
	case "name":
		return action.Reply{Set: map[string]any{KeyName: cmd.Rest}, Info: "Name: " + cmd.Rest}, nil
	}

	if st.Matcher == nil {
		return action.Reply{}, ErrNoPalette
	}
	if sel.Full() {
		return action.Reply{Warn: fmt.Sprintf("Colour limit reached (%d). Remove one first.", sel.Len())}, nil
	}

	var (
		c   rgb.RGB
		res cm.Result
		err error
	)
	switch cmd.Name {
	case "pick":
		c, err = pointPick(st, cmd)
		if err == nil {
			res, err = st.Matcher.Match(c)
		}
	case "use":
		c, err = candidate(st, cmd)
		if err == nil {
			res, err = st.Matcher.Match(c)
		}
	case "hex", "rgb", "code":
		res, c, err = resolve(st.Matcher, cmd)
	default:
		return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
	}
	if err != nil {
		return action.Reply{}, err
	}

	sc := cm.NewSelectedColor(st.NewID(), c, res)
	next, err := sel.Add(sc)
	if err != nil {
		return action.Reply{}, err
	}

	reply := action.Reply{
		Set:  map[string]any{KeySelection: next},
		Info: fmt.Sprintf("Added %s: %s (%s)", sc.Hex, entryLabel(sc), sc.Tier.Label()),
	}
	if sc.Tier == cm.TierNotRecommended {
		reply.Warn = fmt.Sprintf("%s is far from every palette colour (distance %.1f)", sc.Hex, sc.Distance)
	}
	return reply, nil
}

func resolve(m *cm.Matcher, cmd action.Command) (cm.Result, rgb.RGB, error) {
	raw := strings.TrimSpace(cmd.Rest)
	switch cmd.Name {
	case "hex":
		if !strings.HasPrefix(raw, "#") {
			raw = "#" + raw
		}
	case "rgb":
		raw = strings.Join(strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }), ",")
		if strings.Count(raw, ",") != 2 {
			return cm.Result{}, rgb.RGB{}, errors.New("rgb: expected three components")
		}
	case "code":
		if raw == "" {
			return cm.Result{}, rgb.RGB{}, errors.New("code: palette code is required")
		}
		return m.Resolve(cm.Input{Kind: cm.InputCode, Code: raw})
	}

	in, err := cm.ParseInput(raw)
	if err != nil {
		return cm.Result{}, rgb.RGB{}, err
	}
	return m.Resolve(in)
}

func pointPick(st action.State, cmd action.Command) (rgb.RGB, error) {
	img, ok := wizard.Get[image.Image](st.Session, KeyImage)
	if !ok || img == nil {
		return rgb.RGB{}, ErrNoImage
	}

	var v [4]float64
	for i := range v {
		f, err := cmd.Float(i)
		if err != nil {
			return rgb.RGB{}, err
		}
		v[i] = f
	}
	return sampler.PointPick(img, sampler.Point{X: v[0], Y: v[1]}, sampler.Size{W: v[2], H: v[3]})
}

func candidate(st action.State, cmd action.Command) (rgb.RGB, error) {
	n, err := cmd.Int(0)
	if err != nil {
		return rgb.RGB{}, err
	}
	cands := wizard.GetOr[[]string](st.Session, KeyCandidates, nil)
	if n < 1 || n > len(cands) {
		return rgb.RGB{}, fmt.Errorf("no dominant colour #%d", n)
	}
	return rgb.ParseHex(cands[n-1])
}

func entryLabel(sc cm.SelectedColor) string {
	if sc.MatchedPalette.Name == "" {
		return sc.MatchedPalette.Code
	}
	return sc.MatchedPalette.Code + " " + sc.MatchedPalette.Name
}

func viewSelection(st action.State) string {
	var b strings.Builder

	if cands := wizard.GetOr[[]string](st.Session, KeyCandidates, nil); len(cands) > 0 {
		b.WriteString("Dominant colours:")
		for i, c := range cands {
			fmt.Fprintf(&b, " %d:%s", i+1, c)
		}
		b.WriteString("\n\n")
	}

	sel := Selection(st)
	if sel.Len() == 0 {
		b.WriteString("No colours selected.\n")
	}
	for i, c := range sel.Colors {
		manual := ""
		if c.Manual {
			manual = " manual"
		}
		fmt.Fprintf(&b, "%d. %s  %-24s %s%s\n", i+1, c.Hex, entryLabel(c), c.Tier.Label(), manual)
	}
	fmt.Fprintf(&b, "\n%d of %d slots free\n", sel.Remaining(), sel.Max)
	return b.String()
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	rec, err := st.Gateway.CreateColorSpec(ctx, gateway.ColorSpecPayload{
		Name:      wizard.GetOr(st.Session, KeyName, ""),
		ImagePath: wizard.GetOr(st.Session, KeyImagePath, ""),
		Colors:    Selection(st).Colors,
	})
	if err != nil {
		return action.Result{}, gateway.Wrap("save colour spec", err)
	}
	return action.Result{
		Data:    map[string]any{KeySpecCode: rec.SpecCode},
		Message: "Colour spec " + rec.SpecCode + " saved",
	}, nil
}
