// Package designbrief is the design-job action: describe the artwork, preview
// the generated brief, then open a design job.
package designbrief

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/actions/orgs"
	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/brief"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "designbrief"

// Session keys.
const (
	KeyBrief        = "brief"
	KeyRequirements = "requirements"
	KeyDesigner     = "designer_id"
	KeyPreview      = "preview"
	KeyPreviewOf    = "preview_of"
	KeyJobCode      = "job_code"
)

// PreviewWidth is the wrap width used when rendering the preview.
var PreviewWidth = 80

const briefHelp = `brief <text>        set the brief
req <key>=<value>   add a requirement (empty value removes it)
designer <id>       assign a designer`

// Definition returns the design brief action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Design brief",
		Description: "Describe artwork and open a design job",
		Init: func(action.State) map[string]any {
			return map[string]any{KeyRequirements: map[string]string{}}
		},
		Steps: []action.Step{
			orgs.PickStep(),
			{
				Type:   wizard.StepChoose,
				Title:  "Brief",
				Help:   briefHelp,
				View:   viewBrief,
				Handle: handleBrief,
				Ready: func(st action.State) error {
					if strings.TrimSpace(wizard.GetOr(st.Session, KeyBrief, "")) == "" {
						return criterio.NewFieldErrors(KeyBrief, errors.New("describe the design"))
					}
					return nil
				},
			},
			{
				Type:  wizard.StepPreview,
				Title: "Preview",
				Help:  "reload to regenerate",
				Load:  generate,
				View:  viewPreview,
				Ready: previewReady,
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Submit",
				View: func(st action.State) string {
					return "Open a design job for " + orgs.Name(st.Session) + "?\n"
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Submitted",
				View: func(st action.State) string {
					return fmt.Sprintf("Design job %s opened.", wizard.GetOr(st.Session, KeyJobCode, ""))
				},
			},
		},
		Submit: submit,
	}
}

// Requirements returns the requirement map in the session.
func Requirements(s wizard.Session) map[string]string {
	return wizard.GetOr(s, KeyRequirements, map[string]string{})
}

func handleBrief(st action.State, cmd action.Command) (action.Reply, error) {
	switch cmd.Name {
	case "brief":
		text := strings.TrimSpace(cmd.Rest)
		if text == "" {
			return action.Reply{}, errors.New("brief: text is required")
		}
		reply := action.Reply{Set: map[string]any{KeyBrief: text}, Info: "Brief updated"}
		if n := utf8.RuneCountInString(text); st.BriefMaxLength > 0 && n > st.BriefMaxLength {
			reply.Warn = fmt.Sprintf("Brief is %d characters and will be cut to %d", n, st.BriefMaxLength)
		}
		return reply, nil
	case "req":
		key, value, ok := strings.Cut(cmd.Rest, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return action.Reply{}, errors.New("usage: req <key>=<value>")
		}
		reqs := maps.Clone(Requirements(st.Session))
		value = strings.TrimSpace(value)
		if value == "" {
			delete(reqs, key)
			return action.Reply{Set: map[string]any{KeyRequirements: reqs}, Info: "Removed " + key}, nil
		}
		reqs[key] = value
		return action.Reply{Set: map[string]any{KeyRequirements: reqs}, Info: key + " = " + value}, nil
	case "designer":
		return action.Reply{Set: map[string]any{KeyDesigner: cmd.Arg(0)}, Info: "Designer: " + cmd.Arg(0)}, nil
	}
	return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
}

func viewBrief(st action.State) string {
	var b strings.Builder
	text := wizard.GetOr(st.Session, KeyBrief, "")
	if text == "" {
		text = "(empty)"
	}
	fmt.Fprintf(&b, "Brief: %s\n", text)

	reqs := Requirements(st.Session)
	for _, k := range slices.Sorted(maps.Keys(reqs)) {
		fmt.Fprintf(&b, "  %s: %s\n", k, reqs[k])
	}
	if d := wizard.GetOr(st.Session, KeyDesigner, ""); d != "" {
		fmt.Fprintf(&b, "Designer: %s\n", d)
	}
	return b.String()
}

func request(st action.State) brief.Request {
	return brief.Request{
		OrganizationName: orgs.Name(st.Session),
		Brief:            gateway.TruncateBrief(wizard.GetOr(st.Session, KeyBrief, ""), st.BriefMaxLength),
		Requirements:     Requirements(st.Session),
		DesignerID:       wizard.GetOr(st.Session, KeyDesigner, ""),
	}
}

func generate(ctx context.Context, st action.State) (action.Result, error) {
	if st.Brief == nil {
		return action.Result{}, errors.New("no brief generator configured")
	}
	p, err := st.Brief.Generate(ctx, request(st))
	if err != nil {
		return action.Result{}, fmt.Errorf("generate preview: %w", err)
	}
	return action.Result{Data: map[string]any{
		KeyPreview:   p.Markdown,
		KeyPreviewOf: fingerprint(st),
	}}, nil
}

// fingerprint identifies the inputs a preview was generated from.
func fingerprint(st action.State) string {
	req := request(st)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\x00%s\x00%s", req.OrganizationName, req.Brief, req.DesignerID)
	for _, k := range slices.Sorted(maps.Keys(req.Requirements)) {
		fmt.Fprintf(&b, "\x00%s=%s", k, req.Requirements[k])
	}
	return b.String()
}

// previewReady requires a preview generated from the current brief. A failed
// regeneration leaves the previous preview in place, so its inputs are checked.
func previewReady(st action.State) error {
	if wizard.GetOr(st.Session, KeyPreview, "") == "" {
		return criterio.NewFieldErrors(KeyPreview, errors.New("no preview yet, reload to generate it"))
	}
	if wizard.GetOr(st.Session, KeyPreviewOf, "") != fingerprint(st) {
		return criterio.NewFieldErrors(KeyPreview, errors.New("preview is out of date, reload to regenerate it"))
	}
	return nil
}

func viewPreview(st action.State) string {
	if st.Session.Busy() {
		return "Generating preview..."
	}
	md := wizard.GetOr(st.Session, KeyPreview, "")
	if md == "" {
		return "No preview yet. Reload to generate it."
	}
	if wizard.GetOr(st.Session, KeyPreviewOf, "") != fingerprint(st) {
		md = "> This preview is out of date. Reload to regenerate it.\n\n" + md
	}
	out, err := brief.Render(md, PreviewWidth)
	if err != nil {
		return md
	}
	return out
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	req := request(st)
	rec, err := st.Gateway.CreateDesignJob(ctx, gateway.DesignJobPayload{
		OrganizationID:   orgs.ID(st.Session),
		OrganizationName: req.OrganizationName,
		Brief:            req.Brief,
		Requirements:     req.Requirements,
		DesignerID:       req.DesignerID,
	})
	if err != nil {
		return action.Result{}, gateway.Wrap("create design job", err)
	}
	return action.Result{
		Data:    map[string]any{KeyJobCode: rec.JobCode},
		Message: "Design job " + rec.JobCode + " opened",
	}, nil
}
