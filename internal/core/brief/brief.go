// Package brief produces design-brief previews shown before a design job is
// submitted.
package brief

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/pkg/tmpl"
)

var ErrEmptyBrief = errors.New("brief text is empty")

// Request is the input for a preview.
type Request struct {
	OrganizationName string
	Brief            string
	Requirements     map[string]string
	DesignerID       string
}

// Preview is a generated brief document in markdown.
type Preview struct {
	Markdown string
}

// Generator turns a request into a preview. Implementations may call remote
// services and must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (Preview, error)
}

const defaultTemplate = `# Design brief: {{ md (default "Unassigned organization" .OrganizationName) }}

{{ md (trim .Brief) }}
{{ if .Requirements }}
## Requirements
{{ range keys .Requirements }}
- **{{ md . }}**: {{ md (index $.Requirements .) }}
{{- end }}
{{ end }}
## Assignment

Designer: {{ md (default "unassigned" .DesignerID) }}
`

// TemplateGenerator renders previews locally from a text template.
type TemplateGenerator struct {
	Template string
}

// NewTemplateGenerator returns a generator using the built-in template.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{Template: defaultTemplate}
}

func (g *TemplateGenerator) Generate(ctx context.Context, req Request) (Preview, error) {
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}
	if strings.TrimSpace(req.Brief) == "" {
		return Preview{}, ErrEmptyBrief
	}

	t := g.Template
	if t == "" {
		t = defaultTemplate
	}
	out, err := tmpl.Render(t, req)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Markdown: out}, nil
}

// Style names a standard glamour style for Render. When empty the active
// theme is used.
var Style = ""

// Render formats markdown for the terminal at the given wrap width.
func Render(markdown string, width int) (string, error) {
	style := glamour.WithStyles(styles.GlamourStyle())
	if Style != "" {
		style = glamour.WithStandardStyle(Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
