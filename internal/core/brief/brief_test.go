package brief

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateGenerator(t *testing.T) {
	g := NewTemplateGenerator()

	p, err := g.Generate(context.Background(), Request{
		OrganizationName: "Acme",
		Brief:            "  Retro varsity crest for the spring tournament.  ",
		Requirements:     map[string]string{"size": "4in", "colors": "2"},
	})
	require.NoError(t, err)

	assert.Contains(t, p.Markdown, "# Design brief: Acme")
	assert.Contains(t, p.Markdown, "Retro varsity crest for the spring tournament.")
	assert.Contains(t, p.Markdown, "- **colors**: 2\n- **size**: 4in")
	assert.Contains(t, p.Markdown, "Designer: unassigned")
}

func TestTemplateGenerator_Errors(t *testing.T) {
	g := NewTemplateGenerator()

	_, err := g.Generate(context.Background(), Request{Brief: "   "})
	require.ErrorIs(t, err, ErrEmptyBrief)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, Request{Brief: "x"})
	require.ErrorIs(t, err, context.Canceled)

	bad := &TemplateGenerator{Template: "{{ .Nope }}"}
	_, err = bad.Generate(context.Background(), Request{Brief: "x"})
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	prev := Style
	Style = "notty"
	t.Cleanup(func() { Style = prev })

	out, err := Render("# Title\n\nbody text", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body text")
}
