// Package action defines wizard actions as strategy tables of steps and
// drives a wizard session through them.
package action

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/colonyops/wiz/internal/core/brief"
	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/quote"
	"github.com/colonyops/wiz/internal/core/sampler"
	"github.com/colonyops/wiz/internal/core/wizard"
)

// Env bundles the collaborators available to action steps. It is shared by
// every flow and must not be mutated once flows are running.
type Env struct {
	Gateway gateway.Gateway
	Matcher *colormatch.Matcher
	Brief   brief.Generator
	Fs      afero.Fs

	MaxColors         int
	Sampling          sampler.Policy
	Quote             quote.Policy
	DefaultMarginType quote.MarginType
	ValidityDays      int
	BriefMaxLength    int

	Now   func() time.Time
	NewID func() string
}

// NewEnv returns an Env with default policies.
func NewEnv(gw gateway.Gateway, m *colormatch.Matcher) *Env {
	return &Env{
		Gateway:           gw,
		Matcher:           m,
		Brief:             brief.NewTemplateGenerator(),
		Fs:                afero.NewOsFs(),
		MaxColors:         colormatch.DefaultMaxColors,
		Sampling:          sampler.DefaultPolicy(),
		Quote:             quote.DefaultPolicy(),
		DefaultMarginType: quote.MarginWholesale,
		ValidityDays:      30,
		BriefMaxLength:    gateway.DefaultBriefLength,
		Now:               time.Now,
		NewID:             uuid.NewString,
	}
}

// State is what step functions see: the shared environment and a snapshot of
// the session.
type State struct {
	*Env
	Session wizard.Session
}

// Reply is the outcome of handling one line of step input. Set is merged into
// the session; Info and Warn are shown to the user.
type Reply struct {
	Set  map[string]any
	Info string
	Warn string
}

// Result is the outcome of asynchronous step work.
type Result struct {
	Data    map[string]any
	Message string
}

// Step is one entry of an action's strategy table.
type Step struct {
	Type  wizard.StepType
	Title string
	Help  string

	// View renders the step body.
	View func(st State) string
	// Handle applies one command typed by the user.
	Handle func(st State, cmd Command) (Reply, error)
	// Ready gates advancing past the step. Errors should be
	// criterio.FieldErrors.
	Ready func(st State) error
	// Load runs when the step is entered, off the UI thread.
	Load func(ctx context.Context, st State) (Result, error)
}

// Definition describes an action: its steps and the submission performed when
// leaving the confirm step.
type Definition struct {
	ID          string
	Title       string
	Description string
	Steps       []Step

	// Init seeds the session data when a flow starts.
	Init func(st State) map[string]any
	// Submit persists the action's result through the gateway.
	Submit func(ctx context.Context, st State) (Result, error)
}

// WizardSteps returns the step types for the session state machine.
func (d Definition) WizardSteps() []wizard.Step {
	out := make([]wizard.Step, len(d.Steps))
	for i, s := range d.Steps {
		out[i] = wizard.Step{Type: s.Type}
	}
	return out
}
