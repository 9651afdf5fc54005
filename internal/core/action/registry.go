package action

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/core/wizard"
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrDuplicateAction   = errors.New("duplicate action id")
	ErrInvalidDefinition = errors.New("invalid action definition")
)

// Validate checks the definition can drive a session: a non-empty step list
// ending in done, with a submission attached to the confirm step.
func (d Definition) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if d.ID == "" {
		errs = errs.Append("id", errors.New("cannot be empty"))
	}
	if len(d.Steps) == 0 {
		errs = errs.Append("steps", wizard.ErrNoSteps)
		return errs.ToError()
	}

	last := len(d.Steps) - 1
	for i, s := range d.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		switch {
		case !s.Type.IsValid():
			errs = errs.Append(field, fmt.Errorf("invalid type %q", s.Type))
		case s.Type == wizard.StepDone && i != last:
			errs = errs.Append(field, errors.New("done must be the last step"))
		case s.Type == wizard.StepConfirm && i != last-1:
			errs = errs.Append(field, errors.New("confirm must come right before done"))
		}
	}

	if d.Steps[last].Type != wizard.StepDone {
		errs = errs.Append(fmt.Sprintf("steps[%d]", last), errors.New("last step must be done"))
	}
	if d.hasConfirm() && d.Submit == nil {
		errs = errs.Append("submit", errors.New("required when a confirm step exists"))
	}

	return errs.ToError()
}

func (d Definition) hasConfirm() bool {
	for _, s := range d.Steps {
		if s.Type == wizard.StepConfirm {
			return true
		}
	}
	return false
}

// Registry maps action ids to definitions, keeping registration order.
type Registry struct {
	order []string
	defs  map[string]Definition
}

// NewRegistry builds a registry, validating every definition.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition.
func (r *Registry) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDefinition, d.ID, err)
	}
	if _, ok := r.defs[d.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, d.ID)
	}
	r.defs[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return d, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Start creates a flow for the action id.
func (r *Registry) Start(id string, env *Env) (*Flow, error) {
	d, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return NewFlow(d, env)
}
