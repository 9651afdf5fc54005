// Package wizard holds the state of one guided action and the reducer that
// moves it between steps.
//
// A Session is a value. It is never mutated in place; every transition goes
// through Reduce, which returns a new Session together with the side effects
// the caller is expected to perform.
package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// StepType identifies the kind of screen a step presents.
type StepType string

const (
	StepPick    StepType = "pick"
	StepChoose  StepType = "choose"
	StepPreview StepType = "preview"
	StepConfirm StepType = "confirm"
	StepDone    StepType = "done"
)

// IsValid reports whether t is one of the known step types.
func (t StepType) IsValid() bool {
	switch t {
	case StepPick, StepChoose, StepPreview, StepConfirm, StepDone:
		return true
	default:
		return false
	}
}

// Step is a single position in a session's step sequence.
type Step struct {
	Type StepType `json:"type"`
}

var (
	ErrNoSteps      = errors.New("session requires at least one step")
	ErrInvalidStep  = errors.New("invalid step type")
	ErrAtLastStep   = errors.New("already at the last step")
	ErrAtFirstStep  = errors.New("already at the first step")
	ErrTerminal     = errors.New("session is complete")
	ErrEmptyKey     = errors.New("step data key is required")
	ErrBusy         = errors.New("an operation is already in progress")
	ErrUnknownEvent = errors.New("unknown event")
)

// Session is the live state of one action invocation.
type Session struct {
	id         string
	actionID   string
	steps      []Step
	index      int
	data       map[string]any
	busy       bool
	terminal   bool
	celebrated bool
}

// New creates a session positioned on the first step.
func New(id, actionID string, steps []Step) (Session, error) {
	if len(steps) == 0 {
		return Session{}, ErrNoSteps
	}
	for _, st := range steps {
		if !st.Type.IsValid() {
			return Session{}, fmt.Errorf("%w: %q", ErrInvalidStep, st.Type)
		}
	}

	s := Session{
		id:       id,
		actionID: actionID,
		steps:    slices.Clone(steps),
		data:     map[string]any{},
	}
	s.terminal = s.steps[0].Type == StepDone
	return s, nil
}

func (s Session) ID() string       { return s.id }
func (s Session) ActionID() string { return s.actionID }
func (s Session) Index() int       { return s.index }
func (s Session) Len() int         { return len(s.steps) }
func (s Session) Busy() bool       { return s.busy }
func (s Session) Terminal() bool   { return s.terminal }
func (s Session) Celebrated() bool { return s.celebrated }

// Steps returns a copy of the step sequence.
func (s Session) Steps() []Step { return slices.Clone(s.steps) }

// Current returns the step the session is positioned on.
func (s Session) Current() Step {
	if len(s.steps) == 0 {
		return Step{}
	}
	return s.steps[s.index]
}

// IsFirst reports whether the session is on its first step.
func (s Session) IsFirst() bool { return s.index == 0 }

// IsLast reports whether the session is on its last step.
func (s Session) IsLast() bool { return s.index == len(s.steps)-1 }

// Value returns the raw step data stored under key.
func (s Session) Value(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Keys returns the step data keys in sorted order.
func (s Session) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Data returns a shallow copy of the accumulated step data.
func (s Session) Data() map[string]any {
	return maps.Clone(s.data)
}

// Get returns the value stored under key when it has type T.
func Get[T any](s Session, key string) (T, bool) {
	var zero T
	v, ok := s.data[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOr returns the value stored under key, or fallback when it is absent or
// holds a different type.
func GetOr[T any](s Session, key string, fallback T) T {
	if v, ok := Get[T](s, key); ok {
		return v
	}
	return fallback
}
