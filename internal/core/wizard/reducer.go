package wizard

import (
	"fmt"
	"maps"
	"sort"
)

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Advance moves the session forward one step.
type Advance struct{}

// Retreat moves the session back one step. Step data is kept.
type Retreat struct{}

// Merge replaces the step data stored under Key. Values are never deep merged.
type Merge struct {
	Key   string
	Value any
}

// SetBusy toggles the loading flag.
type SetBusy struct {
	Busy bool
}

func (Advance) isEvent() {}
func (Retreat) isEvent() {}
func (Merge) isEvent()   {}
func (SetBusy) isEvent() {}

// Effect is a side effect produced by a transition.
type Effect string

const (
	// EffectStepChanged is emitted whenever the step index moves.
	EffectStepChanged Effect = "step-changed"
	// EffectCelebrate is emitted the first time a session enters the done step.
	EffectCelebrate Effect = "celebrate"
)

// Reduce applies e to s and returns the resulting session. On error the
// original session is returned unchanged.
func Reduce(s Session, e Event) (Session, []Effect, error) {
	switch ev := e.(type) {
	case Advance:
		if s.index >= len(s.steps)-1 {
			return s, nil, ErrAtLastStep
		}
		next := s
		next.index++
		effects := []Effect{EffectStepChanged}
		if next.steps[next.index].Type == StepDone {
			next.terminal = true
			if !next.celebrated {
				next.celebrated = true
				effects = append(effects, EffectCelebrate)
			}
		}
		return next, effects, nil

	case Retreat:
		if s.terminal {
			return s, nil, ErrTerminal
		}
		if s.index <= 0 {
			return s, nil, ErrAtFirstStep
		}
		next := s
		next.index--
		return next, []Effect{EffectStepChanged}, nil

	case Merge:
		if ev.Key == "" {
			return s, nil, ErrEmptyKey
		}
		next := s
		next.data = maps.Clone(s.data)
		if next.data == nil {
			next.data = map[string]any{}
		}
		next.data[ev.Key] = ev.Value
		return next, nil, nil

	case SetBusy:
		next := s
		next.busy = ev.Busy
		return next, nil, nil

	default:
		return s, nil, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}

// Apply reduces events in order, stopping at the first error. Effects from
// all applied events are returned in order.
func (s Session) Apply(events ...Event) (Session, []Effect, error) {
	var all []Effect
	cur := s
	for _, e := range events {
		next, effects, err := Reduce(cur, e)
		if err != nil {
			return cur, all, err
		}
		cur = next
		all = append(all, effects...)
	}
	return cur, all, nil
}

// MergeAll merges every key in values. Keys are applied in sorted order so
// the result does not depend on map iteration.
func (s Session) MergeAll(values map[string]any) (Session, error) {
	if len(values) == 0 {
		return s, nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	events := make([]Event, 0, len(keys))
	for _, k := range keys {
		events = append(events, Merge{Key: k, Value: values[k]})
	}
	next, _, err := s.Apply(events...)
	return next, err
}
