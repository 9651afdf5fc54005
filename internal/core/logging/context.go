package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Scope identifies the wizard work a log line belongs to. Step is the zero
// based step index, or -1 when the work is not tied to a step.
type Scope struct {
	SessionID string
	ActionID  string
	Step      int
}

type scopeKey struct{}

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func ScopeFrom(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

func (s Scope) fields(c zerolog.Context) zerolog.Context {
	if s.SessionID != "" {
		c = c.Str("session_id", s.SessionID)
	}
	if s.ActionID != "" {
		c = c.Str("action_id", s.ActionID)
	}
	if s.Step >= 0 {
		c = c.Int("step", s.Step)
	}
	return c
}

// ContextHook copies the Scope carried by an event's context onto the event.
// Install it on the global logger and log with Ctx(ctx).
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	s, ok := ScopeFrom(e.GetCtx())
	if !ok {
		return
	}
	if s.SessionID != "" {
		e.Str("session_id", s.SessionID)
	}
	if s.ActionID != "" {
		e.Str("action_id", s.ActionID)
	}
	if s.Step >= 0 {
		e.Int("step", s.Step)
	}
}
