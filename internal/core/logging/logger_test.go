package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Hook(ContextHook{})
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestComponent(t *testing.T) {
	buf := capture(t)

	l := Component("colormatch")
	l.Info().Msg("matched")

	entry := decode(t, buf)
	if entry["cmp"] != "colormatch" || entry["message"] != "matched" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestScope_Logger(t *testing.T) {
	buf := capture(t)

	l := Scope{SessionID: "sess-1", ActionID: "quote", Step: -1}.Logger("flow")
	l.Debug().Msg("advanced")

	entry := decode(t, buf)
	for key, want := range map[string]any{"cmp": "flow", "session_id": "sess-1", "action_id": "quote"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
	if _, ok := entry["step"]; ok {
		t.Error("step should be omitted when negative")
	}
}

func TestContextHook(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		want    map[string]any
		missing []string
	}{
		{
			name: "full scope",
			ctx:  WithScope(context.Background(), Scope{SessionID: "s", ActionID: "quote", Step: 2}),
			want: map[string]any{"session_id": "s", "action_id": "quote", "step": float64(2)},
		},
		{
			name:    "partial scope",
			ctx:     WithScope(context.Background(), Scope{ActionID: "color-match", Step: -1}),
			want:    map[string]any{"action_id": "color-match"},
			missing: []string{"session_id", "step"},
		},
		{
			name:    "no scope",
			ctx:     context.Background(),
			missing: []string{"session_id", "action_id", "step"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)

			log.Info().Ctx(tt.ctx).Msg("x")

			entry := decode(t, buf)
			for k, v := range tt.want {
				if entry[k] != v {
					t.Errorf("%s = %v, want %v", k, entry[k], v)
				}
			}
			for _, k := range tt.missing {
				if _, ok := entry[k]; ok {
					t.Errorf("%s should be absent", k)
				}
			}
		})
	}
}

func TestScopeFrom(t *testing.T) {
	if _, ok := ScopeFrom(context.Background()); ok {
		t.Error("empty context should carry no scope")
	}
	want := Scope{SessionID: "s", ActionID: "a", Step: 1}
	got, ok := ScopeFrom(WithScope(context.Background(), want))
	if !ok || got != want {
		t.Errorf("ScopeFrom() = %v, %v", got, ok)
	}
}
