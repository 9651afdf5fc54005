package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/notify"
	"github.com/colonyops/wiz/internal/data/db"
)

func newHistory(t *testing.T) *History {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewHistory(database)
}

func seed(t *testing.T, h *History) {
	t.Helper()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	entries := []notify.Notification{
		{Level: notify.LevelInfo, Message: "session started", Action: "quote"},
		{Level: notify.LevelError, Message: "gateway timeout", Action: "quote"},
		{Level: notify.LevelSuccess, Message: "created Q-7", Action: "quote"},
		{Level: notify.LevelError, Message: "image unreadable", Action: "color-match"},
	}
	for i, n := range entries {
		n.At = base.Add(time.Duration(i) * time.Minute)
		id, err := h.Append(context.Background(), n)
		require.NoError(t, err)
		require.Positive(t, id)
	}
}

func TestHistory_Recent(t *testing.T) {
	h := newHistory(t)
	seed(t, h)

	tests := []struct {
		name string
		q    notify.Query
		want []string
	}{
		{"all newest first", notify.Query{}, []string{"image unreadable", "created Q-7", "gateway timeout", "session started"}},
		{"limit", notify.Query{Limit: 2}, []string{"image unreadable", "created Q-7"}},
		{"level", notify.Query{Level: notify.LevelError}, []string{"image unreadable", "gateway timeout"}},
		{"level and limit", notify.Query{Level: notify.LevelError, Limit: 1}, []string{"image unreadable"}},
		{"no match", notify.Query{Level: notify.LevelWarning}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Recent(context.Background(), tt.q)
			require.NoError(t, err)
			require.NotNil(t, got)

			msgs := make([]string, len(got))
			for i, n := range got {
				msgs[i] = n.Message
			}
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestHistory_RoundTripsFields(t *testing.T) {
	h := newHistory(t)
	at := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

	id, err := h.Append(context.Background(), notify.Notification{
		Level: notify.LevelWarning, Message: "margin below floor", Action: "quote", At: at,
	})
	require.NoError(t, err)

	got, err := h.Recent(context.Background(), notify.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, notify.LevelWarning, got[0].Level)
	assert.Equal(t, "quote", got[0].Action)
	assert.True(t, at.Equal(got[0].At))
}

func TestHistory_Clear(t *testing.T) {
	h := newHistory(t)
	seed(t, h)

	n, err := h.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	got, err := h.Recent(context.Background(), notify.Query{})
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err = h.Clear(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
