package notify

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/wiz/internal/core/notify"
)

type fakeHistory struct {
	log []notify.Notification
	err error
}

func (f *fakeHistory) Append(_ context.Context, n notify.Notification) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n.ID = int64(len(f.log) + 1)
	f.log = append(f.log, n)
	return n.ID, nil
}

func (f *fakeHistory) Recent(_ context.Context, q notify.Query) ([]notify.Notification, error) {
	out := slices.Clone(f.log)
	slices.Reverse(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeHistory) Clear(context.Context) (int64, error) {
	n := int64(len(f.log))
	f.log = nil
	return n, nil
}

func collect(b *Bus) *[]notify.Notification {
	var got []notify.Notification
	b.Subscribe(func(n notify.Notification) { got = append(got, n) })
	return &got
}

func TestBus_Helpers(t *testing.T) {
	tests := []struct {
		name  string
		send  func(*Bus)
		level notify.Level
		msg   string
	}{
		{"errorf", func(b *Bus) { b.Errorf("quote %s failed", "Q-1") }, notify.LevelError, "quote Q-1 failed"},
		{"warnf", func(b *Bus) { b.Warnf("margin %d%%", 12) }, notify.LevelWarning, "margin 12%"},
		{"infof", func(b *Bus) { b.Infof("line added") }, notify.LevelInfo, "line added"},
		{"successf", func(b *Bus) { b.Successf("created %s", "DJ-9") }, notify.LevelSuccess, "created DJ-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBus(&fakeHistory{})
			got := collect(b)

			tt.send(b)

			require.Len(t, *got, 1)
			assert.Equal(t, tt.level, (*got)[0].Level)
			assert.Equal(t, tt.msg, (*got)[0].Message)
			assert.Equal(t, int64(1), (*got)[0].ID)
		})
	}
}

func TestBus_RecordsWithTimestamp(t *testing.T) {
	h := &fakeHistory{}
	b := NewBus(h)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return at }

	b.Publish(notify.Notification{Level: notify.LevelInfo, Message: "one", Action: "quote"})
	b.Infof("two")

	recent, err := b.Recent(context.Background(), notify.Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "two", recent[0].Message)

	require.Len(t, h.log, 2)
	assert.Equal(t, "quote", h.log[0].Action)
	assert.Equal(t, at, h.log[0].At)
}

func TestBus_DeliversWhenHistoryFails(t *testing.T) {
	b := NewBus(&fakeHistory{err: errors.New("database is locked")})
	got := collect(b)

	b.Errorf("boom")

	require.Len(t, *got, 1)
	assert.Zero(t, (*got)[0].ID)
}

func TestBus_WithoutHistory(t *testing.T) {
	b := NewBus(nil)
	got := collect(b)

	b.Warnf("unsaved")

	assert.Len(t, *got, 1)
	recent, err := b.Recent(context.Background(), notify.Query{})
	require.NoError(t, err)
	assert.Nil(t, recent)
}
