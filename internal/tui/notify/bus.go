// Package notify fans TUI notifications out to toasts and the history log.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/core/notify"
)

const persistTimeout = 2 * time.Second

type Subscriber func(notify.Notification)

// Bus delivers each published notification to every subscriber on the
// caller's goroutine after recording it in the history.
type Bus struct {
	history notify.History
	now     func() time.Time

	mu   sync.Mutex
	subs []Subscriber
}

// NewBus returns a bus writing to history. A nil history keeps nothing.
func NewBus(history notify.History) *Bus {
	return &Bus{history: history, now: time.Now}
}

func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Publish records n and delivers it. A history write failure is logged and
// does not stop delivery.
func (b *Bus) Publish(n notify.Notification) {
	if n.At.IsZero() {
		n.At = b.now()
	}
	n.ID = b.record(n)

	b.mu.Lock()
	subs := append([]Subscriber(nil), b.subs...)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) record(n notify.Notification) int64 {
	if b.history == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	id, err := b.history.Append(ctx, n)
	if err != nil {
		log := logging.Component("notify")
		log.Warn().Err(err).
			Str("level", string(n.Level)).
			Str("action", n.Action).
			Msg("notification not recorded")
		return 0
	}
	return id
}

func (b *Bus) Errorf(format string, args ...any)   { b.send(notify.LevelError, format, args) }
func (b *Bus) Warnf(format string, args ...any)    { b.send(notify.LevelWarning, format, args) }
func (b *Bus) Infof(format string, args ...any)    { b.send(notify.LevelInfo, format, args) }
func (b *Bus) Successf(format string, args ...any) { b.send(notify.LevelSuccess, format, args) }

func (b *Bus) send(level notify.Level, format string, args []any) {
	b.Publish(notify.Notification{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Recent reads back the history, newest first.
func (b *Bus) Recent(ctx context.Context, q notify.Query) ([]notify.Notification, error) {
	if b.history == nil {
		return nil, nil
	}
	return b.history.Recent(ctx, q)
}
