package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/wiz/internal/core/notify"
	"github.com/colonyops/wiz/internal/data/db"
)

// History keeps the notification log in SQLite.
type History struct {
	db *db.DB
}

var _ notify.History = (*History)(nil)

func NewHistory(database *db.DB) *History {
	return &History{db: database}
}

func (h *History) Append(ctx context.Context, n notify.Notification) (int64, error) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	id, err := h.db.Queries().InsertNotification(ctx, db.Notification{
		Level:     string(n.Level),
		Message:   n.Message,
		Action:    n.Action,
		CreatedAt: n.At.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("append notification: %w", err)
	}
	return id, nil
}

// Recent never returns a nil slice.
func (h *History) Recent(ctx context.Context, q notify.Query) ([]notify.Notification, error) {
	rows, err := h.db.Queries().ListNotifications(ctx, string(q.Level), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}

	out := make([]notify.Notification, len(rows))
	for i, r := range rows {
		out[i] = notify.Notification{
			ID:      r.ID,
			Level:   notify.Level(r.Level),
			Message: r.Message,
			Action:  r.Action,
			At:      time.Unix(0, r.CreatedAt),
		}
	}
	return out, nil
}

func (h *History) Clear(ctx context.Context) (int64, error) {
	n, err := h.db.Queries().DeleteAllNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear notifications: %w", err)
	}
	return n, nil
}
