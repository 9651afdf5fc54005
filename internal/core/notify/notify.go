// Package notify defines user-facing notifications and their history.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel accepts a level name in any case. "warn" is an alias for warning.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return l, nil
	case "warn":
		return LevelWarning, nil
	}
	return "", fmt.Errorf("unknown notification level %q", s)
}

// Notification is a message shown to the user. Action is the id of the
// action that raised it, if any.
type Notification struct {
	ID      int64
	Level   Level
	Message string
	Action  string
	At      time.Time
}

// Query filters a history read. Zero fields match everything.
type Query struct {
	Level Level
	Limit int
}

// History is durable notification storage. Recent returns newest first.
type History interface {
	Append(ctx context.Context, n Notification) (int64, error)
	Recent(ctx context.Context, q Query) ([]Notification, error)
	Clear(ctx context.Context) (int64, error)
}
