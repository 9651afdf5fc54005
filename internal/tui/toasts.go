package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/wiz/internal/core/notify"
	"github.com/colonyops/wiz/internal/core/styles"
)

const (
	defaultToastTTL   = 5 * time.Second
	maxToasts         = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

type toastTickMsg time.Time

type toast struct {
	n       notify.Notification
	repeats int
	left    time.Duration
}

// Toasts is the stack of transient notifications drawn under the step view.
// Errors stay on screen twice as long as other levels. Publishing the same
// message twice in a row refreshes the newest toast instead of stacking.
type Toasts struct {
	items   []toast
	ttl     time.Duration
	ticking bool
}

func newToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &Toasts{ttl: ttl}
}

func (t *Toasts) lifetime(l notify.Level) time.Duration {
	if l == notify.LevelError {
		return 2 * t.ttl
	}
	return t.ttl
}

// Push is a bus subscriber.
func (t *Toasts) Push(n notify.Notification) {
	if last := len(t.items) - 1; last >= 0 {
		top := &t.items[last]
		if top.n.Level == n.Level && top.n.Message == n.Message {
			top.repeats++
			top.left = t.lifetime(n.Level)
			return
		}
	}
	t.items = append(t.items, toast{n: n, left: t.lifetime(n.Level)})
	if extra := len(t.items) - maxToasts; extra > 0 {
		t.items = t.items[extra:]
	}
}

// Schedule starts the countdown if toasts are showing and no tick is pending.
func (t *Toasts) Schedule() tea.Cmd {
	if t.ticking || len(t.items) == 0 {
		return nil
	}
	t.ticking = true
	return tea.Tick(toastTickInterval, func(at time.Time) tea.Msg { return toastTickMsg(at) })
}

// Tick ages every toast by one interval and schedules the next tick while
// any remain.
func (t *Toasts) Tick() tea.Cmd {
	kept := t.items[:0]
	for _, it := range t.items {
		if it.left -= toastTickInterval; it.left > 0 {
			kept = append(kept, it)
		}
	}
	t.items = kept
	t.ticking = false
	return t.Schedule()
}

// Dismiss drops the newest toast.
func (t *Toasts) Dismiss() {
	if n := len(t.items); n > 0 {
		t.items = t.items[:n-1]
	}
}

func (t *Toasts) Len() int { return len(t.items) }

func (t *Toasts) View() string {
	lines := make([]string, len(t.items))
	for i, it := range t.items {
		lines[i] = it.render()
	}
	return strings.Join(lines, "\n")
}

func (it toast) render() string {
	var icon string
	style := styles.ToastInfoStyle
	switch it.n.Level {
	case notify.LevelError:
		icon, style = styles.IconNotifyError, styles.ToastErrorStyle
	case notify.LevelWarning:
		icon, style = styles.IconNotifyWarning, styles.ToastWarningStyle
	case notify.LevelSuccess:
		icon, style = styles.IconNotifySuccess, styles.ToastSuccessStyle
	default:
		icon = styles.IconNotifyInfo
	}
	text := icon + " " + it.n.Message
	if it.repeats > 0 {
		text += fmt.Sprintf(" (x%d)", it.repeats+1)
	}
	return style.Width(toastWidth).Render(text)
}

// Attach right-aligns the stack under body and pads so it sits on the last
// rows of a screen of the given height.
func (t *Toasts) Attach(body string, width, height int) string {
	if len(t.items) == 0 {
		return body
	}
	stack := t.View()
	stack = lipgloss.PlaceHorizontal(max(width, lipgloss.Width(stack)), lipgloss.Right, stack)
	if gap := height - lipgloss.Height(body) - lipgloss.Height(stack); gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + stack
}
