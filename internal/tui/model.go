// Package tui hosts an action flow in a Bubble Tea program.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/notify"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/core/wizard"
	tuinotify "github.com/colonyops/wiz/internal/tui/notify"
)

// Options configures a Model.
type Options struct {
	// Bus receives every user-facing message. A bus without a store is used
	// when nil.
	Bus      *tuinotify.Bus
	ToastTTL time.Duration
}

type completionMsg struct {
	completion action.Completion
}

// Model is the Bubble Tea model driving one action flow.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	flow   *action.Flow
	bus    *tuinotify.Bus
	toasts *Toasts

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// inflight is the async work currently running, if any.
	inflight *action.Pending
	status   notify.Notification

	width, height int
	quitting      bool
}

// New creates a model for flow. The flow must be fresh; New starts its first
// step from Init.
func New(ctx context.Context, flow *action.Flow, opts Options) Model {
	ctx, cancel := context.WithCancel(ctx)

	bus := opts.Bus
	if bus == nil {
		bus = tuinotify.NewBus(nil)
	}
	toasts := newToasts(opts.ToastTTL)
	bus.Subscribe(toasts.Push)

	title := flow.Definition().Title
	flow.OnCelebrate = func(wizard.Session) {
		bus.Successf("%s complete", title)
	}

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type a command"
	in.PromptStyle = styles.PromptStyle

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.PromptStyle

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		flow:    flow,
		bus:     bus,
		toasts:  toasts,
		input:   in,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
	}
}

// Flow returns the hosted flow.
func (m Model) Flow() *action.Flow { return m.flow }

// Quitting reports whether the user left before the flow finished.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.input.Focus()}
	if p := m.flow.Start(); p != nil {
		cmds = append(cmds, m.run(p), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case completionMsg:
		return m.handleCompletion(msg)

	case spinner.TickMsg:
		if !m.flow.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastTickMsg:
		return m, m.toasts.Tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = !m.flow.Done()
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		return m, nil
	}

	if m.flow.Done() {
		if key.Matches(msg, m.keys.Enter, m.keys.Back) || msg.String() == "q" {
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		return m.submit()
	case key.Matches(msg, m.keys.Back):
		if err := m.flow.Back(); err != nil {
			return m.failed(err)
		}
		m.input.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		p, err := m.flow.Reload()
		if err != nil {
			return m.failed(err)
		}
		return m.begin(p)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the typed command, or advances when the input is empty.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" {
		p, err := m.flow.Next()
		if err != nil {
			return m.failed(err)
		}
		m.input.Reset()
		return m.begin(p)
	}

	reply, err := m.flow.Input(line)
	if err != nil {
		return m.failed(err)
	}
	m.input.Reset()

	var cmds []tea.Cmd
	if reply.Info != "" {
		cmds = append(cmds, m.publish(notify.LevelInfo, reply.Info))
	}
	if reply.Warn != "" {
		cmds = append(cmds, m.publish(notify.LevelWarning, reply.Warn))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) begin(p *action.Pending) (tea.Model, tea.Cmd) {
	if p == nil {
		return m, nil
	}
	m.inflight = p
	return m, tea.Batch(m.run(p), m.spinner.Tick)
}

func (m Model) run(p *action.Pending) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return completionMsg{completion: p.Run(ctx)}
	}
}

func (m Model) handleCompletion(msg completionMsg) (tea.Model, tea.Cmd) {
	m.inflight = nil
	if err := m.flow.Complete(msg.completion); err != nil {
		if errors.Is(err, context.Canceled) {
			return m, nil
		}
		return m.failed(err)
	}

	var cmds []tea.Cmd
	if msg.completion.Result.Message != "" {
		cmds = append(cmds, m.publish(notify.LevelInfo, msg.completion.Result.Message))
	}
	cmds = append(cmds, m.toasts.Schedule())
	return m, tea.Batch(cmds...)
}

// failed publishes err and returns the updated model.
func (m Model) failed(err error) (tea.Model, tea.Cmd) {
	cmd := m.fail(err)
	return m, cmd
}

func (m *Model) fail(err error) tea.Cmd {
	return m.publish(notify.LevelError, gateway.UserMessage(err))
}

func (m *Model) publish(level notify.Level, message string) tea.Cmd {
	n := notify.Notification{Level: level, Message: message, Action: m.flow.Definition().ID}
	m.status = n
	m.bus.Publish(n)
	return m.toasts.Schedule()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle.Render(m.flow.Header()))
	b.WriteString("\n\n")

	step := m.flow.Step()
	if body := m.flow.View(); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	if step.Help != "" && !m.flow.Done() {
		b.WriteString(styles.MutedStyle.Render(step.Help))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.flow.Busy():
		b.WriteString(m.spinner.View() + " Working...")
	case m.flow.Done():
		b.WriteString(styles.SuccessStyle.Render("Done. Press enter to exit."))
	case step.Handle != nil:
		b.WriteString(m.input.View())
	default:
		b.WriteString(styles.MutedStyle.Render("Press enter to continue."))
	}

	if m.status.Message != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle(m.status.Level).Render(m.status.Message))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(m.help.View(m.keys)))

	return m.toasts.Attach(b.String(), m.width, m.height)
}

func statusStyle(level notify.Level) lipgloss.Style {
	switch level {
	case notify.LevelError:
		return styles.ErrorStyle
	case notify.LevelWarning:
		return styles.WarningStyle
	case notify.LevelSuccess:
		return styles.SuccessStyle
	}
	return styles.MutedStyle
}
