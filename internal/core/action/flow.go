package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/core/wizard"
)

var (
	// ErrBusy is returned while an async operation is in flight.
	ErrBusy = wizard.ErrBusy
	// ErrNotReady wraps the validation errors of a step that cannot be left yet.
	ErrNotReady = errors.New("step is not complete")
	// ErrNoInput is returned when the current step accepts no commands.
	ErrNoInput = errors.New("this step takes no input")
	// ErrNoPending is returned by Complete when nothing was in flight.
	ErrNoPending = errors.New("no operation in progress")
)

// Op names the kind of async work a Pending performs.
type Op string

const (
	OpLoad   Op = "load"
	OpSubmit Op = "submit"
)

// Pending is async work started by the flow. Run it off the UI thread and hand
// the Completion back to Flow.Complete.
type Pending struct {
	Op    Op
	Step  int
	scope logging.Scope
	run   func(ctx context.Context) (Result, error)
}

// Run executes the work. It only reads the session snapshot taken when the
// work was started.
func (p *Pending) Run(ctx context.Context) Completion {
	ctx = logging.WithScope(ctx, p.scope)
	res, err := p.run(ctx)
	return Completion{Op: p.Op, Step: p.Step, Result: res, Err: err}
}

// Completion is the outcome of a Pending.
type Completion struct {
	Op     Op
	Step   int
	Result Result
	Err    error
}

// Flow owns one wizard session and drives it through an action's steps. A
// Flow is not safe for concurrent use; only Pending.Run may leave the owning
// goroutine.
type Flow struct {
	def  Definition
	env  *Env
	sess wizard.Session
	log  zerolog.Logger

	// OnCelebrate is called once when the session reaches done.
	OnCelebrate func(wizard.Session)
}

// NewFlow starts a session for def.
func NewFlow(def Definition, env *Env) (*Flow, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidDefinition, def.ID, err)
	}

	sess, err := wizard.New(env.NewID(), def.ID, def.WizardSteps())
	if err != nil {
		return nil, err
	}

	f := &Flow{
		def:  def,
		env:  env,
		sess: sess,
		log:  logging.Scope{SessionID: sess.ID(), ActionID: def.ID, Step: -1}.Logger("flow"),
	}

	if def.Init != nil {
		f.sess, err = f.sess.MergeAll(def.Init(f.state()))
		if err != nil {
			return nil, err
		}
	}

	f.log.Info().Int("steps", sess.Len()).Msg("session created")
	return f, nil
}

func (f *Flow) state() State {
	return State{Env: f.env, Session: f.sess}
}

// Session returns the current session snapshot.
func (f *Flow) Session() wizard.Session { return f.sess }

// Definition returns the action being run.
func (f *Flow) Definition() Definition { return f.def }

// Step returns the current step definition.
func (f *Flow) Step() Step { return f.def.Steps[f.sess.Index()] }

// Busy reports whether async work is in flight.
func (f *Flow) Busy() bool { return f.sess.Busy() }

// Done reports whether the session reached its terminal step.
func (f *Flow) Done() bool { return f.sess.Terminal() }

// Header is a one-line position indicator, e.g. "Quote · step 2 of 4 · Line items".
func (f *Flow) Header() string {
	return fmt.Sprintf("%s · step %d of %d · %s",
		f.def.Title, f.sess.Index()+1, f.sess.Len(), f.Step().Title)
}

// View renders the current step.
func (f *Flow) View() string {
	st := f.Step()
	if st.View == nil {
		return ""
	}
	return st.View(f.state())
}

// Start returns the first step's loader, if it has one. Call it once after
// NewFlow.
func (f *Flow) Start() *Pending {
	if f.sess.Index() != 0 || f.sess.Busy() || f.sess.Terminal() {
		return nil
	}
	return f.enter()
}

// Open is Start run synchronously.
func (f *Flow) Open(ctx context.Context) error {
	p := f.Start()
	if p == nil {
		return nil
	}
	return f.Complete(p.Run(ctx))
}

// Input applies one line of user input to the current step.
func (f *Flow) Input(line string) (Reply, error) {
	if err := f.guard(); err != nil {
		return Reply{}, err
	}

	cmd := ParseCommand(line)
	if cmd.Empty() {
		return Reply{}, nil
	}

	st := f.Step()
	if st.Handle == nil {
		return Reply{}, ErrNoInput
	}

	reply, err := st.Handle(f.state(), cmd)
	if err != nil {
		f.log.Debug().Err(err).Str("command", cmd.Name).Msg("command rejected")
		return Reply{}, err
	}

	if len(reply.Set) > 0 {
		next, err := f.sess.MergeAll(reply.Set)
		if err != nil {
			return Reply{}, err
		}
		f.sess = next
	}
	return reply, nil
}

// Next leaves the current step. Leaving the confirm step starts the
// submission; entering a step with a loader starts the load. Either returns
// a Pending the caller must run and complete.
func (f *Flow) Next() (*Pending, error) {
	if err := f.guard(); err != nil {
		return nil, err
	}

	st := f.Step()
	if st.Ready != nil {
		if err := st.Ready(f.state()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
		}
	}

	if st.Type == wizard.StepConfirm {
		submit := f.def.Submit
		return f.start(OpSubmit, submit), nil
	}

	if err := f.apply(wizard.Advance{}); err != nil {
		return nil, err
	}
	return f.enter(), nil
}

// Back returns to the previous step, keeping all entered data.
func (f *Flow) Back() error {
	if err := f.guard(); err != nil {
		return err
	}
	return f.apply(wizard.Retreat{})
}

// Reload reruns the current step's loader.
func (f *Flow) Reload() (*Pending, error) {
	if err := f.guard(); err != nil {
		return nil, err
	}
	p := f.enter()
	if p == nil {
		return nil, ErrNoInput
	}
	return p, nil
}

// Complete finishes async work. On failure busy is cleared and the session
// stays on its step so the user can retry. A successful submission advances
// to done.
func (f *Flow) Complete(c Completion) error {
	if !f.sess.Busy() {
		return ErrNoPending
	}
	if err := f.apply(wizard.SetBusy{Busy: false}); err != nil {
		return err
	}

	if c.Err != nil {
		f.log.Error().Err(c.Err).Str("op", string(c.Op)).Int("step", c.Step).Msg("operation failed")
		return c.Err
	}

	next, err := f.sess.MergeAll(c.Result.Data)
	if err != nil {
		return err
	}
	f.sess = next

	if c.Op == OpSubmit {
		f.log.Info().Msg("submitted")
		return f.apply(wizard.Advance{})
	}
	return nil
}

// Advance is Next plus any resulting async work, run synchronously.
func (f *Flow) Advance(ctx context.Context) error {
	p, err := f.Next()
	if err != nil || p == nil {
		return err
	}
	return f.Complete(p.Run(ctx))
}

func (f *Flow) guard() error {
	if f.sess.Busy() {
		return ErrBusy
	}
	if f.sess.Terminal() {
		return wizard.ErrTerminal
	}
	return nil
}

// enter starts the current step's loader, if any.
func (f *Flow) enter() *Pending {
	load := f.Step().Load
	if load == nil {
		return nil
	}
	return f.start(OpLoad, load)
}

func (f *Flow) start(op Op, fn func(context.Context, State) (Result, error)) *Pending {
	_ = f.apply(wizard.SetBusy{Busy: true})
	snapshot := f.state()

	step := f.sess.Index()
	return &Pending{
		Op:    op,
		Step:  step,
		scope: logging.Scope{SessionID: f.sess.ID(), ActionID: f.def.ID, Step: step},
		run: func(ctx context.Context) (Result, error) {
			return fn(ctx, snapshot)
		},
	}
}

func (f *Flow) apply(e wizard.Event) error {
	next, effects, err := wizard.Reduce(f.sess, e)
	if err != nil {
		return err
	}
	f.sess = next

	for _, eff := range effects {
		switch eff {
		case wizard.EffectStepChanged:
			f.log.Debug().Int("index", next.Index()).Str("type", string(next.Current().Type)).Msg("step changed")
		case wizard.EffectCelebrate:
			if f.OnCelebrate != nil {
				f.OnCelebrate(next)
			}
		}
	}
	return nil
}
