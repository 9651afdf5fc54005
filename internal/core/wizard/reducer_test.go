package wizard

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSteps() []Step {
	return []Step{
		{Type: StepPick},
		{Type: StepChoose},
		{Type: StepPreview},
		{Type: StepConfirm},
		{Type: StepDone},
	}
}

func newSession(t *testing.T) Session {
	t.Helper()
	s, err := New("sess-1", "quote", fullSteps())
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("rejects empty steps", func(t *testing.T) {
		_, err := New("id", "quote", nil)
		require.ErrorIs(t, err, ErrNoSteps)
	})

	t.Run("rejects unknown step type", func(t *testing.T) {
		_, err := New("id", "quote", []Step{{Type: "review"}})
		require.ErrorIs(t, err, ErrInvalidStep)
	})

	t.Run("starts on first step", func(t *testing.T) {
		s := newSession(t)
		assert.Equal(t, 0, s.Index())
		assert.Equal(t, StepPick, s.Current().Type)
		assert.False(t, s.Busy())
		assert.False(t, s.Terminal())
		assert.Empty(t, s.Keys())
	})

	t.Run("copies the step slice", func(t *testing.T) {
		steps := fullSteps()
		s, err := New("id", "quote", steps)
		require.NoError(t, err)

		steps[0].Type = StepDone
		assert.Equal(t, StepPick, s.Current().Type)
	})
}

func TestReduce_Advance(t *testing.T) {
	s := newSession(t)

	next, effects, err := Reduce(s, Advance{})
	require.NoError(t, err)
	assert.Equal(t, 1, next.Index())
	assert.Equal(t, []Effect{EffectStepChanged}, effects)
	assert.Equal(t, 0, s.Index(), "original session must not change")
}

func TestReduce_AdvancePastEnd(t *testing.T) {
	s := newSession(t)
	for range 4 {
		var err error
		s, _, err = Reduce(s, Advance{})
		require.NoError(t, err)
	}

	next, effects, err := Reduce(s, Advance{})
	require.ErrorIs(t, err, ErrAtLastStep)
	assert.Empty(t, effects)
	assert.Equal(t, 4, next.Index())
}

func TestReduce_RetreatBeforeStart(t *testing.T) {
	s := newSession(t)

	next, _, err := Reduce(s, Retreat{})
	require.ErrorIs(t, err, ErrAtFirstStep)
	assert.Equal(t, 0, next.Index())
}

func TestReduce_CelebratesOnce(t *testing.T) {
	s, err := New("id", "quote", []Step{{Type: StepConfirm}, {Type: StepDone}})
	require.NoError(t, err)

	s, effects, err := Reduce(s, Advance{})
	require.NoError(t, err)
	assert.Contains(t, effects, EffectCelebrate)
	assert.True(t, s.Terminal())
	assert.True(t, s.Celebrated())

	// Re-reducing non-navigation events on the terminal session never refires.
	s, effects, err = Reduce(s, Merge{Key: "seen", Value: true})
	require.NoError(t, err)
	assert.NotContains(t, effects, EffectCelebrate)

	_, _, err = Reduce(s, Retreat{})
	require.ErrorIs(t, err, ErrTerminal)
}

func TestReduce_MergeReplacesShallow(t *testing.T) {
	s := newSession(t)

	s, _, err := Reduce(s, Merge{Key: "org", Value: map[string]any{"id": "1", "name": "Acme"}})
	require.NoError(t, err)

	s2, _, err := Reduce(s, Merge{Key: "org", Value: map[string]any{"id": "2"}})
	require.NoError(t, err)

	got, ok := Get[map[string]any](s2, "org")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": "2"}, got, "later write replaces the whole value")

	prev, ok := Get[map[string]any](s, "org")
	require.True(t, ok)
	assert.Equal(t, "Acme", prev["name"], "earlier session keeps its own data")
}

func TestReduce_MergeEmptyKey(t *testing.T) {
	s := newSession(t)
	_, _, err := Reduce(s, Merge{Key: "", Value: 1})
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestReduce_SetBusy(t *testing.T) {
	s := newSession(t)

	s, _, err := Reduce(s, SetBusy{Busy: true})
	require.NoError(t, err)
	assert.True(t, s.Busy())

	s, _, err = Reduce(s, SetBusy{Busy: false})
	require.NoError(t, err)
	assert.False(t, s.Busy())
}

func TestRetreatThenAdvanceRestoresData(t *testing.T) {
	s := newSession(t)
	s, _, err := s.Apply(
		Merge{Key: "pick", Value: "org-1"},
		Advance{},
		Merge{Key: "choose", Value: []string{"a", "b"}},
	)
	require.NoError(t, err)

	before := s.Data()

	s, _, err = s.Apply(Retreat{}, Advance{})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Index())
	assert.Equal(t, before, s.Data())
}

func TestApply_StopsAtFirstError(t *testing.T) {
	s := newSession(t)

	got, effects, err := s.Apply(Advance{}, Retreat{}, Retreat{}, Advance{})
	require.ErrorIs(t, err, ErrAtFirstStep)
	assert.Equal(t, 0, got.Index())
	assert.Len(t, effects, 2)
}

func TestMergeAll(t *testing.T) {
	s := newSession(t)

	s, err := s.MergeAll(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.Equal(t, 2, GetOr(s, "b", 0))
	assert.Equal(t, "none", GetOr(s, "missing", "none"))
}

func TestReduce_IndexStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s := newSession(t)

	for range 2000 {
		var e Event = Advance{}
		if rng.IntN(2) == 0 {
			e = Retreat{}
		}
		s, _, _ = Reduce(s, e)

		require.GreaterOrEqual(t, s.Index(), 0)
		require.LessOrEqual(t, s.Index(), s.Len()-1)
	}
}
