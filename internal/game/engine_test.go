package game

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRules struct {
	items  []string
	policy Policy
}

func (r echoRules) Name() string                       { return "echo" }
func (r echoRules) Policy() Policy                     { return r.policy }
func (r echoRules) Items(Params, *rand.Rand) []string  { return r.items }
func (r echoRules) Fallback() string                   { return "fallback" }
func (r echoRules) Expected(item string) string        { return item }
func (r echoRules) Hint(item string, level int) string { return item[:min(level, len(item))] }
func (r echoRules) Prompt(item string, _ []string, _ *rand.Rand) Prompt {
	return Prompt{Text: "say " + item, Speak: item}
}

func (r echoRules) Check(item string, ans Answer) Verdict {
	return Verdict{Correct: ans.Text == item}
}

func (r echoRules) Score(_ string, _ Verdict, a Attempt) int {
	return 10 - 5*a.Attempts - 5*a.Hints
}

func defaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		MaxHints:       3,
		CorrectDelay:   time.Second,
		IncorrectDelay: 2500 * time.Millisecond,
	}
}

type harness struct {
	sched *ManualScheduler
	mu    sync.Mutex
	done  []Summary
}

func (h *harness) summaries() []Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Summary(nil), h.done...)
}

func newSession(t *testing.T, rules echoRules, p Params) (*Session[string], *harness) {
	t.Helper()
	require.NoError(t, p.Prepare())
	h := &harness{sched: NewManualScheduler(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))}
	s := New[string](rules, p, Options{
		ID:        "s1",
		Scheduler: h.sched,
		Clock:     h.sched.Now,
		OnComplete: func(sum Summary) {
			h.mu.Lock()
			h.done = append(h.done, sum)
			h.mu.Unlock()
		},
	})
	return s, h
}

func TestStartBuildsPoolWithinCount(t *testing.T) {
	rules := echoRules{items: []string{"a", "b", "c", "d", "e"}, policy: defaultPolicy()}
	s, _ := newSession(t, rules, Params{Count: 3, Seed: 42})

	snap, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 0, snap.Index)
	require.NotNil(t, snap.Prompt)
	assert.Nil(t, snap.Correct)
	assert.Empty(t, snap.Expected)
}

func TestStartSameSeedSamePool(t *testing.T) {
	rules := echoRules{items: []string{"a", "b", "c", "d", "e", "f", "g"}, policy: defaultPolicy()}
	order := func() []string {
		s, _ := newSession(t, rules, Params{Count: 7, Seed: 99})
		_, err := s.Start()
		require.NoError(t, err)
		var got []string
		for i := 0; i < 7; i++ {
			got = append(got, s.Snapshot().Prompt.Speak)
			_, err := s.Next()
			require.NoError(t, err)
		}
		return got
	}
	assert.Equal(t, order(), order())
}

func TestStartFallsBackWhenNoItems(t *testing.T) {
	s, _ := newSession(t, echoRules{policy: defaultPolicy()}, Params{Count: 5})

	snap, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, "fallback", snap.Prompt.Speak)
}

func TestCorrectAnswerAdvancesAfterDelay(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"x", "y"}, policy: defaultPolicy()}, Params{Count: 2, Seed: 1})
	snap, err := s.Start()
	require.NoError(t, err)
	word := snap.Prompt.Speak

	snap, err = s.Submit(Answer{Text: word})
	require.NoError(t, err)
	assert.Equal(t, StatusFeedback, snap.Status)
	require.NotNil(t, snap.Correct)
	assert.True(t, *snap.Correct)
	assert.Equal(t, word, snap.Expected)
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, h.sched.Timers())

	h.sched.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, s.Snapshot().Index)

	h.sched.Advance(time.Millisecond)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Nil(t, snap.Correct)
	assert.Equal(t, 0, snap.Attempts)
}

func TestWrongAnswerRevealsOnlyAfterMaxAttempts(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"happy"}, policy: defaultPolicy()}, Params{Count: 1})
	_, err := s.Start()
	require.NoError(t, err)

	snap, err := s.Submit(Answer{Text: "hapy"})
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.Attempts)
	require.NotNil(t, snap.Correct)
	assert.False(t, *snap.Correct)
	assert.Empty(t, snap.Expected)

	_, err = s.Submit(Answer{Text: "hapy"})
	require.NoError(t, err)
	snap, err = s.Submit(Answer{Text: "hapy"})
	require.NoError(t, err)
	assert.Equal(t, StatusFeedback, snap.Status)
	assert.Equal(t, "happy", snap.Expected)
	assert.Equal(t, 0, snap.Score)

	h.sched.Advance(2500 * time.Millisecond)
	snap = s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, ReasonExhausted, snap.Summary.Reason)
	assert.Equal(t, 3, snap.Summary.Incorrect)
	assert.Len(t, h.summaries(), 1)
}

func TestParamsMaxAttemptsOverridesPolicy(t *testing.T) {
	s, _ := newSession(t, echoRules{items: []string{"a"}, policy: defaultPolicy()}, Params{Count: 1, MaxAttempts: 1})
	_, err := s.Start()
	require.NoError(t, err)

	snap, err := s.Submit(Answer{Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, StatusFeedback, snap.Status)
	assert.Equal(t, 1, snap.MaxAttempts)
}

func TestScoreNeverNegative(t *testing.T) {
	s, _ := newSession(t, echoRules{items: []string{"abc"}, policy: defaultPolicy()}, Params{Count: 1, MaxAttempts: 5})
	_, err := s.Start()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Submit(Answer{Text: "nope"})
		require.NoError(t, err)
	}
	_, err = s.Hint()
	require.NoError(t, err)
	snap, err := s.Submit(Answer{Text: "abc"})
	require.NoError(t, err)
	assert.True(t, *snap.Correct)
	assert.Equal(t, 0, snap.Score)
}

func TestSubmitOutsidePlayingFails(t *testing.T) {
	s, _ := newSession(t, echoRules{items: []string{"a"}, policy: defaultPolicy()}, Params{Count: 1})

	_, err := s.Submit(Answer{Text: "a"})
	assert.ErrorIs(t, err, ErrNotPlaying)

	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: "a"})
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: "a"})
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestHintLevelsCapAtThree(t *testing.T) {
	p := defaultPolicy()
	p.MaxHints = 5
	s, _ := newSession(t, echoRules{items: []string{"quartz"}, policy: p}, Params{Count: 1})
	_, err := s.Start()
	require.NoError(t, err)

	for level := 1; level <= 3; level++ {
		snap, err := s.Hint()
		require.NoError(t, err)
		assert.Equal(t, level, snap.HintLevel)
		assert.Equal(t, "quartz"[:level], snap.Hint)
	}
	_, err = s.Hint()
	assert.ErrorIs(t, err, ErrHintsExhausted)
}

func TestTimerCompletesSession(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a", "b", "c"}, policy: defaultPolicy()}, Params{Count: 3, TimeLimit: 5})
	snap, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Remaining)
	assert.Equal(t, 1, h.sched.Tickers())

	h.sched.Advance(4 * time.Second)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Remaining)
	assert.Equal(t, StatusPlaying, snap.Status)

	h.sched.Advance(time.Second)
	snap = s.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, ReasonTimeout, snap.Summary.Reason)
	assert.Equal(t, 0, h.sched.Tickers())
	assert.Equal(t, 0, h.sched.Timers())

	h.sched.Advance(10 * time.Second)
	assert.Len(t, h.summaries(), 1)
}

func TestHintTimeCostCanEndSession(t *testing.T) {
	p := defaultPolicy()
	p.HintTimeCost = 10
	s, h := newSession(t, echoRules{items: []string{"abc"}, policy: p}, Params{Count: 1, TimeLimit: 15})
	_, err := s.Start()
	require.NoError(t, err)

	snap, err := s.Hint()
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Remaining)

	snap, err = s.Hint()
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 0, h.sched.Tickers())
}

func TestPauseFreezesTimerAndTransition(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a", "b"}, policy: defaultPolicy()}, Params{Count: 2, TimeLimit: 30, Seed: 3})
	snap, err := s.Start()
	require.NoError(t, err)

	h.sched.Advance(2 * time.Second)
	_, err = s.Submit(Answer{Text: snap.Prompt.Speak})
	require.NoError(t, err)

	snap, err = s.Pause()
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, snap.Status)
	assert.Equal(t, 0, h.sched.Tickers())
	assert.Equal(t, 0, h.sched.Timers())

	h.sched.Advance(time.Minute)
	snap = s.Snapshot()
	assert.Equal(t, 28, snap.Remaining)
	assert.Equal(t, 0, snap.Index)

	snap, err = s.Resume()
	require.NoError(t, err)
	assert.Equal(t, StatusFeedback, snap.Status)
	assert.Equal(t, 1, h.sched.Tickers())

	_, err = s.Resume()
	assert.ErrorIs(t, err, ErrNotPaused)

	h.sched.Advance(time.Second)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 27, snap.Remaining)
}

func TestRepeatedPauseResumeKeepsOneTicker(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a"}, policy: defaultPolicy()}, Params{Count: 1, TimeLimit: 10})
	_, err := s.Start()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = s.Pause()
		require.NoError(t, err)
		_, err = s.Resume()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.sched.Tickers())

	h.sched.Advance(3 * time.Second)
	assert.Equal(t, 7, s.Snapshot().Remaining)
}

func TestResetInvalidatesPendingAdvance(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a", "b"}, policy: defaultPolicy()}, Params{Count: 2, Seed: 5})
	snap, err := s.Start()
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: snap.Prompt.Speak})
	require.NoError(t, err)

	snap, err = s.Reset()
	require.NoError(t, err)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, 0, snap.Score)

	_, err = s.Start()
	require.NoError(t, err)
	h.sched.Advance(5 * time.Second)
	snap = s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, StatusPlaying, snap.Status)
}

func TestStaleCallbackIgnoredAfterRestart(t *testing.T) {
	// A callback captured before Reset must not touch the next run even if the
	// scheduler fails to cancel it.
	s, h := newSession(t, echoRules{items: []string{"a", "b"}, policy: defaultPolicy()}, Params{Count: 2, Seed: 5})
	snap, err := s.Start()
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: snap.Prompt.Speak})
	require.NoError(t, err)

	s.mu.Lock()
	gen, seq := s.generation, s.advanceSeq
	s.mu.Unlock()

	_, err = s.Reset()
	require.NoError(t, err)
	snap, err = s.Start()
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: snap.Prompt.Speak})
	require.NoError(t, err)

	s.deferredAdvance(gen, seq)
	assert.Equal(t, StatusFeedback, s.Snapshot().Status)
	assert.Equal(t, 0, s.Snapshot().Index)

	h.sched.Advance(time.Second)
	assert.Equal(t, 1, s.Snapshot().Index)
}

func TestNextSkipsCurrentItem(t *testing.T) {
	s, _ := newSession(t, echoRules{items: []string{"a", "b"}, policy: defaultPolicy()}, Params{Count: 2})
	_, err := s.Start()
	require.NoError(t, err)

	snap, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Index)

	snap, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Summary.Skipped)
	assert.Len(t, snap.Summary.Items, 2)
}

func TestEndIsIdempotent(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a", "b"}, policy: defaultPolicy()}, Params{Count: 2, TimeLimit: 60})
	_, err := s.End()
	assert.ErrorIs(t, err, ErrNotPlaying)

	_, err = s.Start()
	require.NoError(t, err)
	snap, err := s.End()
	require.NoError(t, err)
	assert.Equal(t, ReasonEnded, snap.Summary.Reason)

	_, err = s.End()
	require.NoError(t, err)
	assert.Len(t, h.summaries(), 1)
	assert.Equal(t, 0, h.sched.Tickers())
}

func TestPlayAgainFromCompleted(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a"}, policy: defaultPolicy()}, Params{Count: 1})
	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.End()
	require.NoError(t, err)

	snap, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Nil(t, snap.Summary)

	_, err = s.Start()
	assert.ErrorIs(t, err, ErrNotStartable)
	assert.Len(t, h.summaries(), 1)
}

func TestDisposeStopsEverything(t *testing.T) {
	s, h := newSession(t, echoRules{items: []string{"a"}, policy: defaultPolicy()}, Params{Count: 1, TimeLimit: 5})
	snap, err := s.Start()
	require.NoError(t, err)
	_, err = s.Submit(Answer{Text: snap.Prompt.Speak})
	require.NoError(t, err)

	s.Dispose()
	assert.Equal(t, 0, h.sched.Tickers())
	assert.Equal(t, 0, h.sched.Timers())

	h.sched.Advance(time.Minute)
	assert.Empty(t, h.summaries())

	_, err = s.Submit(Answer{Text: "a"})
	assert.ErrorIs(t, err, ErrDisposed)
	s.Dispose()
}

func TestFinalScoreAppliesTimePenalty(t *testing.T) {
	p := defaultPolicy()
	p.TimePenalty = func(elapsed time.Duration) int { return int(elapsed / (30 * time.Second)) }
	s, h := newSession(t, echoRules{items: []string{"a"}, policy: p}, Params{Count: 1})
	_, err := s.Start()
	require.NoError(t, err)

	h.sched.Advance(65 * time.Second)
	_, err = s.Submit(Answer{Text: "a"})
	require.NoError(t, err)
	h.sched.Advance(time.Second)

	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, 10, sum.Score)
	assert.Equal(t, 8, sum.FinalScore)
	assert.InDelta(t, 1.0, sum.Accuracy, 1e-9)
	assert.Equal(t, int64(66000), sum.ElapsedMs)
}
