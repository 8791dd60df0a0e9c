package sentences

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
)

var sundays = content.Sentence{
	Text:         "We play football on Sundays.",
	Alternatives: []string{"On Sundays we play football."},
	Rule:         "Time phrases go at the end or the start.",
	Tags:         content.Tags{Difficulty: content.Beginner, Category: "present"},
}

func library() *content.Library {
	return &content.Library{Sentences: []content.Sentence{sundays}}
}

func TestPromptIsShuffled(t *testing.T) {
	r := NewRules(library())
	for seed := uint64(1); seed < 20; seed++ {
		p := r.Prompt(sundays, nil, content.NewRand(seed))
		assert.ElementsMatch(t, sundays.Words(), p.Tokens)
		assert.NotEqual(t, sundays.Words(), p.Tokens)
	}
}

func TestCheckAcceptsAlternatives(t *testing.T) {
	r := NewRules(library())
	assert.True(t, r.Check(sundays, game.Answer{Tokens: sundays.Words()}).Correct)
	assert.True(t, r.Check(sundays, game.Answer{Text: "on sundays we play football"}).Correct)

	v := r.Check(sundays, game.Answer{Text: "We play on football Sundays."})
	assert.False(t, v.Correct)
	assert.Equal(t, map[string]any{"placed": []bool{true, true, false, false, true}}, v.Detail)

	v = r.Check(sundays, game.Answer{Text: "We play football"})
	assert.Equal(t, "Use every word exactly once.", v.Message)
}

func TestScoreSpeedBonus(t *testing.T) {
	r := NewRules(library())
	score := func(attempts, hints int, latency time.Duration) int {
		return r.Score(sundays, game.Verdict{Correct: true}, game.Attempt{Attempts: attempts, Hints: hints, Latency: latency})
	}
	assert.Equal(t, 130, score(0, 0, 0))
	assert.Equal(t, 120, score(0, 0, 10*time.Second))
	assert.Equal(t, 100, score(0, 0, time.Minute))
	assert.Equal(t, 50, score(1, 2, time.Minute))
	assert.Equal(t, 0, score(5, 3, time.Minute))
}

func TestHints(t *testing.T) {
	r := NewRules(library())
	assert.Equal(t, "We …", r.Hint(sundays, 1))
	assert.Equal(t, "We play football …", r.Hint(sundays, 2))
	assert.Equal(t, sundays.Rule, r.Hint(sundays, 3))
}

func TestSessionLatencyExcludesPause(t *testing.T) {
	p, err := ParseParams([]byte(`{"count":1}`))
	require.NoError(t, err)
	sched := game.NewManualScheduler(time.Unix(0, 0))
	s := New(library(), p, game.Options{Scheduler: sched, Clock: sched.Now})
	_, err = s.Start()
	require.NoError(t, err)

	sched.Advance(5 * time.Second)
	_, err = s.Pause()
	require.NoError(t, err)
	sched.Advance(time.Hour)
	_, err = s.Resume()
	require.NoError(t, err)
	sched.Advance(5 * time.Second)

	snap, err := s.Submit(game.Answer{Text: strings.ToLower(sundays.Text)})
	require.NoError(t, err)
	assert.True(t, *snap.Correct)
	assert.Equal(t, 120, snap.Score)
}
