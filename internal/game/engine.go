// internal/game/engine.go
//
// Generic session engine shared by every mini-game.
// Responsibilities:
//   - Build the item pool once per Start (Items → shuffle → slice, fallback when empty).
//   - Judge submissions through the game's Rules and keep score/attempt/hint counters.
//   - Drive the countdown (one ticker per session) and deferred "next item" transitions.
//   - Produce Snapshots for the gameplay screen and a Summary for the score screen.
//
// Timers:
//   - At most one live ticker; it is stopped on pause, completion, reset and dispose.
//   - Every deferred callback carries the generation and sequence it was scheduled
//     under and is ignored when either has moved on.
//
// All exported methods are safe for concurrent use; completion hooks run outside the lock.

package game

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
)

// Options configure a session's collaborators.
type Options struct {
	ID         string           // defaults to a random UUID
	Scheduler  Scheduler        // defaults to RealScheduler
	Clock      func() time.Time // defaults to time.Now
	OnComplete func(Summary)    // called once per completed run
	Logger     *zerolog.Logger  // defaults to the global logger
}

// Session is one player's run of one game.
type Session[T any] struct {
	mu sync.Mutex

	id         string
	rules      Rules[T]
	policy     Policy
	params     Params
	sched      Scheduler
	now        func() time.Time
	onComplete func(Summary)
	logger     zerolog.Logger
	rng        *rand.Rand

	status     Status
	disposed   bool
	generation uint64

	pool      []T
	index     int
	prompt    Prompt
	input     string
	correct   *bool
	verdict   Verdict
	revealed  bool
	recorded  bool
	attempts  int
	hintLevel int
	hint      string

	score     int
	correctN  int
	incorrect int
	skipped   int
	hints     int
	results   []ItemResult

	remaining    int
	activeTotal  time.Duration
	activeSince  time.Time
	itemActive   time.Duration
	itemSince    time.Time
	resumeStatus Status
	reason       Reason
	summary      *Summary

	tickerSeq     uint64
	stopTicker    func()
	advanceSeq    uint64
	cancelAdvance func()
}

// New creates a session in StatusReady. params must already be prepared.
func New[T any](rules Rules[T], params Params, opts Options) *Session[T] {
	s := &Session[T]{
		id:         opts.ID,
		rules:      rules,
		policy:     rules.Policy(),
		params:     params,
		sched:      opts.Scheduler,
		now:        opts.Clock,
		onComplete: opts.OnComplete,
		status:     StatusReady,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.sched == nil {
		s.sched = RealScheduler()
	}
	if s.now == nil {
		s.now = time.Now
	}
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	s.logger = base.With().Str("session", s.id).Str("game", rules.Name()).Logger()
	return s
}

func (s *Session[T]) ID() string   { return s.id }
func (s *Session[T]) Game() string { return s.rules.Name() }

// Params returns the prepared parameters the session was created with.
func (s *Session[T]) Params() Params { return s.params }

// Start seeds a fresh item pool and enters StatusPlaying.
// Allowed from StatusReady and, to play again, from StatusCompleted.
func (s *Session[T]) Start() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return Snapshot{}, ErrDisposed
	}
	if s.status != StatusReady && s.status != StatusCompleted {
		return s.snapshotLocked(), ErrNotStartable
	}

	s.generation++
	s.rng = content.NewRand(s.params.Seed)
	pool := content.Shuffle(s.rules.Items(s.params, s.rng), s.rng)
	if s.params.Count > 0 && len(pool) > s.params.Count {
		pool = pool[:s.params.Count]
	}
	if len(pool) == 0 {
		s.logger.Warn().Str("difficulty", string(s.params.Difficulty)).Str("category", s.params.Category).
			Msg("no items match, using fallback item")
		pool = []T{s.rules.Fallback()}
	}

	s.pool = pool
	s.index = 0
	s.score, s.correctN, s.incorrect, s.skipped, s.hints = 0, 0, 0, 0, 0
	s.results = make([]ItemResult, 0, len(pool))
	s.remaining = s.params.TimeLimit
	s.reason = ""
	s.summary = nil
	s.activeTotal = 0
	s.activeSince = s.now()
	s.presentLocked()
	if s.params.TimeLimit > 0 {
		s.startTickerLocked()
	}
	s.logger.Debug().Int("pool", len(pool)).Int("timeLimit", s.params.TimeLimit).Msg("session started")
	return s.snapshotLocked(), nil
}

// Submit judges ans against the current item.
func (s *Session[T]) Submit(ans Answer) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return Snapshot{}, ErrDisposed
	}
	if s.status != StatusPlaying {
		return s.snapshotLocked(), ErrNotPlaying
	}

	item := s.pool[s.index]
	s.status = StatusChecking
	s.input = ans.Text
	if s.input == "" && len(ans.Tokens) > 0 {
		s.input = strings.Join(ans.Tokens, " ")
	}

	v := s.rules.Check(item, ans)
	if v.Expected == "" {
		v.Expected = s.rules.Expected(item)
	}
	s.verdict = v

	if v.Correct {
		pts := s.rules.Score(item, v, Attempt{Attempts: s.attempts, Hints: s.hintLevel, Latency: s.itemLatencyLocked()})
		if pts < 0 {
			pts = 0
		}
		s.score += pts
		s.correctN++
		s.setCorrect(true)
		s.revealed = true
		s.recordLocked(true, false, pts)
		s.status = StatusFeedback
		s.scheduleAdvanceLocked(s.policy.CorrectDelay)
		s.logger.Debug().Int("index", s.index).Int("points", pts).Msg("correct answer")
		return s.snapshotLocked(), nil
	}

	s.attempts++
	s.incorrect++
	s.setCorrect(false)
	if limit := s.maxAttempts(); limit > 0 && s.attempts >= limit {
		s.revealed = true
		s.recordLocked(false, false, 0)
		s.status = StatusFeedback
		s.scheduleAdvanceLocked(s.policy.IncorrectDelay)
	} else {
		s.status = StatusPlaying
	}
	s.logger.Debug().Int("index", s.index).Int("attempts", s.attempts).Msg("incorrect answer")
	return s.snapshotLocked(), nil
}

// Hint reveals the next hint level for the current item.
func (s *Session[T]) Hint() (Snapshot, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Snapshot{}, ErrDisposed
	}
	if s.status != StatusPlaying {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNotPlaying
	}
	if s.hintLevel >= s.maxHints() {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrHintsExhausted
	}

	s.hintLevel++
	s.hints++
	s.hint = s.rules.Hint(s.pool[s.index], s.hintLevel)

	var done *Summary
	if s.params.TimeLimit > 0 && s.policy.HintTimeCost > 0 {
		s.remaining -= s.policy.HintTimeCost
		if s.remaining <= 0 {
			s.remaining = 0
			done = s.completeLocked(ReasonTimeout)
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(done)
	return snap, nil
}

// Next advances immediately. From StatusPlaying the current item counts as skipped.
func (s *Session[T]) Next() (Snapshot, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Snapshot{}, ErrDisposed
	}
	switch s.status {
	case StatusFeedback:
	case StatusPlaying:
		s.skipped++
		s.recordLocked(false, true, 0)
	default:
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNotPlaying
	}
	done := s.advanceLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(done)
	return snap, nil
}

// Pause freezes the countdown and any pending transition.
func (s *Session[T]) Pause() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return Snapshot{}, ErrDisposed
	}
	if s.status != StatusPlaying && s.status != StatusFeedback {
		return s.snapshotLocked(), ErrNotPlaying
	}
	s.stopTickerLocked()
	s.cancelAdvanceLocked()
	now := s.now()
	s.activeTotal += now.Sub(s.activeSince)
	s.itemActive += now.Sub(s.itemSince)
	s.resumeStatus = s.status
	s.status = StatusPaused
	s.logger.Debug().Int("remaining", s.remaining).Msg("session paused")
	return s.snapshotLocked(), nil
}

// Resume continues a paused session where it left off.
func (s *Session[T]) Resume() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return Snapshot{}, ErrDisposed
	}
	if s.status != StatusPaused {
		return s.snapshotLocked(), ErrNotPaused
	}
	now := s.now()
	s.activeSince = now
	s.itemSince = now
	s.status = s.resumeStatus
	if s.params.TimeLimit > 0 {
		s.startTickerLocked()
	}
	if s.status == StatusFeedback {
		delay := s.policy.IncorrectDelay
		if s.correct != nil && *s.correct {
			delay = s.policy.CorrectDelay
		}
		s.scheduleAdvanceLocked(delay)
	}
	return s.snapshotLocked(), nil
}

// End completes the session now. Ending a completed session is a no-op.
func (s *Session[T]) End() (Snapshot, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Snapshot{}, ErrDisposed
	}
	if s.status == StatusReady {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNotPlaying
	}
	done := s.completeLocked(ReasonEnded)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(done)
	return snap, nil
}

// Reset discards the pool and returns to StatusReady; pending callbacks go stale.
func (s *Session[T]) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return Snapshot{}, ErrDisposed
	}
	s.stopTickerLocked()
	s.cancelAdvanceLocked()
	s.generation++
	s.pool = nil
	s.index = 0
	s.prompt = Prompt{}
	s.input, s.hint = "", ""
	s.correct = nil
	s.verdict = Verdict{}
	s.revealed, s.recorded = false, false
	s.attempts, s.hintLevel = 0, 0
	s.score, s.correctN, s.incorrect, s.skipped, s.hints = 0, 0, 0, 0, 0
	s.results = nil
	s.remaining = 0
	s.reason = ""
	s.summary = nil
	s.status = StatusReady
	return s.snapshotLocked(), nil
}

// Dispose ends the session's lifecycle. Further calls fail with ErrDisposed.
func (s *Session[T]) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.stopTickerLocked()
	s.cancelAdvanceLocked()
	s.generation++
	s.disposed = true
	s.logger.Debug().Msg("session disposed")
}

// Snapshot returns the current gameplay view.
func (s *Session[T]) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Summary returns the score screen once the session has completed.
func (s *Session[T]) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// ---------------------------------------------------------------------------
// internals (callers hold s.mu)

func (s *Session[T]) maxAttempts() int {
	if s.params.MaxAttempts > 0 {
		return s.params.MaxAttempts
	}
	return s.policy.MaxAttempts
}

func (s *Session[T]) maxHints() int {
	return min(s.policy.MaxHints, 3)
}

func (s *Session[T]) setCorrect(v bool) {
	s.correct = &v
}

func (s *Session[T]) running() bool {
	return s.status == StatusPlaying || s.status == StatusChecking || s.status == StatusFeedback
}

// presentLocked shows pool[index] with fresh per-item state.
func (s *Session[T]) presentLocked() {
	s.prompt = s.rules.Prompt(s.pool[s.index], s.pool, s.rng)
	s.input, s.hint = "", ""
	s.correct = nil
	s.verdict = Verdict{}
	s.revealed, s.recorded = false, false
	s.attempts, s.hintLevel = 0, 0
	s.itemActive = 0
	s.itemSince = s.now()
	s.status = StatusPlaying
}

func (s *Session[T]) itemLatencyLocked() time.Duration {
	d := s.itemActive
	if s.running() {
		d += s.now().Sub(s.itemSince)
	}
	return d
}

func (s *Session[T]) recordLocked(correct, skipped bool, points int) {
	if s.recorded {
		return
	}
	s.recorded = true
	s.results = append(s.results, ItemResult{
		Index:    s.index,
		Prompt:   s.prompt.Text,
		Expected: s.rules.Expected(s.pool[s.index]),
		Correct:  correct,
		Skipped:  skipped,
		Attempts: s.attempts,
		Hints:    s.hintLevel,
		Points:   points,
		TimeMs:   s.itemLatencyLocked().Milliseconds(),
	})
}

// advanceLocked moves to the next item or completes when the pool is exhausted.
func (s *Session[T]) advanceLocked() *Summary {
	s.cancelAdvanceLocked()
	s.index++
	if s.index >= len(s.pool) {
		s.index = len(s.pool) - 1
		return s.completeLocked(ReasonExhausted)
	}
	s.presentLocked()
	return nil
}

// completeLocked enters StatusCompleted and builds the summary; nil if already completed.
func (s *Session[T]) completeLocked(reason Reason) *Summary {
	if s.status == StatusCompleted || s.status == StatusReady {
		return nil
	}
	s.stopTickerLocked()
	s.cancelAdvanceLocked()
	if s.running() {
		s.activeTotal += s.now().Sub(s.activeSince)
	}
	if !s.recorded && (s.attempts > 0 || s.hintLevel > 0) {
		s.recordLocked(false, false, 0)
	}
	s.status = StatusCompleted
	s.reason = reason

	sum := Summary{
		SessionID: s.id,
		Game:      s.rules.Name(),
		Params:    s.params,
		Score:     s.score,
		Correct:   s.correctN,
		Incorrect: s.incorrect,
		Skipped:   s.skipped,
		Hints:     s.hints,
		ElapsedMs: s.activeTotal.Milliseconds(),
		Reason:    reason,
		Items:     append([]ItemResult(nil), s.results...),
	}
	sum.FinalScore = s.score
	if s.policy.TimePenalty != nil {
		sum.FinalScore = max(s.score-s.policy.TimePenalty(s.activeTotal), 0)
	}
	if judged := s.correctN + s.incorrect; judged > 0 {
		sum.Accuracy = float64(s.correctN) / float64(judged)
	}
	s.summary = &sum
	s.logger.Info().Str("reason", string(reason)).Int("score", sum.Score).Int("finalScore", sum.FinalScore).
		Int("correct", sum.Correct).Int("incorrect", sum.Incorrect).Msg("session completed")

	out := sum
	return &out
}

func (s *Session[T]) startTickerLocked() {
	s.stopTickerLocked()
	s.tickerSeq++
	gen, seq := s.generation, s.tickerSeq
	s.stopTicker = s.sched.Every(time.Second, func() { s.tick(gen, seq) })
}

func (s *Session[T]) stopTickerLocked() {
	if s.stopTicker != nil {
		s.stopTicker()
		s.stopTicker = nil
	}
	s.tickerSeq++
}

func (s *Session[T]) tick(gen, seq uint64) {
	s.mu.Lock()
	if s.disposed || gen != s.generation || seq != s.tickerSeq || !s.running() {
		s.mu.Unlock()
		return
	}
	s.remaining--
	var done *Summary
	if s.remaining <= 0 {
		s.remaining = 0
		done = s.completeLocked(ReasonTimeout)
	}
	s.mu.Unlock()
	s.notify(done)
}

func (s *Session[T]) scheduleAdvanceLocked(delay time.Duration) {
	s.cancelAdvanceLocked()
	gen, seq := s.generation, s.advanceSeq
	s.cancelAdvance = s.sched.AfterFunc(delay, func() { s.deferredAdvance(gen, seq) })
}

func (s *Session[T]) cancelAdvanceLocked() {
	if s.cancelAdvance != nil {
		s.cancelAdvance()
		s.cancelAdvance = nil
	}
	s.advanceSeq++
}

func (s *Session[T]) deferredAdvance(gen, seq uint64) {
	s.mu.Lock()
	if s.disposed || gen != s.generation || seq != s.advanceSeq || s.status != StatusFeedback {
		s.mu.Unlock()
		s.logger.Debug().Msg("stale advance ignored")
		return
	}
	done := s.advanceLocked()
	s.mu.Unlock()
	s.notify(done)
}

func (s *Session[T]) notify(sum *Summary) {
	if sum != nil && s.onComplete != nil {
		s.onComplete(*sum)
	}
}

func (s *Session[T]) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Game:        s.rules.Name(),
		Status:      s.status,
		Index:       s.index,
		Total:       len(s.pool),
		Input:       s.input,
		Message:     s.verdict.Message,
		Detail:      s.verdict.Detail,
		Score:       s.score,
		Attempts:    s.attempts,
		MaxAttempts: s.maxAttempts(),
		HintLevel:   s.hintLevel,
		Hint:        s.hint,
		Remaining:   s.remaining,
		TimeLimit:   s.params.TimeLimit,
	}
	if len(s.pool) > 0 && s.status != StatusReady {
		p := s.prompt
		snap.Prompt = &p
	}
	if s.correct != nil {
		c := *s.correct
		snap.Correct = &c
	}
	if s.revealed {
		snap.Expected = s.verdict.Expected
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}
