package game

import (
	"math/rand/v2"
	"time"
)

// Feedback delays before the engine moves to the next item.
const (
	CorrectDelay   = time.Second
	IncorrectDelay = 2500 * time.Millisecond
)

// Rules is the per-game strategy plugged into the generic session engine.
// Implementations are stateless apart from read-only content and parsed params.
type Rules[T any] interface {
	// Name is the game identifier ("numbers", "spelling", ...).
	Name() string
	Policy() Policy
	// Items returns the candidate items for a session; the engine shuffles and slices them.
	Items(p Params, rng *rand.Rand) []T
	// Fallback is the single item used when Items comes back empty.
	Fallback() T
	Prompt(item T, pool []T, rng *rand.Rand) Prompt
	// Expected is the canonical answer, revealed on success or when attempts run out.
	Expected(item T) string
	Check(item T, ans Answer) Verdict
	// Score returns the points for a correct answer; negative results are clamped to 0.
	Score(item T, v Verdict, a Attempt) int
	Hint(item T, level int) string
}

// StandardPolicy is the policy most games use: the given attempt and hint
// limits with the usual feedback delays.
func StandardPolicy(maxAttempts, maxHints int) Policy {
	return Policy{
		MaxAttempts:    maxAttempts,
		MaxHints:       maxHints,
		CorrectDelay:   CorrectDelay,
		IncorrectDelay: IncorrectDelay,
	}
}
