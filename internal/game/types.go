// internal/game/types.go
//
// Core type definitions for the session engine.
// Defines:
//   - Status: the session state machine (ready → playing ⇄ paused → checking → feedback → completed).
//   - Answer / Verdict / Attempt: what a player submits, how it was judged, what scoring sees.
//   - Prompt: what the UI presents for the current item.
//   - Snapshot / Summary: read-only views for the gameplay and score screens.

package game

import (
	"errors"
	"time"
)

// Status is the coarse state of a session.
type Status string

const (
	StatusReady     Status = "ready"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusChecking  Status = "checking"
	StatusFeedback  Status = "feedback"
	StatusCompleted Status = "completed"
)

// Reason records why a session completed.
type Reason string

const (
	ReasonExhausted Reason = "exhausted" // every item in the pool was played
	ReasonTimeout   Reason = "timeout"   // the time limit ran out
	ReasonEnded     Reason = "ended"     // the player ended the session
)

var (
	ErrNotPlaying     = errors.New("session is not playing")
	ErrNotPaused      = errors.New("session is not paused")
	ErrNotStartable   = errors.New("session cannot be started from its current state")
	ErrHintsExhausted = errors.New("no more hints for this item")
	ErrDisposed       = errors.New("session disposed")
)

// Answer is a player submission. Games read the fields they understand:
// Text for typed or spoken answers, Tokens for ordered words, Image/Colors for drawings.
type Answer struct {
	Text   string   `json:"text,omitempty"`
	Tokens []string `json:"tokens,omitempty"`
	Image  string   `json:"image,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

// Verdict is the result of judging one submission.
type Verdict struct {
	Correct    bool    `json:"correct"`
	Expected   string  `json:"-"`
	Similarity float64 `json:"similarity,omitempty"`
	Message    string  `json:"message,omitempty"`
	Detail     any     `json:"detail,omitempty"`
}

// Attempt is the scoring context of a correct answer.
type Attempt struct {
	Attempts int           // failed submissions before this one
	Hints    int           // hint levels used on the item
	Latency  time.Duration // time since the item was presented (excluding pauses)
}

// Prompt is what the UI shows (and may speak) for the current item.
type Prompt struct {
	Text    string   `json:"text"`
	Speak   string   `json:"speak,omitempty"`
	Options []string `json:"options,omitempty"`
	Tokens  []string `json:"tokens,omitempty"`
	Colors  []string `json:"colors,omitempty"`
}

// Policy holds the fixed per-game tuning of the engine.
type Policy struct {
	MaxAttempts    int
	MaxHints       int
	CorrectDelay   time.Duration
	IncorrectDelay time.Duration
	// HintTimeCost is taken off the remaining time per hint on timed sessions.
	HintTimeCost int
	// TimePenalty is subtracted from the score once, at the final scoring step.
	TimePenalty func(elapsed time.Duration) int
}

// ItemResult records how one pool item was played.
type ItemResult struct {
	Index    int    `json:"index"`
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
	Correct  bool   `json:"correct"`
	Skipped  bool   `json:"skipped,omitempty"`
	Attempts int    `json:"attempts"`
	Hints    int    `json:"hints"`
	Points   int    `json:"points"`
	TimeMs   int64  `json:"timeMs"`
}

// Summary is the aggregated score screen of a completed session.
type Summary struct {
	SessionID  string       `json:"sessionId"`
	Game       string       `json:"game"`
	Params     Params       `json:"params"`
	Score      int          `json:"score"`
	FinalScore int          `json:"finalScore"`
	Correct    int          `json:"correct"`
	Incorrect  int          `json:"incorrect"`
	Skipped    int          `json:"skipped"`
	Hints      int          `json:"hints"`
	Accuracy   float64      `json:"accuracy"`
	ElapsedMs  int64        `json:"elapsedMs"`
	Reason     Reason       `json:"reason"`
	Items      []ItemResult `json:"items"`
}

// Snapshot is the read-only gameplay view of a session.
type Snapshot struct {
	ID          string   `json:"id"`
	Game        string   `json:"game"`
	Status      Status   `json:"status"`
	Index       int      `json:"index"`
	Total       int      `json:"total"`
	Prompt      *Prompt  `json:"prompt,omitempty"`
	Input       string   `json:"input,omitempty"`
	Correct     *bool    `json:"correct"`
	Expected    string   `json:"expected,omitempty"`
	Message     string   `json:"message,omitempty"`
	Detail      any      `json:"detail,omitempty"`
	Score       int      `json:"score"`
	Attempts    int      `json:"attempts"`
	MaxAttempts int      `json:"maxAttempts"`
	HintLevel   int      `json:"hintLevel"`
	Hint        string   `json:"hint,omitempty"`
	Remaining   int      `json:"remaining"`
	TimeLimit   int      `json:"timeLimit"`
	Summary     *Summary `json:"summary,omitempty"`
}
