// Package spelling is the spelling bee: hear a word and its definition, type it.
package spelling

import (
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "spelling"
	Title = "Spelling Bee"

	Instructions = "Listen to the word, read its definition and example, then type how it is spelled. " +
		"You get three tries per word; the answer is only shown once they are used up. " +
		"Hints reveal letters and then a spelling tip. A small time penalty applies at the end: " +
		"one point for every thirty seconds played."
)

var fallback = content.Word{
	Text:       "happy",
	Definition: "feeling or showing pleasure",
	Example:    "The children were happy to see the snow.",
	Tags:       content.Tags{Difficulty: content.Beginner, Category: "feelings"},
}

// Params is the spelling parameters form; it has no fields of its own.
type Params struct {
	game.Params
}

// ParseParams decodes and validates a JSON parameters form.
func ParseParams(raw []byte) (Params, error) {
	var p Params
	if err := game.DecodeParams(raw, &p); err != nil {
		return p, err
	}
	return p, p.Params.Prepare()
}

type Rules struct {
	lib *content.Library
}

func NewRules(lib *content.Library) *Rules { return &Rules{lib: lib} }

// New builds a ready session.
func New(lib *content.Library, p Params, opts game.Options) *game.Session[content.Word] {
	return game.New[content.Word](NewRules(lib), p.Params, opts)
}

func (r *Rules) Name() string                   { return ID }
func (r *Rules) Fallback() content.Word         { return fallback }
func (r *Rules) Expected(w content.Word) string { return w.Text }

// hintTimeCost is the seconds a hint takes off a timed session's clock.
const hintTimeCost = 5

func (r *Rules) Policy() game.Policy {
	p := game.StandardPolicy(3, 3)
	p.HintTimeCost = hintTimeCost
	p.TimePenalty = func(elapsed time.Duration) int { return int(elapsed / (30 * time.Second)) }
	return p
}

func (r *Rules) Items(p game.Params, _ *rand.Rand) []content.Word {
	return content.Filter(r.lib.Words, p.Difficulty, p.Category)
}

func (r *Rules) Prompt(w content.Word, _ []content.Word, _ *rand.Rand) game.Prompt {
	return game.Prompt{Text: conceal(w.Definition, w.Text) + "\n" + conceal(w.Example, w.Text), Speak: w.Text}
}

func (r *Rules) Check(w content.Word, ans game.Answer) game.Verdict {
	if lang.Equal(ans.Text, w.Text) {
		return game.Verdict{Correct: true, Message: "Well spelled!"}
	}
	if lang.Normalize(ans.Text) == "" {
		return game.Verdict{Message: "Type the word first."}
	}
	return game.Verdict{Message: "Not quite, try again."}
}

func (r *Rules) Score(_ content.Word, _ game.Verdict, a game.Attempt) int {
	return max(20-5*a.Attempts-5*a.Hints, 5)
}

func (r *Rules) Hint(w content.Word, level int) string {
	tip := w.Tip
	if tip == "" {
		tip = w.Example
	}
	return lang.MaskHint(w.Text, level, conceal(tip, w.Text))
}

const blank = "____"

// conceal blanks every word of text that contains word, in any case
// ("Apples" and "unhappy" included), so the spelling stays hidden.
func conceal(text, word string) string {
	if word == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)[\p{L}'-]*` + regexp.QuoteMeta(word) + `[\p{L}'-]*`)
	return re.ReplaceAllString(text, blank)
}
