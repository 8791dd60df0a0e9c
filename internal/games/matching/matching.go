// Package matching is the word match game: pick the meaning of a word from a
// short list of options.
package matching

import (
	"math/rand/v2"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "matching"
	Title = "Word Match"

	Instructions = "Each round shows an English word and a few possible meanings. " +
		"Choose the meaning that matches the word. You have two tries; " +
		"a first-try match is worth ten points, a second-try match five."

	DefaultOptions = 3
	MaxOptions     = 3
)

var fallback = content.Pair{
	Word:    "cat",
	Meaning: "a small furry pet that says meow",
	Tags:    content.Tags{Difficulty: content.Beginner, Category: "animals"},
}

// Params is the matching parameters form.
type Params struct {
	game.Params
	// Options is the number of distractor meanings shown next to the right one.
	Options int `json:"options"`
}

// ParseParams decodes and validates a JSON parameters form.
func ParseParams(raw []byte) (Params, error) {
	var p Params
	if err := game.DecodeParams(raw, &p); err != nil {
		return p, err
	}
	err := p.Params.Prepare()
	extra := &game.ParamsError{}
	if p.Options == 0 {
		p.Options = DefaultOptions
	}
	if p.Options < 1 || p.Options > MaxOptions {
		extra.Add("options must be in [1,%d]", MaxOptions)
	}
	return p, game.Merge(err, extra)
}

type Rules struct {
	lib     *content.Library
	options int
}

func NewRules(lib *content.Library, p Params) *Rules {
	return &Rules{lib: lib, options: p.Options}
}

// New builds a ready session.
func New(lib *content.Library, p Params, opts game.Options) *game.Session[content.Pair] {
	return game.New[content.Pair](NewRules(lib, p), p.Params, opts)
}

func (r *Rules) Name() string                   { return ID }
func (r *Rules) Policy() game.Policy            { return game.StandardPolicy(2, 1) }
func (r *Rules) Fallback() content.Pair         { return fallback }
func (r *Rules) Expected(p content.Pair) string { return p.Meaning }

func (r *Rules) Items(p game.Params, _ *rand.Rand) []content.Pair {
	return content.Filter(r.lib.Pairs, p.Difficulty, p.Category)
}

// Prompt offers the meaning plus distractors, taken from the session pool
// first and topped up from the whole table.
func (r *Rules) Prompt(item content.Pair, pool []content.Pair, rng *rand.Rand) game.Prompt {
	seen := map[string]bool{lang.Normalize(item.Meaning): true}
	options := []string{item.Meaning}
	add := func(candidates []content.Pair) {
		for _, c := range content.Shuffle(candidates, rng) {
			if len(options) > r.options {
				return
			}
			key := lang.Normalize(c.Meaning)
			if seen[key] {
				continue
			}
			seen[key] = true
			options = append(options, c.Meaning)
		}
	}
	add(pool)
	add(r.lib.Pairs)
	add([]content.Pair{fallback})

	options = content.Shuffle(options, rng)
	return game.Prompt{Text: item.Word, Speak: item.Word, Options: options}
}

func (r *Rules) Check(item content.Pair, ans game.Answer) game.Verdict {
	if lang.Equal(ans.Text, item.Meaning) {
		return game.Verdict{Correct: true, Message: "It's a match!"}
	}
	return game.Verdict{Message: "That's not it."}
}

func (r *Rules) Score(_ content.Pair, _ game.Verdict, a game.Attempt) int {
	return max(10-5*a.Attempts, 0)
}

// Hint shows the first letter of every word of the meaning.
func (r *Rules) Hint(item content.Pair, level int) string {
	return lang.MaskHint(item.Meaning, level, "")
}
