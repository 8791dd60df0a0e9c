// Package twisters is the tongue twister game: say the twister and get scored
// on how closely the speech transcript matches it.
package twisters

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "twisters"
	Title = "Tongue Twister"

	Instructions = "Read the tongue twister aloud. Your speech is transcribed and compared word by word " +
		"with the text. Reach the match threshold (80% by default) to pass; " +
		"the closer the match, the more points you earn."

	DefaultThreshold = 0.8
)

var fallback = content.Twister{
	Text:  "Red lorry, yellow lorry.",
	Focus: "r and l",
	Tags:  content.Tags{Difficulty: content.Beginner, Category: "consonants"},
}

// Params is the twisters parameters form.
type Params struct {
	game.Params
	// Threshold is the minimum similarity in (0, 1] that counts as a pass.
	Threshold float64 `json:"threshold"`
}

// ParseParams decodes and validates a JSON parameters form.
func ParseParams(raw []byte) (Params, error) {
	var p Params
	if err := game.DecodeParams(raw, &p); err != nil {
		return p, err
	}
	err := p.Params.Prepare()
	extra := &game.ParamsError{}
	if p.Threshold == 0 {
		p.Threshold = DefaultThreshold
	}
	if p.Threshold <= 0 || p.Threshold > 1 || math.IsNaN(p.Threshold) {
		extra.Add("threshold must be in (0,1]")
	}
	return p, game.Merge(err, extra)
}

type Rules struct {
	lib       *content.Library
	threshold float64
}

func NewRules(lib *content.Library, p Params) *Rules {
	th := p.Threshold
	if th == 0 {
		th = DefaultThreshold
	}
	return &Rules{lib: lib, threshold: th}
}

// New builds a ready session.
func New(lib *content.Library, p Params, opts game.Options) *game.Session[content.Twister] {
	return game.New[content.Twister](NewRules(lib, p), p.Params, opts)
}

func (r *Rules) Name() string                      { return ID }
func (r *Rules) Policy() game.Policy               { return game.StandardPolicy(3, 2) }
func (r *Rules) Fallback() content.Twister         { return fallback }
func (r *Rules) Expected(t content.Twister) string { return t.Text }

func (r *Rules) Items(p game.Params, _ *rand.Rand) []content.Twister {
	return content.Filter(r.lib.Twisters, p.Difficulty, p.Category)
}

func (r *Rules) Prompt(t content.Twister, _ []content.Twister, _ *rand.Rand) game.Prompt {
	return game.Prompt{Text: t.Text, Speak: t.Text}
}

func (r *Rules) Check(t content.Twister, ans game.Answer) game.Verdict {
	sim := lang.Similarity(ans.Text, t.Text)
	v := game.Verdict{
		Correct:    sim >= r.threshold,
		Similarity: sim,
		Message:    fmt.Sprintf("%d%% match", int(math.Round(sim*100))),
	}
	if missed := missedWords(ans.Text, t.Text); len(missed) > 0 {
		v.Detail = map[string]any{"missed": missed}
	}
	return v
}

// missedWords lists target words the transcript did not cover, in order.
func missedWords(transcript, target string) []string {
	have := map[string]int{}
	for _, w := range lang.Tokens(transcript) {
		have[w]++
	}
	var out []string
	for _, w := range lang.Tokens(target) {
		if have[w] > 0 {
			have[w]--
			continue
		}
		out = append(out, w)
	}
	return out
}

func (r *Rules) Score(_ content.Twister, v game.Verdict, a game.Attempt) int {
	return max(int(math.Round(100*v.Similarity))-10*a.Attempts, 0)
}

// Hint names the drilled sound, then splits the twister into beats.
func (r *Rules) Hint(t content.Twister, level int) string {
	switch {
	case level <= 0:
		return ""
	case level == 1:
		return "Focus on the " + t.Focus + " sounds."
	default:
		return strings.Join(strings.Fields(t.Text), " / ")
	}
}
