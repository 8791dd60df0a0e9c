// Package sentences is the sentence builder: put shuffled words back in order.
package sentences

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "sentences"
	Title = "Sentence Builder"

	Instructions = "The words of a sentence are shuffled. Put them back in the right order and submit. " +
		"Some sentences have more than one correct order. Quick answers earn a speed bonus " +
		"of up to thirty points; every hint costs twenty and every wrong try ten."

	speedWindow = 30 * time.Second
)

var fallback = content.Sentence{
	Text: "I like apples.",
	Rule: "Subject + verb + object.",
	Tags: content.Tags{Difficulty: content.Beginner, Category: "present"},
}

// Params is the sentences parameters form; it has no fields of its own.
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
func New(lib *content.Library, p Params, opts game.Options) *game.Session[content.Sentence] {
	return game.New[content.Sentence](NewRules(lib), p.Params, opts)
}

func (r *Rules) Name() string                       { return ID }
func (r *Rules) Policy() game.Policy                { return game.StandardPolicy(3, 3) }
func (r *Rules) Fallback() content.Sentence         { return fallback }
func (r *Rules) Expected(s content.Sentence) string { return s.Text }

func (r *Rules) Items(p game.Params, _ *rand.Rand) []content.Sentence {
	return content.Filter(r.lib.Sentences, p.Difficulty, p.Category)
}

// Prompt shuffles the words, avoiding any accepted order when another one exists.
func (r *Rules) Prompt(s content.Sentence, _ []content.Sentence, rng *rand.Rand) game.Prompt {
	words := s.Words()
	tokens := content.Shuffle(words, rng)
	for i := 0; i < 8 && lang.MatchesOrder(tokens, words, s.AlternativeOrders()); i++ {
		tokens = content.Shuffle(words, rng)
	}
	return game.Prompt{Text: "Put the words in order", Tokens: tokens}
}

// Check compares the submitted order word by word and reports which
// positions already match the canonical sentence.
func (r *Rules) Check(s content.Sentence, ans game.Answer) game.Verdict {
	got := ans.Tokens
	if len(got) == 0 {
		got = strings.Fields(ans.Text)
	}
	want := s.Words()
	if lang.MatchesOrder(got, want, s.AlternativeOrders()) {
		return game.Verdict{Correct: true, Message: "Perfect sentence!"}
	}

	placed := make([]bool, len(want))
	for i := range want {
		placed[i] = i < len(got) && lang.Equal(got[i], want[i])
	}
	msg := "Some words are out of place."
	if len(got) != len(want) {
		msg = "Use every word exactly once."
	}
	return game.Verdict{Message: msg, Detail: map[string]any{"placed": placed}}
}

func (r *Rules) Score(_ content.Sentence, _ game.Verdict, a game.Attempt) int {
	bonus := max(0, int((speedWindow-a.Latency)/time.Second))
	return max(100-20*a.Hints-10*a.Attempts+bonus, 0)
}

// Hint reveals the opening words, then the grammar rule.
func (r *Rules) Hint(s content.Sentence, level int) string {
	words := s.Words()
	switch {
	case level <= 0:
		return ""
	case level == 1:
		return words[0] + " …"
	case level == 2 || s.Rule == "":
		n := (len(words) + 1) / 2
		return strings.Join(words[:n], " ") + " …"
	default:
		return s.Rule
	}
}
