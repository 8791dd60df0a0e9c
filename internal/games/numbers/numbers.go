// Package numbers is the number race / dictation game: write a number in
// words, or type the digits of a number read aloud.
package numbers

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "numbers"
	Title = "Number Race"

	Instructions = "A number appears on screen (or is read aloud in dictation mode). " +
		"Write it in English words, or type its digits when you only hear it. " +
		"Use hyphens between tens and units (forty-two) and \"and\" after hundreds (one hundred and five). " +
		"Every wrong try and every hint lowers the points for that number."

	fallback = 7
	rule     = "Join tens and units with a hyphen (forty-two) and put \"and\" after hundred (three hundred and twelve)."
)

// Direction selects what the player writes.
type Direction string

const (
	ToWords  Direction = "to-words"  // see digits, write words
	ToDigits Direction = "to-digits" // hear words, type digits
)

// Params is the numbers parameters form.
type Params struct {
	game.Params
	Direction Direction `json:"direction"`
}

// ParseParams decodes and validates a JSON parameters form.
func ParseParams(raw []byte) (Params, error) {
	var p Params
	if err := game.DecodeParams(raw, &p); err != nil {
		return p, err
	}
	err := p.Params.Prepare()
	extra := &game.ParamsError{}
	p.Direction = Direction(strings.ToLower(strings.TrimSpace(string(p.Direction))))
	switch p.Direction {
	case "":
		p.Direction = ToWords
	case ToWords, ToDigits:
	default:
		extra.Add("direction %q must be %q or %q", p.Direction, ToWords, ToDigits)
	}
	return p, game.Merge(err, extra)
}

// Rules implements game.Rules for numbers.
type Rules struct {
	lib       *content.Library
	direction Direction
}

func NewRules(lib *content.Library, p Params) *Rules {
	return &Rules{lib: lib, direction: p.Direction}
}

// New builds a ready session.
func New(lib *content.Library, p Params, opts game.Options) *game.Session[int] {
	return game.New[int](NewRules(lib, p), p.Params, opts)
}

func (r *Rules) Name() string  { return ID }
func (r *Rules) Fallback() int { return fallback }

// hintTimeCost is the seconds a hint takes off a timed session's clock.
const hintTimeCost = 5

func (r *Rules) Policy() game.Policy {
	p := game.StandardPolicy(3, 3)
	p.HintTimeCost = hintTimeCost
	return p
}

// Items draws distinct numbers from the difficulty's range; category does not apply.
func (r *Rules) Items(p game.Params, rng *rand.Rand) []int {
	rg := r.lib.NumberRange(p.Difficulty)
	span := rg.Max - rg.Min + 1
	if span <= 0 {
		return nil
	}
	if span <= p.Count {
		out := make([]int, 0, span)
		for n := rg.Min; n <= rg.Max; n++ {
			out = append(out, n)
		}
		return out
	}
	seen := make(map[int]struct{}, p.Count)
	out := make([]int, 0, p.Count)
	for len(out) < p.Count {
		n := rg.Min + rng.IntN(span)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (r *Rules) Prompt(n int, _ []int, _ *rand.Rand) game.Prompt {
	if r.direction == ToDigits {
		return game.Prompt{Text: "Type the number you hear", Speak: lang.NumberToWords(n)}
	}
	return game.Prompt{Text: strconv.Itoa(n), Speak: lang.NumberToWords(n)}
}

func (r *Rules) Expected(n int) string {
	if r.direction == ToDigits {
		return strconv.Itoa(n)
	}
	return lang.NumberToWords(n)
}

var digitNoise = strings.NewReplacer(",", "", " ", "", "_", "")

func (r *Rules) Check(n int, ans game.Answer) game.Verdict {
	if r.direction == ToDigits {
		got, err := strconv.Atoi(digitNoise.Replace(strings.TrimSpace(ans.Text)))
		if err != nil {
			return game.Verdict{Message: "Type the number using digits."}
		}
		if got == n {
			return game.Verdict{Correct: true, Message: "Correct!"}
		}
		return game.Verdict{Message: "Not quite, listen again."}
	}

	want := lang.NumberToWords(n)
	if lang.Equal(ans.Text, want) {
		return game.Verdict{Correct: true, Message: "Correct!"}
	}
	if got, err := lang.WordsToNumber(ans.Text); err == nil && got == n {
		return game.Verdict{Message: "Right number, check the hyphens and \"and\"."}
	}
	return game.Verdict{Message: fmt.Sprintf("Not quite, try writing %d again.", n)}
}

func (r *Rules) Score(_ int, _ game.Verdict, a game.Attempt) int {
	return max(max(30-10*a.Attempts, 10)-5*a.Hints, 0)
}

func (r *Rules) Hint(n int, level int) string {
	if r.direction == ToDigits {
		return lang.MaskHint(strconv.Itoa(n), level, fmt.Sprintf("It has %d digits.", len(strconv.Itoa(n))))
	}
	return lang.MaskHint(lang.NumberToWords(n), level, rule)
}
