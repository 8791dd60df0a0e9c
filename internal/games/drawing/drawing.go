// Package drawing is the draw & color game: draw an object using the colors
// it needs. Submissions are a canvas snapshot (data URL) or an explicit list
// of the colors used.
package drawing

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
)

const (
	ID    = "drawing"
	Title = "Draw & Color"

	Instructions = "Draw the object you are given and color it with the colors listed. " +
		"When you submit, the drawing is checked for every required color. " +
		"You have two tries; each color is worth ten points plus a twenty point finishing bonus."
)

var fallback = content.DrawObject{
	Name:   "apple",
	Colors: []string{"red", "green"},
	Tags:   content.Tags{Difficulty: content.Beginner, Category: "food"},
}

// Params is the drawing parameters form; it has no fields of its own.
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
func New(lib *content.Library, p Params, opts game.Options) *game.Session[content.DrawObject] {
	return game.New[content.DrawObject](NewRules(lib), p.Params, opts)
}

func (r *Rules) Name() string                         { return ID }
func (r *Rules) Policy() game.Policy                  { return game.StandardPolicy(2, 1) }
func (r *Rules) Fallback() content.DrawObject         { return fallback }
func (r *Rules) Expected(o content.DrawObject) string { return strings.Join(o.Colors, ", ") }

func (r *Rules) Items(p game.Params, _ *rand.Rand) []content.DrawObject {
	return content.Filter(r.lib.Objects, p.Difficulty, p.Category)
}

func (r *Rules) Prompt(o content.DrawObject, _ []content.DrawObject, _ *rand.Rand) game.Prompt {
	return game.Prompt{Text: "Draw " + article(o.Name) + " " + o.Name, Speak: o.Name, Colors: o.Colors}
}

func (r *Rules) Check(o content.DrawObject, ans game.Answer) game.Verdict {
	var used []string
	if ans.Image != "" {
		img, err := DecodeDataURL(ans.Image)
		if err != nil {
			return game.Verdict{Message: "The drawing could not be read, try again."}
		}
		used = NewPalette(o.Colors...).UsedColors(img)
	} else {
		for _, c := range ans.Colors {
			used = append(used, strings.ToLower(strings.TrimSpace(c)))
		}
	}

	var missing []string
	for _, c := range o.Colors {
		if !slices.Contains(used, strings.ToLower(c)) {
			missing = append(missing, c)
		}
	}
	detail := map[string]any{"used": used, "missing": missing}
	if len(missing) > 0 {
		return game.Verdict{
			Message: fmt.Sprintf("Your %s still needs %s.", o.Name, strings.Join(missing, " and ")),
			Detail:  detail,
		}
	}
	return game.Verdict{Correct: true, Message: "Beautiful!", Detail: detail}
}

func (r *Rules) Score(o content.DrawObject, _ game.Verdict, a game.Attempt) int {
	return max(10*len(o.Colors)+20-5*a.Attempts, 0)
}

func (r *Rules) Hint(o content.DrawObject, level int) string {
	if level <= 0 {
		return ""
	}
	return "Use " + strings.Join(o.Colors, " and ") + "."
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(strings.ToLower(noun)[0])) {
		return "an"
	}
	return "a"
}
