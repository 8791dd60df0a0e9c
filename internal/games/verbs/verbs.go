// Package verbs is the verb conjugation game: give the past, past participle,
// third person or -ing form of a base verb.
package verbs

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/lang"
)

const (
	ID    = "verbs"
	Title = "Verb Conjugation"

	Instructions = "You will see a verb and the form you need: past simple, past participle, " +
		"third person (he/she/it) or the -ing form. Type the conjugated verb. " +
		"Some verbs accept two spellings (learned or learnt); either counts. " +
		"Choose category \"regular\" or \"irregular\" to practise one kind."
)

// Item is one verb asked in one form.
type Item struct {
	Verb content.Verb     `json:"verb"`
	Form content.VerbForm `json:"form"`
}

var fallback = Item{
	Verb: content.Verb{
		Base: "go", Past: "went", Participle: "gone", Third: "goes", Gerund: "going",
		Tags: content.Tags{Difficulty: content.Beginner, Category: "irregular"},
	},
	Form: content.FormPast,
}

var formLabels = map[content.VerbForm]string{
	content.FormPast:       "past simple",
	content.FormParticiple: "past participle",
	content.FormThird:      "third person",
	content.FormGerund:     "-ing form",
}

// Params is the verbs parameters form.
type Params struct {
	game.Params
	// Forms restricts the asked forms; empty means all of them.
	Forms []content.VerbForm `json:"forms,omitempty"`
}

// ParseParams decodes and validates a JSON parameters form.
func ParseParams(raw []byte) (Params, error) {
	var p Params
	if err := game.DecodeParams(raw, &p); err != nil {
		return p, err
	}
	err := p.Params.Prepare()
	extra := &game.ParamsError{}

	var forms []content.VerbForm
	for _, f := range p.Forms {
		f = content.VerbForm(strings.ToLower(strings.TrimSpace(string(f))))
		if _, ok := formLabels[f]; !ok {
			extra.Add("form %q is not one of past, participle, third, gerund", f)
			continue
		}
		if !slices.Contains(forms, f) {
			forms = append(forms, f)
		}
	}
	if len(forms) == 0 {
		forms = slices.Clone(content.VerbForms)
	}
	p.Forms = forms
	return p, game.Merge(err, extra)
}

type Rules struct {
	lib   *content.Library
	forms []content.VerbForm
}

func NewRules(lib *content.Library, p Params) *Rules {
	forms := p.Forms
	if len(forms) == 0 {
		forms = content.VerbForms
	}
	return &Rules{lib: lib, forms: forms}
}

// New builds a ready session.
func New(lib *content.Library, p Params, opts game.Options) *game.Session[Item] {
	return game.New[Item](NewRules(lib, p), p.Params, opts)
}

func (r *Rules) Name() string { return ID }

// hintTimeCost is the seconds a hint takes off a timed session's clock.
const hintTimeCost = 5

func (r *Rules) Policy() game.Policy {
	p := game.StandardPolicy(3, 3)
	p.HintTimeCost = hintTimeCost
	return p
}

// Fallback asks the first allowed form of "go".
func (r *Rules) Fallback() Item {
	it := fallback
	it.Form = r.forms[0]
	return it
}

// Items pairs every matching verb with one of the allowed forms.
func (r *Rules) Items(p game.Params, rng *rand.Rand) []Item {
	verbs := content.Filter(r.lib.Verbs, p.Difficulty, p.Category)
	out := make([]Item, 0, len(verbs))
	for _, v := range verbs {
		out = append(out, Item{Verb: v, Form: r.forms[rng.IntN(len(r.forms))]})
	}
	return out
}

func (r *Rules) Prompt(it Item, _ []Item, _ *rand.Rand) game.Prompt {
	return game.Prompt{
		Text:  fmt.Sprintf("%s → %s", it.Verb.Base, formLabels[it.Form]),
		Speak: it.Verb.Base,
	}
}

func (r *Rules) Expected(it Item) string {
	return strings.Join(it.Verb.Form(it.Form), " / ")
}

func (r *Rules) Check(it Item, ans game.Answer) game.Verdict {
	for _, alt := range it.Verb.Form(it.Form) {
		if lang.Equal(ans.Text, alt) {
			return game.Verdict{Correct: true, Message: "Correct!"}
		}
	}
	// Right verb, wrong form.
	for _, f := range content.VerbForms {
		if f == it.Form {
			continue
		}
		for _, alt := range it.Verb.Form(f) {
			if lang.Equal(ans.Text, alt) {
				return game.Verdict{Message: fmt.Sprintf("That is the %s. We need the %s.", formLabels[f], formLabels[it.Form])}
			}
		}
	}
	return game.Verdict{Message: "Not quite, try again."}
}

func (r *Rules) Score(_ Item, _ game.Verdict, a game.Attempt) int {
	return max(15-5*a.Attempts-5*a.Hints, 5)
}

func (r *Rules) Hint(it Item, level int) string {
	forms := it.Verb.Form(it.Form)
	canonical := it.Verb.Base
	if len(forms) > 0 {
		canonical = forms[0]
	}
	return lang.MaskHint(canonical, level, formRule(it))
}

func formRule(it Item) string {
	switch it.Form {
	case content.FormThird:
		return "Add -s; use -es after s, sh, ch, x and o; a consonant + y becomes -ies."
	case content.FormGerund:
		return "Add -ing; drop a silent e and double a final consonant after a short stressed vowel."
	}
	if it.Verb.Regular() {
		return "Regular verb: add -ed (double the final consonant or change y to i when needed)."
	}
	return "Irregular verb: this form has to be learned by heart."
}
