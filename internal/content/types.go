// internal/content/types.go
//
// Record types for the static content tables.
// Every record carries Tags (difficulty + category) used to build item pools.
// Tables are read-only once loaded; games copy what they need into their pools.

package content

import (
	"fmt"
	"strings"
)

// Difficulty is the level a record (or a session) targets.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists the levels in increasing order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// ParseDifficulty accepts a known level (case-insensitive) or "" meaning any.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" || d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Tags are the filter keys shared by every record.
type Tags struct {
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
	Category   string     `yaml:"category" json:"category"`
}

// Tagged is implemented by every record type through the embedded Tags.
type Tagged interface {
	Tagged() Tags
}

func (t Tags) Tagged() Tags { return t }

// Word is a spelling-bee entry.
type Word struct {
	Text       string `yaml:"text" json:"text"`
	Definition string `yaml:"definition" json:"definition"`
	Example    string `yaml:"example" json:"example"`
	Tip        string `yaml:"tip,omitempty" json:"tip,omitempty"`
	Tags       `yaml:",inline"`
}

// Pair is a word and the meaning it must be matched with.
type Pair struct {
	Word    string `yaml:"word" json:"word"`
	Meaning string `yaml:"meaning" json:"meaning"`
	Tags    `yaml:",inline"`
}

// VerbForm names one conjugated form of a verb.
type VerbForm string

const (
	FormPast       VerbForm = "past"
	FormParticiple VerbForm = "participle"
	FormThird      VerbForm = "third"
	FormGerund     VerbForm = "gerund"
)

// VerbForms lists every form in table order.
var VerbForms = []VerbForm{FormPast, FormParticiple, FormThird, FormGerund}

// Verb is a conjugation table row. Forms may list accepted spellings
// separated by "/" (learned/learnt).
type Verb struct {
	Base       string `yaml:"base" json:"base"`
	Past       string `yaml:"past" json:"past"`
	Participle string `yaml:"participle" json:"participle"`
	Third      string `yaml:"third" json:"third"`
	Gerund     string `yaml:"gerund" json:"gerund"`
	Tags       `yaml:",inline"`
}

// Form returns the accepted spellings of form f, first one canonical.
func (v Verb) Form(f VerbForm) []string {
	var raw string
	switch f {
	case FormPast:
		raw = v.Past
	case FormParticiple:
		raw = v.Participle
	case FormThird:
		raw = v.Third
	case FormGerund:
		raw = v.Gerund
	}
	var out []string
	for _, s := range strings.Split(raw, "/") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Regular reports whether the verb is tagged as regular.
func (v Verb) Regular() bool { return v.Category == "regular" }

// Sentence is a sentence-builder entry. Alternatives are other valid
// word orders, written as full sentences.
type Sentence struct {
	Text         string   `yaml:"text" json:"text"`
	Alternatives []string `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Rule         string   `yaml:"rule,omitempty" json:"rule,omitempty"`
	Tags         `yaml:",inline"`
}

// Words is the canonical word order.
func (s Sentence) Words() []string { return strings.Fields(s.Text) }

// AlternativeOrders splits every alternative into words.
func (s Sentence) AlternativeOrders() [][]string {
	out := make([][]string, 0, len(s.Alternatives))
	for _, a := range s.Alternatives {
		out = append(out, strings.Fields(a))
	}
	return out
}

// Twister is a tongue twister and the sound it drills.
type Twister struct {
	Text  string `yaml:"text" json:"text"`
	Focus string `yaml:"focus" json:"focus"`
	Tags  `yaml:",inline"`
}

// DrawObject is something to draw and the colors it must use.
type DrawObject struct {
	Name   string   `yaml:"name" json:"name"`
	Colors []string `yaml:"colors" json:"colors"`
	Tags   `yaml:",inline"`
}

// NumberRange bounds the numbers drawn for a difficulty (inclusive).
type NumberRange struct {
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
	Min        int        `yaml:"min" json:"min"`
	Max        int        `yaml:"max" json:"max"`
}
