package lang

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	hyphenSpacing = regexp.MustCompile(`\s*-\s*`)
	apostrophes   = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "`", "'")
)

// maxPasses bounds the fold loop in Normalize; real text settles in one or two.
const maxPasses = 4

// Normalize folds an answer into the canonical form used for comparison:
// case-folded, diacritics stripped, punctuation other than hyphens and
// apostrophes dropped, hyphen spacing removed and whitespace collapsed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = apostrophes.Replace(s)
	// Some scripts fold away from their lower case (Cherokee folds to upper)
	// and stripping punctuation can change casing context, so passes repeat
	// until the text stops changing.
	for i := 0; i < maxPasses; i++ {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizePass(s string) string {
	// Fold before stripping marks: folding can introduce combining marks (İ → i̇).
	// Transformers and casers carry state, so each call gets its own.
	s = cases.Lower(language.Und).String(cases.Fold().String(s))
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-':
			b.WriteRune(r)
		case r == '&':
			b.WriteString(" and ")
		default:
			b.WriteByte(' ')
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return hyphenSpacing.ReplaceAllString(out, "-")
}

// Equal reports whether two answers match exactly after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Tokens splits a normalized phrase into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
