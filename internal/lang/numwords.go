// internal/lang/numwords.go
//
// English number words.
// Responsibilities:
//   - NumberToWords: recursive decomposition into scale groups, hundreds, tens and units.
//   - WordsToNumber: the inverse parser used to check dictation answers.
//
// Conventions (British style, matches the number games' expected answers):
//   - Tens and units are hyphenated: "twenty-one".
//   - "and" joins hundreds to a non-zero remainder: "one hundred and five".
//   - "and" joins a scale group to a remainder below 100: "one thousand and one".

package lang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxWords bounds the magnitude NumberToWords spells out; larger values are returned as digits.
const maxWords = 1_000_000_000_000

var ones = [...]string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = [...]string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var scales = []struct {
	value int
	name  string
}{
	{1_000_000_000, "billion"},
	{1_000_000, "million"},
	{1_000, "thousand"},
}

// NumberToWords spells n in English words.
func NumberToWords(n int) string {
	if n == 0 {
		return ones[0]
	}
	if n <= -maxWords || n >= maxWords {
		return strconv.Itoa(n)
	}
	if n < 0 {
		return "negative " + NumberToWords(-n)
	}
	return strings.Join(compose(n), " ")
}

// compose splits n (> 0) into scale groups and a trailing remainder.
func compose(n int) []string {
	var parts []string
	for _, sc := range scales {
		if n >= sc.value {
			parts = append(parts, below1000(n/sc.value)...)
			parts = append(parts, sc.name)
			n %= sc.value
		}
	}
	if n > 0 {
		if len(parts) > 0 && n < 100 {
			parts = append(parts, "and")
		}
		parts = append(parts, below1000(n)...)
	}
	return parts
}

// below1000 spells 1..999.
func below1000(n int) []string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100], "hundred")
		n %= 100
		if n > 0 {
			parts = append(parts, "and")
		}
	}
	if n > 0 {
		parts = append(parts, below100(n))
	}
	return parts
}

func below100(n int) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + "-" + ones[n%10]
}

var (
	unitValues  = map[string]int{}
	tensValues  = map[string]int{}
	scaleValues = map[string]int{}
)

func init() {
	for i, w := range ones {
		unitValues[w] = i
	}
	for i, w := range tens {
		if w != "" {
			tensValues[w] = i * 10
		}
	}
	for _, sc := range scales {
		scaleValues[sc.name] = sc.value
	}
}

// ErrNotANumber is returned when a phrase holds no number words at all.
var ErrNotANumber = errors.New("lang: not a number phrase")

// WordsToNumber parses English number words back into an integer.
// Tokens are split on spaces and hyphens; "and" is ignored.
func WordsToNumber(s string) (int, error) {
	fields := strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(fields) == 0 {
		return 0, ErrNotANumber
	}
	negative := false
	if fields[0] == "negative" || fields[0] == "minus" {
		negative = true
		fields = fields[1:]
	}

	total, current, seen := 0, 0, false
	for _, f := range fields {
		if f == "and" {
			continue
		}
		if v, ok := unitValues[f]; ok {
			current += v
		} else if v, ok := tensValues[f]; ok {
			current += v
		} else if f == "hundred" {
			if current == 0 {
				current = 1
			}
			current *= 100
		} else if v, ok := scaleValues[f]; ok {
			if current == 0 {
				current = 1
			}
			total += current * v
			current = 0
		} else {
			return 0, fmt.Errorf("lang: unknown number word %q", f)
		}
		seen = true
	}
	if !seen {
		return 0, ErrNotANumber
	}
	n := total + current
	if negative {
		n = -n
	}
	return n, nil
}
