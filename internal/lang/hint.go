package lang

import (
	"strings"
	"unicode"
)

// MaxHintLevel is the highest hint level any game offers.
const MaxHintLevel = 3

// MaskHint reveals answer progressively:
//
//	level 1: first letter of each word, the rest masked with '_'
//	level 2: first half (rounded up) of each word's letters
//	level 3: the canned rule text (level 2 mask when rule is empty)
//
// Hyphens and apostrophes are never masked; hyphen-separated parts count as words.
func MaskHint(answer string, level int, rule string) string {
	if level <= 0 {
		return ""
	}
	if level >= MaxHintLevel {
		if rule != "" {
			return rule
		}
		level = 2
	}
	words := strings.Fields(answer)
	for i, w := range words {
		parts := strings.Split(w, "-")
		for j, p := range parts {
			parts[j] = maskWord(p, level)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func maskWord(w string, level int) string {
	rs := []rune(w)
	letters := 0
	for _, r := range rs {
		if isMaskable(r) {
			letters++
		}
	}
	reveal := 1
	if level >= 2 {
		reveal = (letters + 1) / 2
	}
	seen := 0
	for i, r := range rs {
		if !isMaskable(r) {
			continue
		}
		if seen >= reveal {
			rs[i] = '_'
		}
		seen++
	}
	return string(rs)
}

func isMaskable(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Revealed counts the letters and digits of a hint that are not masked.
func Revealed(hint string) int {
	n := 0
	for _, r := range hint {
		if isMaskable(r) {
			n++
		}
	}
	return n
}
