package lang

// Similarity scores how closely a spoken transcript matches a target phrase,
// as the overlap of normalized word multisets divided by the larger word count.
// The result is in [0, 1]; two empty phrases are identical.
func Similarity(transcript, target string) float64 {
	got, want := Tokens(transcript), Tokens(target)
	if len(got) == 0 && len(want) == 0 {
		return 1
	}
	if len(got) == 0 || len(want) == 0 {
		return 0
	}
	remaining := make(map[string]int, len(want))
	for _, w := range want {
		remaining[w]++
	}
	matched := 0
	for _, g := range got {
		if remaining[g] > 0 {
			remaining[g]--
			matched++
		}
	}
	return float64(matched) / float64(max(len(got), len(want)))
}

// MatchesOrder reports whether got equals the canonical word order, or one of
// the pre-enumerated alternative orders, position by position.
func MatchesOrder(got, canonical []string, alternatives [][]string) bool {
	if sameOrder(got, canonical) {
		return true
	}
	for _, alt := range alternatives {
		if sameOrder(got, alt) {
			return true
		}
	}
	return false
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
