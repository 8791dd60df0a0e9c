package lang

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Seven", "seven"},
		{"  twenty  -  one ", "twenty-one"},
		{"One Hundred   AND five.", "one hundred and five"},
		{"Don’t stop!", "don't stop"},
		{"café", "cafe"},
		{"rock & roll", "rock and roll"},
		{"Hello,world", "hello world"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "in=%q", tt.in)
	}
}

// idempotenceSeeds are inputs whose casing or marks have tripped folding before.
var idempotenceSeeds = []string{
	"Seven", " twenty - one ", "İstanbul", "naïve  Café", "Straße", "a--b", "- five",
	"I like apples.", "¿Qué?", "rock&roll", "ONE\tHUNDRED\nAND FIVE", "'quoted'", "x - - y",
	"Ꮁb", "ꮁb", "ᏣᎳᎩ", "ΟΔΟΣ.", "όδος-σ", "ǅemal", "ﬃ", "Ǆ", "K",
}

// corpusRanges are the scripts random inputs are drawn from.
var corpusRanges = [][2]rune{
	{0x20, 0x7e},     // ASCII
	{0xa0, 0x17f},    // Latin-1, Latin Extended-A
	{0x1c4, 0x1cc},   // digraphs with title case
	{0x300, 0x36f},   // combining marks
	{0x370, 0x3ff},   // Greek
	{0x400, 0x4ff},   // Cyrillic
	{0x13a0, 0x13ff}, // Cherokee
	{0xab70, 0xabbf}, // Cherokee supplement
	{0x1e00, 0x1eff}, // Latin Extended Additional
	{0x2010, 0x2027}, // punctuation
	{0xfb00, 0xfb06}, // ligatures
}

func randomText(r *rand.Rand) string {
	n := 1 + r.IntN(12)
	out := make([]rune, n)
	for i := range out {
		rg := corpusRanges[r.IntN(len(corpusRanges))]
		out[i] = rg[0] + rune(r.IntN(int(rg[1]-rg[0]+1)))
	}
	return string(out)
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range idempotenceSeeds {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "in=%q", s)
	}

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20000; i++ {
		s := randomText(r)
		once := Normalize(s)
		if !assert.Equal(t, once, Normalize(once), "in=%q", s) {
			return
		}
	}
}

func TestNormalize_Cherokee(t *testing.T) {
	assert.Equal(t, Normalize("Ꮁb"), Normalize("ꮁb"))
	assert.Equal(t, Normalize("ꮁb"), Normalize(Normalize("Ꮁb")))
}

func FuzzNormalize(f *testing.F) {
	for _, s := range idempotenceSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize(%q) = %q, then %q", s, once, twice)
		}
	})
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Happy", "happy "))
	assert.False(t, Equal("hapy", "happy"))
	assert.True(t, Equal("twenty one", "Twenty one"))
	assert.False(t, Equal("twenty one", "twenty-one"))
}
