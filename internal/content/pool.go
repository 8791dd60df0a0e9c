package content

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sort"
)

// Filter keeps the records matching difficulty and category; an empty tag matches anything.
func Filter[T Tagged](items []T, d Difficulty, category string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		t := it.Tagged()
		if d != "" && t.Difficulty != d {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Shuffle returns a shuffled copy of items.
func Shuffle[T any](items []T, rng *rand.Rand) []T {
	out := append([]T(nil), items...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Categories lists the distinct non-empty categories, sorted.
func Categories[T Tagged](items []T) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		c := it.Tagged().Category
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// NewRand returns a PCG generator for seed; seed 0 draws a fresh seed from crypto/rand.
// The same non-zero seed always reproduces the same pool.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = RandomSeed()
	}
	return rand.New(rand.NewPCG(seed, 0))
}

// RandomSeed returns a non-zero seed from crypto/rand.
func RandomSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64() | 1
	}
	return binary.BigEndian.Uint64(buf[:]) | 1
}
