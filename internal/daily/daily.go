// Package daily implements the daily challenge: every player gets the same
// item pool for a game on a given UTC day, and may submit one result for it.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDateKey validates a YYYY-MM-DD key.
func ParseDateKey(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t.Format(dateLayout), nil
}

// Seed returns a deterministic, non-zero pool seed for game on date using
// HMAC(salt, game|YYYY-MM-DD).
func Seed(date time.Time, salt, game string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(game + "|" + DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes; zero would mean "random" to the engine
	n := binary.BigEndian.Uint64(sum[:8])
	if n == 0 {
		n = 1
	}
	return n
}
