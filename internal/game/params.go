package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
)

const (
	DefaultCount   = 10
	MaxCount       = 50
	MaxTimeLimit   = 3600 // seconds
	MaxAttemptsCap = 10
	maxCategoryLen = 64
)

// Params is the parameters form shared by every game.
type Params struct {
	Difficulty  content.Difficulty `json:"difficulty"`
	Category    string             `json:"category,omitempty"`
	Count       int                `json:"count"`
	TimeLimit   int                `json:"timeLimit"`             // seconds, 0 = untimed
	MaxAttempts int                `json:"maxAttempts,omitempty"` // 0 = game default
	Seed        uint64             `json:"seed,omitempty"`        // 0 = random
}

// Prepare normalizes p in place, applies defaults and reports every invalid field.
func (p *Params) Prepare() error {
	var errs []string

	d, err := content.ParseDifficulty(string(p.Difficulty))
	if err != nil {
		errs = append(errs, err.Error())
	}
	p.Difficulty = d
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if len(p.Category) > maxCategoryLen {
		errs = append(errs, "category is too long")
	}

	if p.Count == 0 {
		p.Count = DefaultCount
	}
	if p.Count < 1 || p.Count > MaxCount {
		errs = append(errs, fmt.Sprintf("count must be in [1,%d]", MaxCount))
	}
	if p.TimeLimit < 0 || p.TimeLimit > MaxTimeLimit {
		errs = append(errs, fmt.Sprintf("timeLimit must be in [0,%d] seconds", MaxTimeLimit))
	}
	if p.MaxAttempts < 0 || p.MaxAttempts > MaxAttemptsCap {
		errs = append(errs, fmt.Sprintf("maxAttempts must be in [0,%d]", MaxAttemptsCap))
	}

	if len(errs) > 0 {
		return &ParamsError{Problems: errs}
	}
	return nil
}

// ParamsError lists every problem found in a parameters form.
type ParamsError struct {
	Problems []string
}

func (e *ParamsError) Error() string {
	return "invalid parameters: " + strings.Join(e.Problems, "; ")
}

// Add appends a problem; games use it for their own fields.
func (e *ParamsError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Merge folds err (a *ParamsError or nil) and extra into one error, nil when clean.
func Merge(err error, extra *ParamsError) error {
	out := &ParamsError{}
	if pe, ok := err.(*ParamsError); ok && pe != nil {
		out.Problems = append(out.Problems, pe.Problems...)
	} else if err != nil {
		out.Problems = append(out.Problems, err.Error())
	}
	if extra != nil {
		out.Problems = append(out.Problems, extra.Problems...)
	}
	if len(out.Problems) == 0 {
		return nil
	}
	return out
}

// DecodeParams strictly decodes a JSON parameters form into dst.
// An empty body or null leaves dst untouched so defaults apply.
func DecodeParams(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ParamsError{Problems: []string{"malformed parameters: " + err.Error()}}
	}
	return nil
}
