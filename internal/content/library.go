// internal/content/library.go
//
// Loads the content tables.
//
// Sources (per file, first hit wins):
//   1. CONTENT_DIR/<file>.yaml when a directory is configured and the file exists.
//   2. The embedded defaults from the assets package.
//
// The Library is an explicitly constructed value handed to the games; there is no
// package-level state.

package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Library holds every content table.
type Library struct {
	Words     []Word        `yaml:"words"`
	Pairs     []Pair        `yaml:"pairs"`
	Verbs     []Verb        `yaml:"verbs"`
	Sentences []Sentence    `yaml:"sentences"`
	Twisters  []Twister     `yaml:"twisters"`
	Objects   []DrawObject  `yaml:"objects"`
	Numbers   []NumberRange `yaml:"numbers"`
}

// tableFiles are the YAML files making up a library.
var tableFiles = []string{
	"words.yaml",
	"pairs.yaml",
	"verbs.yaml",
	"sentences.yaml",
	"twisters.yaml",
	"drawing.yaml",
	"numbers.yaml",
}

// Load reads every table from fsys. Missing files leave their table empty.
func Load(fsys fs.FS) (*Library, error) {
	return load(fsys, nil)
}

// LoadWithOverride reads tables from dir where present, falling back to fallback.
func LoadWithOverride(dir string, fallback fs.FS) (*Library, error) {
	if dir == "" {
		return Load(fallback)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	return load(os.DirFS(dir), fallback)
}

func load(primary, fallback fs.FS) (*Library, error) {
	lib := &Library{}
	for _, name := range tableFiles {
		b, src, err := readTable(primary, fallback, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if b == nil {
			continue
		}
		// Each file holds one top-level key; decoding into the same struct merges them.
		if err := yaml.Unmarshal(b, lib); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		log.Debug().Str("table", name).Str("source", src).Msg("content table loaded")
	}
	return lib, nil
}

// readTable returns the file bytes and which source served them; nil bytes when absent.
func readTable(primary, fallback fs.FS, name string) ([]byte, string, error) {
	b, err := fs.ReadFile(primary, name)
	if err == nil {
		return b, "primary", nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}
	if fallback == nil {
		return nil, "", nil
	}
	b, err = fs.ReadFile(fallback, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	return b, "embedded", err
}

// Validate checks every table and reports all problems at once.
func (l *Library) Validate() error {
	var errs []string
	tag := func(kind string, i int, t Tags) {
		if !t.Difficulty.Valid() {
			errs = append(errs, fmt.Sprintf("%s[%d].difficulty %q is not a known level", kind, i, t.Difficulty))
		}
	}

	for i, w := range l.Words {
		tag("words", i, w.Tags)
		if strings.TrimSpace(w.Text) == "" {
			errs = append(errs, fmt.Sprintf("words[%d].text is empty", i))
		}
	}
	for i, p := range l.Pairs {
		tag("pairs", i, p.Tags)
		if p.Word == "" || p.Meaning == "" {
			errs = append(errs, fmt.Sprintf("pairs[%d] needs word and meaning", i))
		}
	}
	for i, v := range l.Verbs {
		tag("verbs", i, v.Tags)
		if v.Base == "" {
			errs = append(errs, fmt.Sprintf("verbs[%d].base is empty", i))
		}
		for _, f := range VerbForms {
			if len(v.Form(f)) == 0 {
				errs = append(errs, fmt.Sprintf("verbs[%d] (%s) has no %s form", i, v.Base, f))
			}
		}
	}
	for i, s := range l.Sentences {
		tag("sentences", i, s.Tags)
		if len(s.Words()) < 2 {
			errs = append(errs, fmt.Sprintf("sentences[%d] needs at least two words", i))
		}
		for j, alt := range s.AlternativeOrders() {
			if len(alt) != len(s.Words()) {
				errs = append(errs, fmt.Sprintf("sentences[%d].alternatives[%d] has a different word count", i, j))
			}
		}
	}
	for i, tw := range l.Twisters {
		tag("twisters", i, tw.Tags)
		if tw.Text == "" {
			errs = append(errs, fmt.Sprintf("twisters[%d].text is empty", i))
		}
	}
	for i, o := range l.Objects {
		tag("objects", i, o.Tags)
		if o.Name == "" || len(o.Colors) == 0 {
			errs = append(errs, fmt.Sprintf("objects[%d] needs a name and colors", i))
		}
		for _, c := range o.Colors {
			if _, ok := colornames.Map[strings.ToLower(c)]; !ok {
				errs = append(errs, fmt.Sprintf("objects[%d] color %q is not a CSS color name", i, c))
			}
		}
	}
	for i, r := range l.Numbers {
		if !r.Difficulty.Valid() {
			errs = append(errs, fmt.Sprintf("numbers[%d].difficulty %q is not a known level", i, r.Difficulty))
		}
		if r.Min > r.Max {
			errs = append(errs, fmt.Sprintf("numbers[%d] min > max", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("content validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// defaultRanges apply when the numbers table has no row for a level.
var defaultRanges = map[Difficulty]NumberRange{
	Beginner:     {Difficulty: Beginner, Min: 0, Max: 20},
	Intermediate: {Difficulty: Intermediate, Min: 21, Max: 1000},
	Advanced:     {Difficulty: Advanced, Min: 1001, Max: 999999},
}

// NumberRange returns the range for d; "" means beginner.
func (l *Library) NumberRange(d Difficulty) NumberRange {
	if d == "" {
		d = Beginner
	}
	for _, r := range l.Numbers {
		if r.Difficulty == d {
			return r
		}
	}
	return defaultRanges[d]
}

// Stats reports table sizes, keyed by table name.
func (l *Library) Stats() map[string]int {
	return map[string]int{
		"words":     len(l.Words),
		"pairs":     len(l.Pairs),
		"verbs":     len(l.Verbs),
		"sentences": len(l.Sentences),
		"twisters":  len(l.Twisters),
		"objects":   len(l.Objects),
		"numbers":   len(l.Numbers),
	}
}
