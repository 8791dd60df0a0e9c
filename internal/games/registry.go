// Package games lists the playable mini-games and builds sessions for them.
package games

import (
	"encoding/json"
	"errors"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/drawing"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/matching"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/numbers"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/sentences"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/spelling"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/twisters"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games/verbs"
)

var ErrUnknownGame = errors.New("unknown game")

// Entry describes one game: what the instructions panel shows and how
// sessions are built from a JSON parameters form.
type Entry struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Instructions string               `json:"instructions"`
	Difficulties []content.Difficulty `json:"difficulties"`
	// Categories are the content categories a session may be narrowed to.
	Categories []string `json:"categories"`
	// Defaults is the parameters form with every default applied.
	Defaults any `json:"defaults"`

	start func(lib *content.Library, raw json.RawMessage, seed uint64, opts game.Options) (game.Handle, error)
}

// Registry holds the games in display order.
type Registry struct {
	lib     *content.Library
	entries []Entry
	byID    map[string]int
}

// NewRegistry registers every game against lib.
func NewRegistry(lib *content.Library) *Registry {
	r := &Registry{lib: lib, byID: map[string]int{}}

	register(r, numbers.ID, numbers.Title, numbers.Instructions, numbers.ParseParams,
		func(p *numbers.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p numbers.Params, opts game.Options) game.Handle { return numbers.New(lib, p, opts) })
	register(r, spelling.ID, spelling.Title, spelling.Instructions, spelling.ParseParams,
		func(p *spelling.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p spelling.Params, opts game.Options) game.Handle { return spelling.New(lib, p, opts) })
	register(r, matching.ID, matching.Title, matching.Instructions, matching.ParseParams,
		func(p *matching.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p matching.Params, opts game.Options) game.Handle { return matching.New(lib, p, opts) })
	register(r, verbs.ID, verbs.Title, verbs.Instructions, verbs.ParseParams,
		func(p *verbs.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p verbs.Params, opts game.Options) game.Handle { return verbs.New(lib, p, opts) })
	register(r, sentences.ID, sentences.Title, sentences.Instructions, sentences.ParseParams,
		func(p *sentences.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p sentences.Params, opts game.Options) game.Handle { return sentences.New(lib, p, opts) })
	register(r, twisters.ID, twisters.Title, twisters.Instructions, twisters.ParseParams,
		func(p *twisters.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p twisters.Params, opts game.Options) game.Handle { return twisters.New(lib, p, opts) })
	register(r, drawing.ID, drawing.Title, drawing.Instructions, drawing.ParseParams,
		func(p *drawing.Params) *uint64 { return &p.Seed },
		func(lib *content.Library, p drawing.Params, opts game.Options) game.Handle { return drawing.New(lib, p, opts) })

	return r
}

// register wires one game's typed parameters form into an untyped entry.
// seed points at the form's seed so the daily challenge can pin it.
func register[P any](r *Registry, id, title, instructions string,
	parse func([]byte) (P, error),
	seed func(*P) *uint64,
	build func(*content.Library, P, game.Options) game.Handle,
) {
	defaults, err := parse(nil)
	if err != nil {
		panic("games: defaults of " + id + " do not validate: " + err.Error())
	}
	r.byID[id] = len(r.entries)
	r.entries = append(r.entries, Entry{
		ID:           id,
		Title:        title,
		Instructions: instructions,
		Difficulties: content.Difficulties,
		Categories:   categoriesFor(r.lib, id),
		Defaults:     defaults,
		start: func(lib *content.Library, raw json.RawMessage, s uint64, opts game.Options) (game.Handle, error) {
			p, err := parse(raw)
			if err != nil {
				return nil, err
			}
			if s != 0 {
				*seed(&p) = s
			}
			return build(lib, p, opts), nil
		},
	})
}

func categoriesFor(lib *content.Library, id string) []string {
	var out []string
	switch id {
	case spelling.ID:
		out = content.Categories(lib.Words)
	case matching.ID:
		out = content.Categories(lib.Pairs)
	case verbs.ID:
		out = content.Categories(lib.Verbs)
	case sentences.ID:
		out = content.Categories(lib.Sentences)
	case twisters.ID:
		out = content.Categories(lib.Twisters)
	case drawing.ID:
		out = content.Categories(lib.Objects)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// List returns the games in display order.
func (r *Registry) List() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Get looks a game up by id.
func (r *Registry) Get(id string) (Entry, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// NewSession parses raw for game id and returns a session in the ready state.
// A non-zero seed overrides the form's seed.
func (r *Registry) NewSession(id string, raw json.RawMessage, seed uint64, opts game.Options) (game.Handle, error) {
	e, ok := r.Get(id)
	if !ok {
		return nil, ErrUnknownGame
	}
	return e.start(r.lib, raw, seed, opts)
}
