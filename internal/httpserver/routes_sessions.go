// internal/httpserver/routes_sessions.go
//
// Game catalogue and session lifecycle:
//   - GET    /games                       → games with their default parameters
//   - POST   /games/{game}/sessions       → create + start a session from a parameters form
//   - GET    /sessions/{id}               → snapshot (timers keep running server-side)
//   - GET    /sessions/{id}/summary       → score screen once completed
//   - POST   /sessions/{id}/answer        → submit an answer
//   - POST   /sessions/{id}/{action}      → hint | next | pause | resume | end | start | restart | reset
//   - DELETE /sessions/{id}               → dispose
//   - GET    /leaderboard/{game}          → best completed runs
//
// Only the player who created a session can see or drive it; everyone else gets 404.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/daily"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/store"
)

// actions maps POST /sessions/{id}/{action} to engine operations.
var actions = map[string]func(game.Handle) (game.Snapshot, error){
	"start":   game.Handle.Start,
	"hint":    game.Handle.Hint,
	"next":    game.Handle.Next,
	"pause":   game.Handle.Pause,
	"resume":  game.Handle.Resume,
	"end":     game.Handle.End,
	"reset":   game.Handle.Reset,
	"restart": restart,
}

// replays would hand a daily player a second attempt.
var replays = map[string]bool{"start": true, "reset": true, "restart": true}

func restart(h game.Handle) (game.Snapshot, error) {
	if _, err := h.Reset(); err != nil {
		return game.Snapshot{}, err
	}
	return h.Start()
}

func (s *Server) mountSessions(r chi.Router) {
	r.Get("/games", s.handleListGames)
	r.With(s.limit).Post("/games/{game}/sessions", s.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Get("/summary", s.handleSummary)
		r.With(s.limit).Post("/answer", s.handleAnswer)
		r.With(s.limit).Post("/{action}", s.handleAction)
		r.Delete("/", s.handleDispose)
	})
	r.Get("/leaderboard/{game}", s.handleLeaderboard)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]games.Entry{"games": s.registry.List()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	h, err := s.newSession(r.Context(), chi.URLParam(r, "game"), raw, 0, s.owner(w, r), "")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	snap, err := h.Start()
	if err != nil {
		_ = s.sessions.Delete(r.Context(), h.ID())
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// newSession builds a session for gameID, registers it under its owner and
// arranges for the result to be stored on completion. date marks a daily attempt.
func (s *Server) newSession(ctx context.Context, gameID string, raw json.RawMessage, seed uint64, o store.Owner, date string) (game.Handle, error) {
	opts := game.Options{
		Scheduler:  s.sched,
		Clock:      s.now,
		OnComplete: func(sum game.Summary) { s.recordResult(o, date, sum) },
	}
	h, err := s.registry.NewSession(gameID, raw, seed, opts)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, store.Live{Handle: h, Owner: o, Daily: date}); err != nil {
		h.Dispose()
		return nil, err
	}
	return h, nil
}

// recordResult persists a completed session. It runs on the completing
// goroutine, which may be a timer rather than a request.
func (s *Server) recordResult(o store.Owner, date string, sum game.Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l := log.With().Str("session", sum.SessionID).Str("game", sum.Game).Logger()

	if err := s.db.SaveResult(ctx, o, sum); err != nil {
		l.Error().Err(err).Msg("save result")
	}
	if date == "" {
		return
	}
	ok, err := s.daily.store.InsertResult(ctx, daily.Result{
		Game:       sum.Game,
		Date:       date,
		PlayerKey:  o.Key(),
		UserID:     o.UserID,
		FinalScore: sum.FinalScore,
		Correct:    sum.Correct,
		ElapsedMs:  sum.ElapsedMs,
	})
	switch {
	case err != nil:
		l.Error().Err(err).Msg("save daily result")
	case !ok:
		l.Info().Str("date", date).Msg("daily attempt already recorded")
	}
}

// live loads the session named in the URL if the caller owns it.
func (s *Server) live(w http.ResponseWriter, r *http.Request) (store.Live, bool) {
	l, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil || !s.owns(r, l.Owner) {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return store.Live{}, false
	}
	return l, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	l, ok := s.live(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l.Handle.Snapshot())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	l, ok := s.live(w, r)
	if !ok {
		return
	}
	sum, done := l.Handle.Summary()
	if !done {
		writeError(w, http.StatusConflict, "not_completed", "session has not completed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	l, ok := s.live(w, r)
	if !ok {
		return
	}
	var a game.Answer
	if err := decodeBody(w, r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	snap, err := l.Handle.Submit(a)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	do, known := actions[name]
	if !known {
		writeError(w, http.StatusNotFound, "unknown_action", name)
		return
	}
	l, ok := s.live(w, r)
	if !ok {
		return
	}
	if l.Daily != "" && replays[name] {
		writeError(w, http.StatusConflict, "daily_locked", "a daily challenge can only be played once")
		return
	}
	snap, err := do(l.Handle)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDispose(w http.ResponseWriter, r *http.Request) {
	l, ok := s.live(w, r)
	if !ok {
		return
	}
	if l.Daily != "" && l.Handle.Snapshot().Status != game.StatusCompleted {
		writeError(w, http.StatusConflict, "daily_locked", "finish or end a daily challenge before discarding it")
		return
	}
	if err := s.sessions.Delete(r.Context(), l.Handle.ID()); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "game")
	if _, ok := s.registry.Get(id); !ok {
		writeFailure(w, r, games.ErrUnknownGame)
		return
	}
	rows, err := s.db.Leaderboard(r.Context(), id, queryInt(r, "limit", 20))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game": id, "top": rows})
}
