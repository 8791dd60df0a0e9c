// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/{game}/new         → start today's session (or resume the open one)
//   - GET  /daily/{game}/leaderboard → top results for today (or ?date=YYYY-MM-DD)
//
// Everyone gets the same pool for a game on a given UTC day (seed = HMAC(salt, game|date)).
// Each player can play once per game per day (enforced by DB + in-memory index).
// The attempt is recorded when the session completes.

package httpserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/daily"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string
	open  map[string]string // game|player|date → live session id
	mu    sync.Mutex        // guards open
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:   s,
		store: daily.NewStore(s.db.SQL),
		salt:  s.cfg.DailySalt,
		open:  make(map[string]string),
	}
	r.Route("/daily/{game}", func(r chi.Router) {
		r.With(s.limit).Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// dailyNewRes is returned by /daily/{game}/new.
type dailyNewRes struct {
	Date    string         `json:"date"`
	Played  bool           `json:"played"`
	Session *game.Snapshot `json:"session,omitempty"`
}

// handleNew starts or resumes today's daily session.
//   - Already recorded for today → Played=true.
//   - An open session for today → its snapshot.
//   - An open session that vanished unfinished → forfeited, Played=true.
//   - Otherwise a new session seeded for the day.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game")
	if _, ok := d.srv.registry.Get(gameID); !ok {
		writeFailure(w, r, games.ErrUnknownGame)
		return
	}
	o := d.srv.owner(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), gameID, o.Key(), date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := gameID + "|" + o.Key() + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked(date)

	if id, ok := d.open[key]; ok {
		if l, err := d.srv.sessions.Get(r.Context(), id); err == nil {
			snap := l.Handle.Snapshot()
			if snap.Status == game.StatusCompleted {
				writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
				return
			}
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Session: &snap})
			return
		}
		// The attempt was dropped unfinished (idle sweep): it still counts.
		delete(d.open, key)
		if err := d.forfeit(r, gameID, o, date); err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	h, err := d.srv.newSession(r.Context(), gameID, nil, daily.Seed(now, d.salt, gameID), o, date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	snap, err := h.Start()
	if err != nil {
		_ = d.srv.sessions.Delete(r.Context(), h.ID())
		writeFailure(w, r, err)
		return
	}
	d.open[key] = h.ID()
	writeJSON(w, http.StatusCreated, dailyNewRes{Date: date, Session: &snap})
}

// forfeit records a zero result for an attempt that never completed.
func (d *dailyServer) forfeit(r *http.Request, gameID string, o store.Owner, date string) error {
	_, err := d.store.InsertResult(r.Context(), daily.Result{
		Game:      gameID,
		Date:      date,
		PlayerKey: o.Key(),
		UserID:    o.UserID,
	})
	return err
}

// pruneLocked forgets index entries from previous days.
func (d *dailyServer) pruneLocked(today string) {
	for k := range d.open {
		if !strings.HasSuffix(k, "|"+today) {
			delete(d.open, k)
		}
	}
}

// lbRes is returned by /daily/{game}/leaderboard.
type lbRes struct {
	Game string        `json:"game"`
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game")
	if _, ok := d.srv.registry.Get(gameID); !ok {
		writeFailure(w, r, games.ErrUnknownGame)
		return
	}
	date := daily.DateKey(d.srv.now())
	if q := r.URL.Query().Get("date"); q != "" {
		var err error
		if date, err = daily.ParseDateKey(q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
	}
	rows, err := d.store.Leaderboard(r.Context(), gameID, date, queryInt(r, "limit", 20))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Game: gameID, Date: date, Top: rows})
}
