package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/assets"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/config"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/store"
)

type harness struct {
	t     *testing.T
	url   string
	sched *game.ManualScheduler
	db    *store.DB
	mem   *store.Memory
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTExpiresDays: 1,
		CookieName:     "lp_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "test-salt",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	lib, err := content.Load(assets.Content())
	require.NoError(t, err)
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mem := store.NewMemory(0)
	t.Cleanup(mem.Stop)
	sched := game.NewManualScheduler(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	srv := New(Deps{
		Config:    cfg,
		Registry:  games.NewRegistry(lib),
		Sessions:  mem,
		DB:        db,
		Scheduler: sched,
		Clock:     sched.Now,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &harness{t: t, url: ts.URL, sched: sched, db: db, mem: mem}
}

// client is one browser: it keeps its own cookies.
type client struct {
	h    *harness
	http *http.Client
}

func (h *harness) client() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	return &client{h: h, http: &http.Client{Jar: jar}}
}

// call sends body as JSON and decodes the response into out when non-nil.
func (c *client) call(method, path string, body, out any) int {
	t := c.h.t
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.h.url+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// playSpelling creates a one-word spelling session and answers it correctly.
func (c *client) playSpelling() game.Summary {
	t := c.h.t
	t.Helper()
	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.call("POST", "/games/spelling/sessions", map[string]any{"count": 1}, &snap))
	require.NotNil(t, snap.Prompt)
	require.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+snap.ID+"/answer", game.Answer{Text: snap.Prompt.Speak}, &snap))
	require.NotNil(t, snap.Correct)
	require.True(t, *snap.Correct)

	c.h.sched.Advance(game.CorrectDelay)
	var sum game.Summary
	require.Equal(t, http.StatusOK, c.call("GET", "/sessions/"+snap.ID+"/summary", nil, &sum))
	return sum
}

func TestHealthAndGames(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var ok map[string]bool
	assert.Equal(t, http.StatusOK, c.call("GET", "/health", nil, &ok))
	assert.True(t, ok["ok"])

	var list struct {
		Games []struct {
			ID           string         `json:"id"`
			Difficulties []string       `json:"difficulties"`
			Defaults     map[string]any `json:"defaults"`
		} `json:"games"`
	}
	assert.Equal(t, http.StatusOK, c.call("GET", "/games", nil, &list))
	require.Len(t, list.Games, 7)
	assert.Equal(t, "numbers", list.Games[0].ID)
	assert.Equal(t, []string{"beginner", "intermediate", "advanced"}, list.Games[0].Difficulties)
	assert.EqualValues(t, game.DefaultCount, list.Games[0].Defaults["count"])

	var e errorBody
	assert.Equal(t, http.StatusNotFound, c.call("GET", "/nope", nil, &e))
	assert.Equal(t, "not_found", e.Error)
}

func TestCreateSessionErrors(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var e errorBody
	assert.Equal(t, http.StatusNotFound, c.call("POST", "/games/chess/sessions", nil, &e))
	assert.Equal(t, "unknown_game", e.Error)

	assert.Equal(t, http.StatusUnprocessableEntity, c.call("POST", "/games/spelling/sessions", map[string]any{"count": 500}, &e))
	assert.Equal(t, "invalid_params", e.Error)

	assert.Equal(t, http.StatusUnprocessableEntity, c.call("POST", "/games/spelling/sessions", map[string]any{"colour": "red"}, &e))
	assert.Contains(t, e.Message, "malformed parameters")
}

func TestGuestPlaysToCompletion(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.call("POST", "/games/spelling/sessions", map[string]any{"count": 1}, &snap))
	assert.Equal(t, game.StatusPlaying, snap.Status)
	assert.Empty(t, snap.Expected)

	var e errorBody
	assert.Equal(t, http.StatusConflict, c.call("GET", "/sessions/"+snap.ID+"/summary", nil, &e))
	assert.Equal(t, "not_completed", e.Error)

	sum := c.playSpelling()
	assert.Equal(t, game.ReasonExhausted, sum.Reason)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 20, sum.FinalScore)

	var board struct {
		Top []store.LeaderRow `json:"top"`
	}
	assert.Equal(t, http.StatusOK, c.call("GET", "/leaderboard/spelling", nil, &board))
	require.Len(t, board.Top, 1)
	assert.Equal(t, "guest", board.Top[0].Username)
	assert.Equal(t, 20, board.Top[0].FinalScore)
}

func TestSessionsAreOwnerScoped(t *testing.T) {
	h := newHarness(t, testConfig())
	alice, bob := h.client(), h.client()

	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, alice.call("POST", "/games/numbers/sessions", nil, &snap))
	assert.Equal(t, http.StatusOK, alice.call("GET", "/sessions/"+snap.ID, nil, nil))

	var e errorBody
	assert.Equal(t, http.StatusNotFound, bob.call("GET", "/sessions/"+snap.ID, nil, &e))
	assert.Equal(t, http.StatusNotFound, bob.call("POST", "/sessions/"+snap.ID+"/end", nil, &e))
	assert.Equal(t, "not_found", e.Error)
}

func TestSessionActions(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var snap game.Snapshot
	require.Equal(t, http.StatusCreated, c.call("POST", "/games/verbs/sessions", map[string]any{"count": 2}, &snap))
	id := snap.ID

	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/hint", nil, &snap))
	assert.Equal(t, 1, snap.HintLevel)
	assert.NotEmpty(t, snap.Hint)

	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/pause", nil, &snap))
	assert.Equal(t, game.StatusPaused, snap.Status)
	var e errorBody
	assert.Equal(t, http.StatusConflict, c.call("POST", "/sessions/"+id+"/answer", game.Answer{Text: "went"}, &e))
	assert.Equal(t, "not_playing", e.Error)
	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/resume", nil, &snap))
	assert.Equal(t, game.StatusPlaying, snap.Status)
	assert.Equal(t, http.StatusConflict, c.call("POST", "/sessions/"+id+"/resume", nil, &e))
	assert.Equal(t, "not_paused", e.Error)

	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/next", nil, &snap))
	assert.Equal(t, 1, snap.Index)

	assert.Equal(t, http.StatusNotFound, c.call("POST", "/sessions/"+id+"/fly", nil, &e))
	assert.Equal(t, "unknown_action", e.Error)

	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/end", nil, &snap))
	assert.Equal(t, game.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, game.ReasonEnded, snap.Summary.Reason)

	assert.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+id+"/restart", nil, &snap))
	assert.Equal(t, game.StatusPlaying, snap.Status)
	assert.Equal(t, 0, snap.Index)

	assert.Equal(t, http.StatusOK, c.call("DELETE", "/sessions/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.call("GET", "/sessions/"+id, nil, &e))
}

func TestAuthFlowClaimsGuestResults(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	c.playSpelling()

	var e errorBody
	assert.Equal(t, http.StatusUnauthorized, c.call("GET", "/stats/me", nil, &e))

	var u store.User
	creds := map[string]string{"username": "ada_l", "password": "correct-horse"}
	require.Equal(t, http.StatusCreated, c.call("POST", "/auth/signup", creds, &u))
	assert.Equal(t, "ada_l", u.Username)

	var me authUser
	assert.Equal(t, http.StatusOK, c.call("GET", "/auth/me", nil, &me))
	assert.Equal(t, u.ID, me.ID)

	var mine []store.Result
	assert.Equal(t, http.StatusOK, c.call("GET", "/results/mine", nil, &mine))
	assert.Len(t, mine, 1, "guest result claimed on signup")

	c.playSpelling()
	var stats struct {
		ID          string `json:"id"`
		GamesPlayed int    `json:"gamesPlayed"`
		BestScore   int    `json:"bestScore"`
		Streak      int    `json:"streak"`
	}
	assert.Equal(t, http.StatusOK, c.call("GET", "/stats/me", nil, &stats))
	assert.Equal(t, u.ID, stats.ID)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 20, stats.BestScore)
	assert.Equal(t, 1, stats.Streak)

	assert.Equal(t, http.StatusConflict, h.client().call("POST", "/auth/signup", creds, &e))
	assert.Equal(t, "username_taken", e.Error)
	assert.Equal(t, http.StatusBadRequest, h.client().call("POST", "/auth/signup", map[string]string{"username": "x", "password": "short"}, &e))

	other := h.client()
	assert.Equal(t, http.StatusUnauthorized, other.call("POST", "/auth/login", map[string]string{"username": "ada_l", "password": "nope-nope"}, &e))
	assert.Equal(t, http.StatusOK, other.call("POST", "/auth/login", creds, &u))
	assert.Equal(t, http.StatusOK, other.call("GET", "/stats/me", nil, &stats))

	assert.Equal(t, http.StatusOK, other.call("POST", "/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, other.call("GET", "/auth/me", nil, &e))
}

func TestDailyOneAttemptPerDay(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var res dailyNewRes
	require.Equal(t, http.StatusCreated, c.call("POST", "/daily/verbs/new", nil, &res))
	assert.Equal(t, "2024-03-01", res.Date)
	require.NotNil(t, res.Session)
	first := *res.Session

	// same pool for everyone today
	var other dailyNewRes
	require.Equal(t, http.StatusCreated, h.client().call("POST", "/daily/verbs/new", nil, &other))
	require.NotNil(t, other.Session)
	assert.Equal(t, first.Prompt, other.Session.Prompt)
	assert.NotEqual(t, first.ID, other.Session.ID)

	// asking again resumes the open session
	require.Equal(t, http.StatusOK, c.call("POST", "/daily/verbs/new", nil, &res))
	assert.Equal(t, first.ID, res.Session.ID)

	var e errorBody
	assert.Equal(t, http.StatusConflict, c.call("POST", "/sessions/"+first.ID+"/restart", nil, &e))
	assert.Equal(t, "daily_locked", e.Error)

	var snap game.Snapshot
	require.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+first.ID+"/end", nil, &snap))
	assert.Equal(t, game.StatusCompleted, snap.Status)

	res = dailyNewRes{}
	assert.Equal(t, http.StatusOK, c.call("POST", "/daily/verbs/new", nil, &res))
	assert.True(t, res.Played)
	assert.Nil(t, res.Session)

	var board lbRes
	assert.Equal(t, http.StatusOK, c.call("GET", "/daily/verbs/leaderboard", nil, &board))
	assert.Equal(t, "2024-03-01", board.Date)
	assert.Len(t, board.Top, 1)

	assert.Equal(t, http.StatusOK, c.call("GET", "/daily/verbs/leaderboard?date=2024-02-29", nil, &board))
	assert.Empty(t, board.Top)
	assert.Equal(t, http.StatusBadRequest, c.call("GET", "/daily/verbs/leaderboard?date=yesterday", nil, &e))
	assert.Equal(t, http.StatusNotFound, c.call("POST", "/daily/chess/new", nil, &e))
}

func TestDailyAttemptSurvivesDiscard(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var res dailyNewRes
	require.Equal(t, http.StatusCreated, c.call("POST", "/daily/numbers/new", nil, &res))
	require.NotNil(t, res.Session)
	id := res.Session.ID

	var e errorBody
	assert.Equal(t, http.StatusConflict, c.call("DELETE", "/sessions/"+id, nil, &e))
	assert.Equal(t, "daily_locked", e.Error)
	assert.Equal(t, http.StatusOK, c.call("GET", "/sessions/"+id, nil, nil))

	// dropped from memory before finishing, as the idle sweep does
	require.NoError(t, h.mem.Delete(context.Background(), id))

	res = dailyNewRes{}
	require.Equal(t, http.StatusOK, c.call("POST", "/daily/numbers/new", nil, &res))
	assert.True(t, res.Played)
	assert.Nil(t, res.Session)

	var board lbRes
	require.Equal(t, http.StatusOK, c.call("GET", "/daily/numbers/leaderboard", nil, &board))
	require.Len(t, board.Top, 1)
	assert.Zero(t, board.Top[0].FinalScore)

	// a finished daily session can be discarded
	other := h.client()
	require.Equal(t, http.StatusCreated, other.call("POST", "/daily/numbers/new", nil, &res))
	require.NotNil(t, res.Session)
	require.Equal(t, http.StatusOK, other.call("POST", "/sessions/"+res.Session.ID+"/end", nil, nil))
	assert.Equal(t, http.StatusOK, other.call("DELETE", "/sessions/"+res.Session.ID, nil, nil))
	res = dailyNewRes{}
	require.Equal(t, http.StatusOK, other.call("POST", "/daily/numbers/new", nil, &res))
	assert.True(t, res.Played)
}

func TestSignupKeepsGuestDailyAttempt(t *testing.T) {
	h := newHarness(t, testConfig())
	c := h.client()

	var res dailyNewRes
	require.Equal(t, http.StatusCreated, c.call("POST", "/daily/verbs/new", nil, &res))
	require.NotNil(t, res.Session)
	require.Equal(t, http.StatusOK, c.call("POST", "/sessions/"+res.Session.ID+"/end", nil, nil))

	creds := map[string]string{"username": "grace_h", "password": "correct-horse"}
	require.Equal(t, http.StatusCreated, c.call("POST", "/auth/signup", creds, nil))

	res = dailyNewRes{}
	require.Equal(t, http.StatusOK, c.call("POST", "/daily/verbs/new", nil, &res))
	assert.True(t, res.Played)

	var board lbRes
	require.Equal(t, http.StatusOK, c.call("GET", "/daily/verbs/leaderboard", nil, &board))
	require.Len(t, board.Top, 1)
	assert.Equal(t, "grace_h", board.Top[0].Username)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	h := newHarness(t, cfg)
	c := h.client()

	assert.Equal(t, http.StatusCreated, c.call("POST", "/games/numbers/sessions", nil, nil))
	assert.Equal(t, http.StatusCreated, c.call("POST", "/games/numbers/sessions", nil, nil))
	var e errorBody
	assert.Equal(t, http.StatusTooManyRequests, c.call("POST", "/games/numbers/sessions", nil, &e))
	assert.Equal(t, "rate_limited", e.Error)

	// reads are not limited
	assert.Equal(t, http.StatusOK, c.call("GET", "/games", nil, nil))
}

func TestClientLimiterForgetsIdleClients(t *testing.T) {
	l := newClientLimiter(1, 1)
	now := time.Unix(1000, 0)
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("b", now))

	later := now.Add(time.Hour)
	assert.True(t, l.allow("c", later))
	assert.Len(t, l.clients, 1)
}
