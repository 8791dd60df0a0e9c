package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// writeFailure maps engine and store errors to a status code.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var pe *game.ParamsError
	switch {
	case errors.As(err, &pe):
		writeError(w, http.StatusUnprocessableEntity, "invalid_params", err.Error())
	case errors.Is(err, games.ErrUnknownGame):
		writeError(w, http.StatusNotFound, "unknown_game", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, game.ErrDisposed):
		writeError(w, http.StatusNotFound, "not_found", "session not found")
	case errors.Is(err, game.ErrNotPlaying):
		writeError(w, http.StatusConflict, "not_playing", err.Error())
	case errors.Is(err, game.ErrNotPaused):
		writeError(w, http.StatusConflict, "not_paused", err.Error())
	case errors.Is(err, game.ErrNotStartable):
		writeError(w, http.StatusConflict, "not_startable", err.Error())
	case errors.Is(err, game.ErrHintsExhausted):
		writeError(w, http.StatusConflict, "hints_exhausted", err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "")
	}
}

// maxBody bounds request bodies; drawings arrive as base64 data URLs.
const maxBody = 6 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	raw, err := readBody(w, r)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return err
	}
	return json.Unmarshal(raw, dst)
}
