package daily

import (
	"context"
	"database/sql"
	"time"
)

// Result is one player's daily attempt at one game.
type Result struct {
	Game       string `json:"game"`
	Date       string `json:"date"`
	PlayerKey  string `json:"-"`
	UserID     string `json:"-"`
	FinalScore int    `json:"finalScore"`
	Correct    int    `json:"correct"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// LBRow is one daily leaderboard line.
type LBRow struct {
	Username   string `json:"username"`
	FinalScore int    `json:"finalScore"`
	Correct    int    `json:"correct"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// Store reads and writes the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, game, playerKey, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE game=? AND player_key=? AND date=?",
		game, playerKey, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records an attempt; a second attempt for the same day is ignored
// and reported as not inserted.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	var userID any
	if r.UserID != "" {
		userID = r.UserID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(game, date, player_key, user_id, final_score, correct, elapsed_ms, created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		r.Game, r.Date, r.PlayerKey, userID, r.FinalScore, r.Correct, r.ElapsedMs,
		time.Now().UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Leaderboard returns the day's best attempts: score DESC, elapsed ASC, first come first.
func (s *Store) Leaderboard(ctx context.Context, game, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), d.final_score, d.correct, d.elapsed_ms
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.game=? AND d.date=?
		ORDER BY d.final_score DESC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT ?`, game, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.FinalScore, &r.Correct, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
