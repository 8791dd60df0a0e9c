package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
)

const (
	// streakAccuracy is the accuracy a completed session needs to extend a streak.
	streakAccuracy = 0.5
	// timeLayout is fixed width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Result is one completed session as stored.
type Result struct {
	ID         int64       `json:"id"`
	SessionID  string      `json:"sessionId"`
	Game       string      `json:"game"`
	Difficulty string      `json:"difficulty"`
	Category   string      `json:"category,omitempty"`
	Score      int         `json:"score"`
	FinalScore int         `json:"finalScore"`
	Correct    int         `json:"correct"`
	Incorrect  int         `json:"incorrect"`
	Skipped    int         `json:"skipped"`
	Hints      int         `json:"hints"`
	Accuracy   float64     `json:"accuracy"`
	ElapsedMs  int64       `json:"elapsedMs"`
	Reason     game.Reason `json:"reason"`
	CreatedAt  string      `json:"createdAt"`
}

// LeaderRow is one leaderboard line.
type LeaderRow struct {
	Username   string  `json:"username"`
	FinalScore int     `json:"finalScore"`
	Accuracy   float64 `json:"accuracy"`
	ElapsedMs  int64   `json:"elapsedMs"`
	CreatedAt  string  `json:"createdAt"`
}

// SaveResult stores a completed session and, for signed-in owners, bumps
// their stats in the same transaction.
func (d *DB) SaveResult(ctx context.Context, owner Owner, sum game.Summary) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO results
            (session_id, game, user_id, anonymous_id, difficulty, category, score, final_score,
             correct, incorrect, skipped, hints, accuracy, elapsed_ms, reason, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sum.SessionID, sum.Game, nullable(owner.UserID), nullable(owner.AnonID),
		string(sum.Params.Difficulty), sum.Params.Category, sum.Score, sum.FinalScore,
		sum.Correct, sum.Incorrect, sum.Skipped, sum.Hints, sum.Accuracy, sum.ElapsedMs,
		string(sum.Reason), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	if owner.UserID != "" {
		if err := bumpStats(ctx, tx, owner.UserID, sum); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// bumpStats increments games played and totals; updates best score and streak (within tx).
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, sum game.Summary) error {
	var gp, total, best, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, total_score, best_score, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &total, &best, &streak); err != nil {
		return err
	}
	gp++
	total += sum.FinalScore
	best = max(best, sum.FinalScore)
	if sum.Accuracy >= streakAccuracy && sum.Correct > 0 {
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, total_score=?, best_score=?, streak=? WHERE id=?`,
		gp, total, best, streak, userID)
	return err
}

// RecentResults lists a user's latest results, newest first.
func (d *DB) RecentResults(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT id, session_id, game, difficulty, category, score, final_score, correct, incorrect,
               skipped, hints, accuracy, elapsed_ms, reason, created_at
        FROM results
        WHERE user_id=?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		var reason string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Game, &r.Difficulty, &r.Category, &r.Score, &r.FinalScore,
			&r.Correct, &r.Incorrect, &r.Skipped, &r.Hints, &r.Accuracy, &r.ElapsedMs, &reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Reason = game.Reason(reason)
		out = append(out, r)
	}
	return out, rows.Err()
}

/**
 * Leaderboard fetches the best results for a game.
 *
 * - Ordered by final score DESC, then elapsed time ASC, then created_at ASC.
 * - Guests are listed as "guest".
 * - Default limit is 20 if not specified.
 */
func (d *DB) Leaderboard(ctx context.Context, gameID string, limit int) ([]LeaderRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.SQL.QueryContext(ctx, `
        SELECT COALESCE(u.username, 'guest'), r.final_score, r.accuracy, r.elapsed_ms, r.created_at
        FROM results r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE r.game=?
        ORDER BY r.final_score DESC, r.elapsed_ms ASC, r.created_at ASC
        LIMIT ?`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderRow, 0, limit)
	for rows.Next() {
		var r LeaderRow
		if err := rows.Scan(&r.Username, &r.FinalScore, &r.Accuracy, &r.ElapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon transfers an anonymous player's results to a user account,
// daily attempts included, and returns how many scored results moved.
// A guest daily attempt on a day the user already played is dropped.
func (d *DB) ClaimAnon(ctx context.Context, anonID, userID string) int64 {
	if anonID == "" || userID == "" {
		return 0
	}
	n, err := d.claimAnon(ctx, anonID, userID)
	if err != nil {
		log.Warn().Err(err).Msg("claim anon results")
		return 0
	}
	return n
}

func (d *DB) claimAnon(ctx context.Context, anonID, userID string) (int64, error) {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE results SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	guest, user := Owner{AnonID: anonID}.Key(), Owner{UserID: userID}.Key()
	if _, err := tx.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET player_key=?, user_id=? WHERE player_key=?`, user, userID, guest); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_results WHERE player_key=?`, guest); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
