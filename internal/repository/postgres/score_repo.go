package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

type ScoreRepo struct {
	DB *sql.DB
}

func NewScoreRepo(db *sql.DB) *ScoreRepo {
	return &ScoreRepo{DB: db}
}

// TopScores returns up to limit entries, best first. Equal scores keep
// submission order.
func (r *ScoreRepo) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	query := `
	SELECT name, score, COALESCE(game_id, ''), created_at
	FROM scores
	ORDER BY score DESC, created_at ASC, id ASC
	LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ScoreEntry, 0, limit)
	for rows.Next() {
		var e domain.ScoreEntry
		if err := rows.Scan(&e.Name, &e.Score, &e.GameID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score rows: %w", err)
	}
	return entries, nil
}

// BestScore is 0 on an empty table.
func (r *ScoreRepo) BestScore(ctx context.Context) (int, error) {
	var best int
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(score), 0) FROM scores;`).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

// InsertScore appends an entry. A second entry for the same game is refused
// with domain.ErrAlreadySubmitted.
func (r *ScoreRepo) InsertScore(ctx context.Context, entry domain.ScoreEntry) error {
	var gameID any
	if entry.GameID != "" {
		gameID = entry.GameID
	}

	query := `
	INSERT INTO scores (name, score, game_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (game_id) DO NOTHING;
	`
	result, err := r.DB.ExecContext(ctx, query, entry.Name, entry.Score, gameID)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadySubmitted
	}
	return nil
}
