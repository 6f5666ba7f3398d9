package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// SaveGame upserts the record of a finished session.
func (r *GameRepo) SaveGame(ctx context.Context, record domain.GameRecord) error {
	boardJSON, err := json.Marshal(record.BoardState)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO game (game_id, player_name, score, level, lines_cleared, pieces_played, reason, created_at, finished_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (game_id) DO UPDATE SET
		score = EXCLUDED.score,
		level = EXCLUDED.level,
		lines_cleared = EXCLUDED.lines_cleared,
		pieces_played = EXCLUDED.pieces_played,
		reason = EXCLUDED.reason,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state;
	`
	_, err = r.DB.ExecContext(ctx, query,
		record.GameID,
		record.PlayerName,
		record.Score,
		record.Level,
		record.LinesCleared,
		record.PiecesPlayed,
		record.Reason,
		record.CreatedAt,
		record.FinishedAt,
		boardJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}
	return nil
}

// GetGameByID returns nil, nil when the game is unknown.
func (r *GameRepo) GetGameByID(ctx context.Context, gameID string) (*domain.GameRecord, error) {
	query := `
	SELECT game_id, player_name, score, level, lines_cleared, pieces_played,
	       reason, created_at, finished_at, board_state
	FROM game
	WHERE game_id = $1;
	`

	var record domain.GameRecord
	var boardJSON []byte
	err := r.DB.QueryRowContext(ctx, query, gameID).Scan(
		&record.GameID,
		&record.PlayerName,
		&record.Score,
		&record.Level,
		&record.LinesCleared,
		&record.PiecesPlayed,
		&record.Reason,
		&record.CreatedAt,
		&record.FinishedAt,
		&boardJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	if boardJSON != nil {
		if err := json.Unmarshal(boardJSON, &record.BoardState); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return &record, nil
}

// DeleteGamesFinishedBefore prunes old game records. Scores are kept.
func (r *GameRepo) DeleteGamesFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM game WHERE finished_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune game records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
