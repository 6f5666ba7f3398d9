package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
	"github.com/iamasit07/tetrecs/backend/internal/service/game"
)

type GameRecordRepository interface {
	GetGameByID(ctx context.Context, gameID string) (*domain.GameRecord, error)
}

type GamesHandler struct {
	SessionManager *game.SessionManager
	Records        GameRecordRepository // Optional, can be nil
}

func NewGamesHandler(sm *game.SessionManager, records GameRecordRepository) *GamesHandler {
	return &GamesHandler{SessionManager: sm, Records: records}
}

type liveGameResponse struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Level      int    `json:"level"`
	Lives      int    `json:"lives"`
	StartedAt  string `json:"startedAt"`
}

type gameRecordResponse struct {
	GameID       string    `json:"gameId"`
	PlayerName   string    `json:"playerName"`
	Score        int       `json:"score"`
	Level        int       `json:"level"`
	LinesCleared int       `json:"linesCleared"`
	PiecesPlayed int       `json:"piecesPlayed"`
	EndReason    string    `json:"endReason"`
	CreatedAt    time.Time `json:"createdAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Board        [][]int   `json:"board"`
}

// GetLiveGames lists running games, best score first.
func (h *GamesHandler) GetLiveGames(c *gin.Context) {
	activeGames := h.SessionManager.GetActiveGames()

	response := make([]liveGameResponse, 0, len(activeGames))
	for _, g := range activeGames {
		response = append(response, liveGameResponse{
			GameID:     g.GameID,
			PlayerName: g.PlayerName,
			Score:      g.Score,
			Level:      g.Level,
			Lives:      g.Lives,
			StartedAt:  g.StartedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetGame returns the saved record of a finished game.
func (h *GamesHandler) GetGame(c *gin.Context) {
	if h.Records == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game history unavailable"})
		return
	}

	record, err := h.Records.GetGameByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gameRecordResponse{
		GameID:       record.GameID,
		PlayerName:   record.PlayerName,
		Score:        record.Score,
		Level:        record.Level,
		LinesCleared: record.LinesCleared,
		PiecesPlayed: record.PiecesPlayed,
		EndReason:    record.Reason,
		CreatedAt:    record.CreatedAt,
		FinishedAt:   record.FinishedAt,
		Board:        record.BoardState,
	})
}

// Health reports liveness and the number of sessions in memory.
func (h *GamesHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"activeSessions": h.SessionManager.Count(),
	})
}
