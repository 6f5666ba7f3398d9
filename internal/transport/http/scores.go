package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

type ScoreService interface {
	TopScores(ctx context.Context) ([]domain.ScoreEntry, error)
	BestScore(ctx context.Context) (int, error)
	Submit(ctx context.Context, name, token string) (domain.ScoreEntry, error)
}

type ScoresHandler struct {
	Scores ScoreService
}

func NewScoresHandler(scores ScoreService) *ScoresHandler {
	return &ScoresHandler{Scores: scores}
}

type submitScoreRequest struct {
	Name       string `json:"name" binding:"required"`
	ScoreToken string `json:"scoreToken" binding:"required"`
}

// GetScores returns the high-score table, best first.
func (h *ScoresHandler) GetScores(c *gin.Context) {
	entries, err := h.Scores.TopScores(c.Request.Context())
	if err != nil {
		log.Printf("[HTTP] Failed to load scores: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": entries})
}

func (h *ScoresHandler) GetBestScore(c *gin.Context) {
	best, err := h.Scores.BestScore(c.Request.Context())
	if err != nil {
		log.Printf("[HTTP] Failed to load best score: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch best score"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": best})
}

// SubmitScore records a name against the score token issued at game over.
func (h *ScoresHandler) SubmitScore(c *gin.Context) {
	var req submitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and scoreToken are required"})
		return
	}

	entry, err := h.Scores.Submit(c.Request.Context(), req.Name, req.ScoreToken)
	if err != nil {
		c.JSON(submitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func submitErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidScoreToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotHighScore):
		return http.StatusUnprocessableEntity
	default:
		log.Printf("[HTTP] Score submission failed: %v", err)
		return http.StatusInternalServerError
	}
}
