package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
	"github.com/iamasit07/tetrecs/backend/internal/metrics"
	"github.com/iamasit07/tetrecs/backend/pkg/auth"
)

const (
	topScoresKey = "scores:top"
	bestScoreKey = "scores:best"
	cacheTTL     = 5 * time.Minute
)

type ScoreRepository interface {
	TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error)
	BestScore(ctx context.Context) (int, error)
	InsertScore(ctx context.Context, entry domain.ScoreEntry) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service owns the high-score table: reads, the qualification rule and
// token-checked submissions.
type Service struct {
	repo     ScoreRepository
	cache    CacheRepository // Optional, can be nil
	limit    int
	secret   string
	tokenTTL time.Duration
}

func NewService(repo ScoreRepository, cache CacheRepository, limit int, secret string, tokenTTL time.Duration) *Service {
	if limit <= 0 {
		limit = 10
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		limit:    limit,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *Service) Limit() int {
	return s.limit
}

// TopScores returns the table, best first, capped at the configured limit.
func (s *Service) TopScores(ctx context.Context) ([]domain.ScoreEntry, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, topScoresKey); err == nil {
			var entries []domain.ScoreEntry
			if err := json.Unmarshal([]byte(data), &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.repo.TopScores(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load high scores: %w", err)
	}
	domain.SortScores(entries)

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, topScoresKey, data, cacheTTL); err != nil {
				log.Printf("[SCORES] Warning: Failed to populate cache: %v", err)
			}
		}
	}
	return entries, nil
}

// BestScore is the top score on the table, 0 when it is empty.
func (s *Service) BestScore(ctx context.Context) (int, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, bestScoreKey); err == nil {
			if best, err := strconv.Atoi(data); err == nil {
				return best, nil
			}
		}
	}

	best, err := s.repo.BestScore(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load best score: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, bestScoreKey, strconv.Itoa(best), cacheTTL); err != nil {
			log.Printf("[SCORES] Warning: Failed to populate cache: %v", err)
		}
	}
	return best, nil
}

// IsHighScore reports whether score would earn a place on the table.
func (s *Service) IsHighScore(ctx context.Context, score int) (bool, error) {
	entries, err := s.TopScores(ctx)
	if err != nil {
		return false, err
	}
	return domain.IsHighScore(entries, score, s.limit), nil
}

// IssueToken signs the final score of a finished game.
func (s *Service) IssueToken(gameID string, score int) (string, error) {
	return auth.GenerateScoreToken(s.secret, s.tokenTTL, gameID, score)
}

// Submit records name against the score vouched for by token.
func (s *Service) Submit(ctx context.Context, name, token string) (domain.ScoreEntry, error) {
	claims, err := auth.ValidateScoreToken(s.secret, token)
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("%w: %v", domain.ErrInvalidScoreToken, err)
	}

	name, ok := domain.NormalizeName(name)
	if !ok {
		return domain.ScoreEntry{}, domain.ErrInvalidName
	}

	qualifies, err := s.IsHighScore(ctx, claims.Score)
	if err != nil {
		return domain.ScoreEntry{}, err
	}
	if !qualifies {
		return domain.ScoreEntry{}, domain.ErrNotHighScore
	}

	entry := domain.ScoreEntry{
		Name:      name,
		Score:     claims.Score,
		GameID:    claims.GameID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.InsertScore(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			return domain.ScoreEntry{}, err
		}
		return domain.ScoreEntry{}, fmt.Errorf("failed to save score: %w", err)
	}

	s.invalidate(ctx)
	metrics.ScoresSubmitted.Inc()
	log.Printf("[SCORES] %s scored %d in game %s", entry.Name, entry.Score, entry.GameID)
	return entry, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, topScoresKey, bestScoreKey); err != nil {
		log.Printf("[SCORES] Warning: Failed to invalidate cache: %v", err)
	}
}
