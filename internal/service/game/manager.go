package game

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
	"github.com/iamasit07/tetrecs/backend/internal/metrics"
)

// SessionManager manages active game sessions
type SessionManager struct {
	Session     map[string]*GameSession // gameID → GameSession
	mu          sync.RWMutex
	defaults    Options
	idleTimeout time.Duration
}

// NewSessionManager creates sessions from the given defaults. Sessions that
// see no command for idleTimeout are shut down by CleanupOldSessions.
func NewSessionManager(defaults Options, idleTimeout time.Duration) *SessionManager {
	if idleTimeout <= 0 {
		idleTimeout = 24 * time.Hour
	}
	return &SessionManager{
		Session:     make(map[string]*GameSession),
		defaults:    defaults,
		idleTimeout: idleTimeout,
	}
}

func (sm *SessionManager) CreateSession(playerName string) *GameSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := NewGameSession(playerName, sm.defaults)
	sm.Session[session.GameID] = session
	metrics.ActiveSessions.Set(float64(len(sm.Session)))

	log.Printf("[SESSION] Created session %s for %s", session.GameID, playerName)
	return session
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

// RemoveSession shuts the session down and forgets it.
func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	session, exists := sm.Session[gameID]
	if !exists {
		sm.mu.Unlock()
		return fmt.Errorf("session not found")
	}
	delete(sm.Session, gameID)
	metrics.ActiveSessions.Set(float64(len(sm.Session)))
	sm.mu.Unlock()

	log.Printf("[SESSION] Removing session %s", gameID)
	session.Shutdown()
	return nil
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// LiveGame is a summary of a running session.
type LiveGame struct {
	GameID     string
	PlayerName string
	Score      int
	Level      int
	Lives      int
	StartedAt  time.Time
}

// GetActiveGames lists running sessions, best score first.
func (sm *SessionManager) GetActiveGames() []LiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	games := make([]LiveGame, 0, len(sessions))
	for _, s := range sessions {
		snap := s.Snapshot()
		if snap.Status != domain.StatusRunning {
			continue
		}
		games = append(games, LiveGame{
			GameID:     s.GameID,
			PlayerName: s.PlayerName,
			Score:      snap.Scoreboard.Score,
			Level:      snap.Scoreboard.Level,
			Lives:      snap.Scoreboard.Lives,
			StartedAt:  s.CreatedAt,
		})
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].Score > games[j].Score
	})
	return games
}

// CleanupOldSessions drops finished sessions after an hour and shuts down
// sessions nobody has touched within the idle timeout. A session busy in a
// listener only delays this call, never other users of the manager.
func (sm *SessionManager) CleanupOldSessions(now time.Time) int {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, session := range sm.Session {
		sessions = append(sessions, session)
	}
	sm.mu.RUnlock()

	// activity takes the session lock, so read it with the manager unlocked
	var expired []*GameSession
	for _, session := range sessions {
		lastActivity, finishedAt, finished := session.activity()
		if finished && now.Sub(finishedAt) > 1*time.Hour {
			expired = append(expired, session)
			continue
		}
		if !finished && now.Sub(lastActivity) > sm.idleTimeout {
			expired = append(expired, session)
		}
	}

	sm.mu.Lock()
	var stale []*GameSession
	for _, session := range expired {
		// it may have been removed (or replaced) while we were reading
		if current, ok := sm.Session[session.GameID]; ok && current == session {
			delete(sm.Session, session.GameID)
			stale = append(stale, session)
		}
	}
	metrics.ActiveSessions.Set(float64(len(sm.Session)))
	sm.mu.Unlock()

	// shut down outside the manager lock; Shutdown takes the session lock
	for _, session := range stale {
		session.Shutdown()
	}

	if len(stale) > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d stale game sessions", len(stale))
	}
	return len(stale)
}
