package cleanup

import (
	"context"
	"log"
	"sync"
	"time"
)

// gameRecordRetention is how long finished game records are kept. Scores
// live in their own table and are never pruned.
const gameRecordRetention = 30 * 24 * time.Hour

type SessionReaper interface {
	CleanupOldSessions(now time.Time) int
}

type GameRecordPruner interface {
	DeleteGamesFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Worker struct {
	Sessions SessionReaper
	Games    GameRecordPruner // Optional, can be nil
	Interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

func NewWorker(sessions SessionReaper, games GameRecordPruner) *Worker {
	return &Worker{
		Sessions: sessions,
		Games:    games,
		Interval: 1 * time.Hour,
		stop:     make(chan struct{}),
	}
}

// Start runs one cleanup immediately and then one per interval until Stop.
func (w *Worker) Start() {
	go w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.runCleanup()
			case <-w.stop:
				return
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *Worker) runCleanup() {
	log.Println("[CLEANUP] Starting scheduled cleanup task...")

	now := time.Now()
	w.Sessions.CleanupOldSessions(now)

	if w.Games == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deletedCount, err := w.Games.DeleteGamesFinishedBefore(ctx, now.Add(-gameRecordRetention))
	if err != nil {
		log.Printf("[CLEANUP] Error pruning game records: %v", err)
	} else if deletedCount > 0 {
		log.Printf("[CLEANUP] Removed %d old game records from database", deletedCount)
	}
}
