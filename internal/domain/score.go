package domain

import (
	"sort"
	"strings"
	"time"
)

const MaxNameLength = 32

// ScoreEntry is one line of the high-score table.
type ScoreEntry struct {
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	GameID    string    `json:"gameId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameRecord is what gets persisted when a session ends.
type GameRecord struct {
	GameID       string
	PlayerName   string
	Score        int
	Level        int
	LinesCleared int
	PiecesPlayed int
	Reason       string
	CreatedAt    time.Time
	FinishedAt   time.Time
	BoardState   [][]int
}

// SortScores orders entries best first; ties keep the earlier entry first.
func SortScores(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

// IsHighScore reports whether score earns a place on a table capped at limit.
// entries must be sorted best first.
func IsHighScore(entries []ScoreEntry, score, limit int) bool {
	if limit <= 0 {
		return false
	}
	if len(entries) < limit {
		return true
	}
	return score > entries[limit-1].Score
}

// NormalizeName trims a player name and reports whether it is usable.
// ':' is reserved as the name/score separator of the text table format.
func NormalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLength || strings.ContainsAny(name, ":\n") {
		return "", false
	}
	return name, true
}
