package game

import (
	"time"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// SoundCue names a feedback event. Playing it is up to the client.
type SoundCue string

const (
	SoundPlace    SoundCue = "place"
	SoundFail     SoundCue = "fail"
	SoundClear    SoundCue = "clear"
	SoundRotate   SoundCue = "rotate"
	SoundLifeLost SoundCue = "lifelost"
	SoundGameOver SoundCue = "gameover"
)

// TurnResult is the settlement of one successful placement. Board is the
// grid after cleared cells were emptied.
type TurnResult struct {
	Lines      int
	Blocks     int
	Gained     int
	Scoreboard domain.Scoreboard
	Board      [][]int
}

// Listeners holds at most one handler per event kind. A nil handler is a no-op.
// Handlers run while the session lock is held: they must not call back into
// the session.
type Listeners struct {
	PiecesChanged      func(current, next domain.Piece)
	LinesCleared       func(coords []domain.Coordinate)
	LifeLost           func(lives int)
	GameOver           func(final domain.Scoreboard)
	Placed             func(x, y int, result TurnResult)
	PlacementRejected  func(x, y int)
	CountdownRestarted func(delay time.Duration)
	Sound              func(cue SoundCue)
}

func (l *Listeners) piecesChanged(current, next domain.Piece) {
	if l.PiecesChanged != nil {
		l.PiecesChanged(current, next)
	}
}

func (l *Listeners) linesCleared(coords []domain.Coordinate) {
	if l.LinesCleared != nil {
		l.LinesCleared(coords)
	}
}

func (l *Listeners) lifeLost(lives int) {
	if l.LifeLost != nil {
		l.LifeLost(lives)
	}
}

func (l *Listeners) gameOver(final domain.Scoreboard) {
	if l.GameOver != nil {
		l.GameOver(final)
	}
}

func (l *Listeners) placed(x, y int, result TurnResult) {
	if l.Placed != nil {
		l.Placed(x, y, result)
	}
}

func (l *Listeners) placementRejected(x, y int) {
	if l.PlacementRejected != nil {
		l.PlacementRejected(x, y)
	}
}

func (l *Listeners) countdownRestarted(delay time.Duration) {
	if l.CountdownRestarted != nil {
		l.CountdownRestarted(delay)
	}
}

func (l *Listeners) sound(cue SoundCue) {
	if l.Sound != nil {
		l.Sound(cue)
	}
}
