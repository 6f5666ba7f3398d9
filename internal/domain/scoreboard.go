package domain

// Scoreboard holds the four counters of a session.
type Scoreboard struct {
	Score      int `json:"score"`
	Level      int `json:"level"`
	Multiplier int `json:"multiplier"`
	Lives      int `json:"lives"`
}

func NewScoreboard(lives int) Scoreboard {
	return Scoreboard{
		Score:      0,
		Level:      0,
		Multiplier: 1,
		Lives:      lives,
	}
}

// ApplyTurn settles one placement. The score uses the multiplier from
// before this turn; the multiplier then grows on a clear or resets to 1.
func (s *Scoreboard) ApplyTurn(linesCleared, blocksCleared int) int {
	gained := linesCleared * blocksCleared * PointsPerBlock * s.Multiplier
	s.Score += gained

	if linesCleared > 0 {
		s.Multiplier++
	} else {
		s.Multiplier = 1
	}

	// score never decreases, but keep level monotonic regardless
	if level := s.Score / PointsPerLevel; level > s.Level {
		s.Level = level
	}
	return gained
}

// LoseLife decrements lives and cancels any combo. The caller checks for
// the terminal condition before calling.
func (s *Scoreboard) LoseLife() int {
	s.Lives--
	s.Multiplier = 1
	return s.Lives
}

// TimerDelay is the countdown length in milliseconds for a level.
func TimerDelay(level int) int {
	return max(2500, 12000-500*level)
}
