package bot

import (
	"math/rand"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// suggestEasy takes the first placement that clears anything, otherwise a random legal one.
func suggestEasy(grid *domain.Grid, current domain.Piece) (Move, bool) {
	moves := candidates(grid, current)
	if len(moves) == 0 {
		return Move{}, false
	}

	for _, m := range moves {
		_, lc := simulate(grid, current, m)
		if lc.Lines() > 0 {
			m.Lines, m.Blocks = lc.Lines(), lc.Blocks()
			m.Score = immediateScore(lc)
			return m, true
		}
	}

	return moves[rand.Intn(len(moves))], true
}
