package bot

import (
	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// suggestMedium scores each placement on the clear it triggers and the board it leaves.
func suggestMedium(grid *domain.Grid, current domain.Piece) (Move, bool) {
	moves := candidates(grid, current)
	if len(moves) == 0 {
		return Move{}, false
	}

	for i := range moves {
		after, lc := simulate(grid, current, moves[i])
		moves[i].Lines, moves[i].Blocks = lc.Lines(), lc.Blocks()
		moves[i].Score = immediateScore(lc) + evaluateGrid(after) + centerPenalty(grid, moves[i])
	}

	return findBestMove(moves), true
}

// findBestMove returns the highest score; ties keep the earliest candidate,
// which is the one needing the fewest rotations.
func findBestMove(moves []Move) Move {
	best := moves[0]
	for _, m := range moves[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best
}
