package bot

import (
	"math"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// suggestLookahead plays current and then the best reply with next, and
// ranks the first move by the pair. A move after which next cannot be
// placed anywhere is heavily penalised: it would cost a life.
func suggestLookahead(grid *domain.Grid, current, next domain.Piece) (Move, bool) {
	moves := candidates(grid, current)
	if len(moves) == 0 {
		return Move{}, false
	}

	for i := range moves {
		after, lc := simulate(grid, current, moves[i])
		moves[i].Lines, moves[i].Blocks = lc.Lines(), lc.Blocks()

		follow := bestFollowUp(after, next)
		moves[i].Score = immediateScore(lc) + follow + centerPenalty(grid, moves[i])
	}

	return findBestMove(moves), true
}

func bestFollowUp(grid *domain.Grid, next domain.Piece) int {
	replies := candidates(grid, next)
	if len(replies) == 0 {
		return scoreDeadEnd + evaluateGrid(grid)
	}

	best := math.MinInt
	for _, r := range replies {
		after, lc := simulate(grid, next, r)
		if s := immediateScore(lc) + evaluateGrid(after); s > best {
			best = s
		}
	}
	return best
}
