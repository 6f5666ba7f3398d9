package bot

import (
	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// Score weights, highest priority first.
const (
	scoreDeadEnd        = -1000000 // next piece fits nowhere after this move
	scoreClearedBlock   = 1000     // per line per block, mirrors the game's own scoring
	scoreNearFullLine   = 40       // row or column missing exactly one cell
	scoreTrappedCell    = -60      // empty cell boxed in on all four sides
	scoreFilledCell     = -15      // every occupied cell left on the board
	scoreCenterDistance = -2       // per step of the anchor away from the centre
)

// immediateScore values the clear a placement triggers.
func immediateScore(lc domain.LineClear) int {
	return lc.Lines() * lc.Blocks() * scoreClearedBlock
}

// evaluateGrid is a heuristic for how playable a settled board is.
func evaluateGrid(g *domain.Grid) int {
	score := 0

	for y := 0; y < g.Rows(); y++ {
		empty := 0
		for x := 0; x < g.Cols(); x++ {
			if cellAt(g, x, y) == domain.Empty {
				empty++
				if isTrapped(g, x, y) {
					score += scoreTrappedCell
				}
			} else {
				score += scoreFilledCell
			}
		}
		if empty == 1 {
			score += scoreNearFullLine
		}
	}

	for x := 0; x < g.Cols(); x++ {
		empty := 0
		for y := 0; y < g.Rows(); y++ {
			if cellAt(g, x, y) == domain.Empty {
				empty++
			}
		}
		if empty == 1 {
			score += scoreNearFullLine
		}
	}

	return score
}

// isTrapped reports whether only a single-cell piece could ever fill (x, y).
func isTrapped(g *domain.Grid, x, y int) bool {
	neighbours := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for _, d := range neighbours {
		nx, ny := x+d[0], y+d[1]
		if g.InBounds(nx, ny) && cellAt(g, nx, ny) == domain.Empty {
			return false
		}
	}
	return true
}

func cellAt(g *domain.Grid, x, y int) domain.Cell {
	v, err := g.Get(x, y)
	if err != nil {
		return domain.Empty
	}
	return v
}

func centerPenalty(g *domain.Grid, m Move) int {
	dx := abs(m.X - g.Cols()/2)
	dy := abs(m.Y - g.Rows()/2)
	return (dx + dy) * scoreCenterDistance
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
