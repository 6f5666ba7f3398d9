package bot

import (
	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

// Move is a suggested placement: rotate the current piece Turns quarter
// turns clockwise, then place it centred on (X, Y).
type Move struct {
	X      int
	Y      int
	Turns  int
	Lines  int // lines the placement clears on its own
	Blocks int
	Score  int // heuristic value; only comparable within one call
}

// SuggestPlacement picks a placement for current based on difficulty.
// It reports false when the piece fits nowhere in any orientation.
func SuggestPlacement(grid *domain.Grid, current, next domain.Piece, difficulty string) (Move, bool) {
	switch difficulty {
	case "easy":
		return suggestEasy(grid, current)
	case "medium":
		return suggestMedium(grid, current)
	case "hard":
		return suggestLookahead(grid, current, next)
	default:
		return suggestMedium(grid, current)
	}
}

// candidates lists every legal placement of p, one entry per distinct
// orientation and anchor, in turn/row/column order.
func candidates(grid *domain.Grid, p domain.Piece) []Move {
	var moves []Move
	seen := make([]domain.Piece, 0, 4)

	for turns := 0; turns < 4; turns++ {
		rotated := p.Rotated(turns)
		if containsPiece(seen, rotated) {
			continue
		}
		seen = append(seen, rotated)

		for y := 0; y < grid.Rows(); y++ {
			for x := 0; x < grid.Cols(); x++ {
				if grid.CanPlace(rotated, x, y) {
					moves = append(moves, Move{X: x, Y: y, Turns: turns})
				}
			}
		}
	}
	return moves
}

func containsPiece(pieces []domain.Piece, p domain.Piece) bool {
	for _, q := range pieces {
		if q == p {
			return true
		}
	}
	return false
}

// simulate plays m on a copy of grid and settles full lines the same way a
// session does.
func simulate(grid *domain.Grid, p domain.Piece, m Move) (*domain.Grid, domain.LineClear) {
	after := grid.Clone()
	after.Place(p.Rotated(m.Turns), m.X, m.Y)
	lc := domain.FindLines(after)
	after.Clear(lc.Coordinates)
	return after, lc
}
