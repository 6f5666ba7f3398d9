package domain

import "github.com/kamstrup/intmap"

// LineClear is the outcome of scanning the grid after a placement.
type LineClear struct {
	Rows        []int
	Cols        []int
	Coordinates []Coordinate // deduplicated, sorted by y then x
}

// Lines counts full rows plus full columns. A shared corner does not reduce it.
func (lc LineClear) Lines() int {
	return len(lc.Rows) + len(lc.Cols)
}

// Blocks counts distinct cells, so a row/column intersection counts once.
func (lc LineClear) Blocks() int {
	return len(lc.Coordinates)
}

// FindLines checks every row and column independently and collects the
// union of their cells. The grid is not modified.
func FindLines(g *Grid) LineClear {
	var lc LineClear
	// cells keyed y*cols+x, so walking keys in order yields y-then-x
	seen := intmap.New[int, struct{}](g.Cols() + g.Rows())

	for y := 0; y < g.Rows(); y++ {
		if !g.RowIsFull(y) {
			continue
		}
		lc.Rows = append(lc.Rows, y)
		for x := 0; x < g.Cols(); x++ {
			seen.Put(y*g.Cols()+x, struct{}{})
		}
	}

	for x := 0; x < g.Cols(); x++ {
		if !g.ColIsFull(x) {
			continue
		}
		lc.Cols = append(lc.Cols, x)
		for y := 0; y < g.Rows(); y++ {
			seen.Put(y*g.Cols()+x, struct{}{})
		}
	}

	lc.Coordinates = make([]Coordinate, 0, seen.Len())
	if seen.Len() == 0 {
		return lc
	}
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			if seen.Has(y*g.Cols() + x) {
				lc.Coordinates = append(lc.Coordinates, Coordinate{X: x, Y: y})
			}
		}
	}

	return lc
}
