package domain

import "fmt"

// Grid is a fixed cols x rows matrix of cells. Cells are stored row-major,
// cells[y][x], so row scans stay contiguous.
type Grid struct {
	cols  int
	rows  int
	cells [][]Cell
}

func NewGrid(cols, rows int) *Grid {
	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
	}
	return &Grid{cols: cols, rows: rows, cells: cells}
}

// NewGridFromInts rebuilds a grid from IntCells output. Rows shorter than
// the first row are padded with empty cells.
func NewGridFromInts(cells [][]int) *Grid {
	cols := 0
	if len(cells) > 0 {
		cols = len(cells[0])
	}
	g := NewGrid(cols, len(cells))
	for y, row := range cells {
		for x := 0; x < cols && x < len(row); x++ {
			g.cells[y][x] = Cell(row[x])
		}
	}
	return g
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	return &Grid{cols: g.cols, rows: g.rows, cells: g.Cells()}
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Get returns the cell at (x, y), or ErrOutOfRange.
func (g *Grid) Get(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Empty, fmt.Errorf("%w: (%d, %d) on %dx%d grid", ErrOutOfRange, x, y, g.cols, g.rows)
	}
	return g.cells[y][x], nil
}

func (g *Grid) Set(x, y int, value Cell) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) on %dx%d grid", ErrOutOfRange, x, y, g.cols, g.rows)
	}
	g.cells[y][x] = value
	return nil
}

// CanPlace reports whether every occupied cell of the piece, anchored at the
// piece's centre, lands on an empty in-bounds cell. A cell that would fall
// outside the grid counts as occupied.
func (g *Grid) CanPlace(p Piece, anchorX, anchorY int) bool {
	for _, off := range p.Offsets() {
		x, y := anchorX+off.X, anchorY+off.Y
		if !g.InBounds(x, y) || g.cells[y][x] != Empty {
			return false
		}
	}
	return true
}

// Place writes the piece color into its footprint. Callers validate with
// CanPlace first; out-of-range cells are skipped rather than checked.
func (g *Grid) Place(p Piece, anchorX, anchorY int) []Coordinate {
	written := make([]Coordinate, 0, 9)
	for _, off := range p.Offsets() {
		x, y := anchorX+off.X, anchorY+off.Y
		if !g.InBounds(x, y) {
			continue
		}
		g.cells[y][x] = p.Color()
		written = append(written, Coordinate{X: x, Y: y})
	}
	return written
}

func (g *Grid) RowIsFull(y int) bool {
	if y < 0 || y >= g.rows {
		return false
	}
	for x := 0; x < g.cols; x++ {
		if g.cells[y][x] == Empty {
			return false
		}
	}
	return true
}

func (g *Grid) ColIsFull(x int) bool {
	if x < 0 || x >= g.cols {
		return false
	}
	for y := 0; y < g.rows; y++ {
		if g.cells[y][x] == Empty {
			return false
		}
	}
	return true
}

// Clear empties every listed coordinate. Out-of-range entries are ignored.
func (g *Grid) Clear(coords []Coordinate) {
	for _, c := range coords {
		if g.InBounds(c.X, c.Y) {
			g.cells[c.Y][c.X] = Empty
		}
	}
}

// Reset empties the whole grid.
func (g *Grid) Reset() {
	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x] = Empty
		}
	}
}

// this creates a deep copy of the cells, row-major
func (g *Grid) Cells() [][]Cell {
	out := make([][]Cell, len(g.cells))
	for y := range g.cells {
		out[y] = make([]Cell, len(g.cells[y]))
		copy(out[y], g.cells[y])
	}
	return out
}

// IntCells is Cells converted for JSON storage.
func (g *Grid) IntCells() [][]int {
	out := make([][]int, len(g.cells))
	for y := range g.cells {
		out[y] = make([]int, len(g.cells[y]))
		for x, v := range g.cells[y] {
			out[y][x] = int(v)
		}
	}
	return out
}
