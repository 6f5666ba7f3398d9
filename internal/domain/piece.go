package domain

import "fmt"

const PieceSize = 3

// catalog of shapes, drawn as rows top to bottom. '#' is occupied.
var catalog = []struct {
	name  string
	shape [PieceSize]string
}{
	{"line", [PieceSize]string{"...", "###", "..."}},
	{"c", [PieceSize]string{"...", "###", "#.#"}},
	{"plus", [PieceSize]string{".#.", "###", ".#."}},
	{"dot", [PieceSize]string{"...", ".#.", "..."}},
	{"square", [PieceSize]string{"##.", "##.", "..."}},
	{"l", [PieceSize]string{"...", "###", "..#"}},
	{"j", [PieceSize]string{"..#", "###", "..."}},
	{"s", [PieceSize]string{"...", ".##", "##."}},
	{"z", [PieceSize]string{"##.", ".##", "..."}},
	{"t", [PieceSize]string{"#..", "##.", "#.."}},
	{"x", [PieceSize]string{"#.#", ".#.", "#.#"}},
	{"corner", [PieceSize]string{"...", "##.", "#.."}},
	{"inverse_corner", [PieceSize]string{"#..", "##.", "..."}},
	{"double", [PieceSize]string{".#.", ".#.", "..."}},
	{"triple", [PieceSize]string{".#.", ".#.", ".#."}},
}

// PieceCount is the number of shapes in the catalog.
var PieceCount = len(catalog)

// Piece is an immutable shape: a 3x3 occupancy mask and a color id.
// mask is indexed [y][x]; the centre cell (1,1) is the placement anchor.
type Piece struct {
	index int
	mask  [PieceSize][PieceSize]bool
}

// PieceFromCatalog builds the piece at the given catalog index.
func PieceFromCatalog(index int) (Piece, error) {
	if index < 0 || index >= len(catalog) {
		return Piece{}, fmt.Errorf("%w: %d", ErrInvalidPiece, index)
	}
	p := Piece{index: index}
	for y, row := range catalog[index].shape {
		for x, ch := range row {
			p.mask[y][x] = ch == '#'
		}
	}
	return p, nil
}

// MustPiece is PieceFromCatalog for indices known to be valid.
func MustPiece(index int) Piece {
	p, err := PieceFromCatalog(index)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Piece) Index() int   { return p.index }
func (p Piece) Name() string { return catalog[p.index].name }

// Color is the cell value written to the grid; it never changes on rotation.
func (p Piece) Color() Cell { return Cell(p.index + 1) }

// Rotated returns a copy turned clockwise by quarterTurns (mod 4).
// Negative turns rotate counterclockwise.
func (p Piece) Rotated(quarterTurns int) Piece {
	turns := ((quarterTurns % 4) + 4) % 4
	out := p
	for i := 0; i < turns; i++ {
		var next [PieceSize][PieceSize]bool
		for y := 0; y < PieceSize; y++ {
			for x := 0; x < PieceSize; x++ {
				// (dx, dy) -> (-dy, dx) around the centre, y pointing down
				next[x][PieceSize-1-y] = out.mask[y][x]
			}
		}
		out.mask = next
	}
	return out
}

// Occupied reports whether mask cell (x, y) is filled.
func (p Piece) Occupied(x, y int) bool {
	if x < 0 || x >= PieceSize || y < 0 || y >= PieceSize {
		return false
	}
	return p.mask[y][x]
}

// Offsets lists occupied cells relative to the anchor, each in -1..+1.
func (p Piece) Offsets() []Coordinate {
	offsets := make([]Coordinate, 0, PieceSize*PieceSize)
	for y := 0; y < PieceSize; y++ {
		for x := 0; x < PieceSize; x++ {
			if p.Occupied(x, y) {
				offsets = append(offsets, Coordinate{X: x - 1, Y: y - 1})
			}
		}
	}
	return offsets
}

// Blocks renders the mask weighted by color, row-major, for display.
func (p Piece) Blocks() [][]int {
	blocks := make([][]int, PieceSize)
	for y := 0; y < PieceSize; y++ {
		blocks[y] = make([]int, PieceSize)
		for x := 0; x < PieceSize; x++ {
			if p.Occupied(x, y) {
				blocks[y][x] = int(p.Color())
			}
		}
	}
	return blocks
}

func (p Piece) String() string {
	return p.Name()
}
