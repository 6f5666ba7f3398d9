package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridGetSet(t *testing.T) {
	g := NewGrid(5, 4)
	assert.Equal(t, 5, g.Cols())
	assert.Equal(t, 4, g.Rows())

	v, err := g.Get(4, 3)
	require.NoError(t, err)
	assert.Equal(t, Empty, v)

	require.NoError(t, g.Set(4, 3, 7))
	v, err = g.Get(4, 3)
	require.NoError(t, err)
	assert.Equal(t, Cell(7), v)

	for _, c := range []Coordinate{{-1, 0}, {0, -1}, {5, 0}, {0, 4}} {
		_, err := g.Get(c.X, c.Y)
		assert.True(t, errors.Is(err, ErrOutOfRange), "get %v", c)
		assert.True(t, errors.Is(g.Set(c.X, c.Y, 1), ErrOutOfRange), "set %v", c)
	}
}

func TestCanPlaceTreatsOutOfBoundsAsOccupied(t *testing.T) {
	g := NewGrid(5, 5)

	for index := 0; index < PieceCount; index++ {
		for turns := 0; turns < 4; turns++ {
			p := MustPiece(index).Rotated(turns)
			for ax := -2; ax <= 6; ax++ {
				for ay := -2; ay <= 6; ay++ {
					inside := true
					for _, off := range p.Offsets() {
						if !g.InBounds(ax+off.X, ay+off.Y) {
							inside = false
						}
					}
					assert.Equal(t, inside, g.CanPlace(p, ax, ay),
						"piece %s turns %d anchor (%d,%d)", p, turns, ax, ay)
				}
			}
		}
	}
}

func TestCanPlaceRejectsOverlap(t *testing.T) {
	g := NewGrid(5, 5)
	plus := MustPiece(2)

	require.True(t, g.CanPlace(plus, 2, 2))
	require.NoError(t, g.Set(2, 1, 3))
	assert.False(t, g.CanPlace(plus, 2, 2))

	// the corner cells of the plus are not part of its footprint
	g.Reset()
	require.NoError(t, g.Set(1, 1, 3))
	assert.True(t, g.CanPlace(plus, 2, 2))
}

func TestPlaceWritesExactFootprint(t *testing.T) {
	for index := 0; index < PieceCount; index++ {
		g := NewGrid(5, 5)
		p := MustPiece(index).Rotated(index)
		require.True(t, g.CanPlace(p, 2, 2))

		written := g.Place(p, 2, 2)

		want := map[Coordinate]bool{}
		for _, off := range p.Offsets() {
			want[Coordinate{X: 2 + off.X, Y: 2 + off.Y}] = true
		}
		assert.Len(t, written, len(want))

		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				v, err := g.Get(x, y)
				require.NoError(t, err)
				if want[Coordinate{X: x, Y: y}] {
					assert.Equal(t, p.Color(), v, "piece %s at (%d,%d)", p, x, y)
				} else {
					assert.Equal(t, Empty, v, "piece %s at (%d,%d)", p, x, y)
				}
			}
		}
	}
}

func TestRowAndColumnFull(t *testing.T) {
	g := NewGrid(3, 4)
	for x := 0; x < 3; x++ {
		require.NoError(t, g.Set(x, 1, 1))
	}
	for y := 0; y < 4; y++ {
		require.NoError(t, g.Set(2, y, 1))
	}

	assert.True(t, g.RowIsFull(1))
	assert.False(t, g.RowIsFull(0))
	assert.False(t, g.RowIsFull(4))
	assert.True(t, g.ColIsFull(2))
	assert.False(t, g.ColIsFull(0))
	assert.False(t, g.ColIsFull(-1))

	g.Clear([]Coordinate{{X: 2, Y: 0}, {X: 9, Y: 9}})
	assert.False(t, g.ColIsFull(2))
}

func TestCellsIsACopy(t *testing.T) {
	g := NewGrid(2, 2)
	cells := g.Cells()
	cells[0][0] = 5

	v, _ := g.Get(0, 0)
	assert.Equal(t, Empty, v)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, g.IntCells())
}

func TestGridFromIntsAndClone(t *testing.T) {
	g := NewGridFromInts([][]int{{0, 3, 0}, {1}})
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, [][]int{{0, 3, 0}, {1, 0, 0}}, g.IntCells())

	c := g.Clone()
	require.NoError(t, c.Set(2, 1, 7))
	assert.Equal(t, [][]int{{0, 3, 0}, {1, 0, 0}}, g.IntCells())
	assert.Equal(t, [][]int{{0, 3, 0}, {1, 0, 7}}, c.IntCells())

	empty := NewGridFromInts(nil)
	assert.Equal(t, 0, empty.Rows())
	assert.False(t, empty.InBounds(0, 0))
}
