package tetris

import (
	"slices"
	"strings"
)

// Board dimensions. The well is fixed at 10 columns by 22 rows; row 0 is the
// top.
const (
	Width  = 10
	Height = 22
)

// Board is the occupancy grid. The zero value is an empty board. Board is a
// plain array so two boards compare with ==.
type Board [Height][Width]bool

// InBounds reports whether c lies inside the grid.
func InBounds(c Cell) bool {
	return c.Col >= 0 && c.Col < Width && c.Row >= 0 && c.Row < Height
}

// Occupied reports whether the cell at (col, row) is filled. Out-of-bounds
// cells report false.
func (b *Board) Occupied(col, row int) bool {
	if !InBounds(Cell{Col: col, Row: row}) {
		return false
	}
	return b[row][col]
}

// Toggle flips every in-bounds cell of s and returns how many of those cells
// are occupied afterwards. Out-of-bounds cells are skipped. A result of 4
// means all four cells were inside the grid and previously free. Toggle is
// its own inverse.
func (b *Board) Toggle(s Shape) int {
	n := 0
	for _, c := range s {
		if !InBounds(c) {
			continue
		}
		b[c.Row][c.Col] = !b[c.Row][c.Col]
		if b[c.Row][c.Col] {
			n++
		}
	}
	return n
}

// Fits reports whether every cell of candidate is inside the grid and is
// either free or one of the cells in own. It never mutates the board.
func (b *Board) Fits(candidate Shape, own []Cell) bool {
	for _, c := range candidate {
		if !InBounds(c) {
			return false
		}
		if b[c.Row][c.Col] && !slices.Contains(own, c) {
			return false
		}
	}
	return true
}

// place moves a footprint from old to next. The caller must have checked
// Fits(next, old) first.
func (b *Board) place(old, next Shape) {
	b.Toggle(old)
	b.Toggle(next)
}

// RowComplete reports whether all cells in row are occupied.
func (b *Board) RowComplete(row int) bool {
	for _, v := range b[row] {
		if !v {
			return false
		}
	}
	return true
}

// ClearAndShift removes row: every row above it moves down by one and row 0
// becomes empty.
func (b *Board) ClearAndShift(row int) {
	for r := row; r > 0; r-- {
		b[r] = b[r-1]
	}
	b[0] = [Width]bool{}
}

// Count returns the number of occupied cells.
func (b *Board) Count() int {
	n := 0
	for r := range b {
		for _, v := range b[r] {
			if v {
				n++
			}
		}
	}
	return n
}

// Reset empties the board.
func (b *Board) Reset() {
	*b = Board{}
}

// String renders the board one row per line, '#' for occupied and '.' for
// free cells.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(Height * (Width + 1))
	for r := range b {
		for _, v := range b[r] {
			if v {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
