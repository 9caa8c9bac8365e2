// Package tetris implements the game-state engine: the shape catalog, the
// 10x22 board, the falling piece, score and speed bookkeeping, and the
// controller that turns player actions and gravity ticks into board
// mutations and display commands.
package tetris

import "fmt"

// Type identifies one of the seven tetrominoes.
type Type int

const (
	TypeI Type = iota
	TypeO
	TypeT
	TypeL
	TypeJ
	TypeZ
	TypeS
)

// TypeCount is the number of tetromino types.
const TypeCount = 7

var typeNames = [TypeCount]string{"I", "O", "T", "L", "J", "Z", "S"}

func (t Type) String() string {
	if t < 0 || int(t) >= TypeCount {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is one of the seven tetromino types.
func (t Type) Valid() bool {
	return t >= 0 && int(t) < TypeCount
}

// ParseType returns the type named by s ("I", "O", ...).
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tetromino type %q", s)
}

// Cell is a (column, row) pair. Inside the catalog it is an offset in the
// 4x4 bounding box; on the board it is an absolute coordinate.
type Cell struct {
	Col, Row int
}

// Shape is the set of four cells a piece occupies.
type Shape [4]Cell

// Offset returns the shape translated by (dx, dy).
func (s Shape) Offset(dx, dy int) Shape {
	var out Shape
	for i, c := range s {
		out[i] = Cell{Col: c.Col + dx, Row: c.Row + dy}
	}
	return out
}

// box builds a shape from four indices into the 4x4 box, numbered row-major.
func box(a, b, c, d int) Shape {
	idx := [4]int{a, b, c, d}
	var s Shape
	for i, n := range idx {
		s[i] = Cell{Col: n % 4, Row: n / 4}
	}
	return s
}

// catalog holds one entry per distinct orientation. The number of entries
// for a type is its rotation period.
var catalog = [TypeCount][]Shape{
	TypeI: {box(0, 1, 2, 3), box(0, 4, 8, 12)},
	TypeO: {box(0, 1, 4, 5)},
	TypeT: {box(0, 1, 2, 5), box(1, 4, 5, 9), box(1, 4, 5, 6), box(0, 4, 5, 8)},
	TypeL: {box(0, 1, 2, 4), box(0, 1, 5, 9), box(2, 4, 5, 6), box(0, 4, 8, 9)},
	TypeJ: {box(0, 1, 2, 6), box(1, 5, 8, 9), box(0, 4, 5, 6), box(0, 1, 4, 8)},
	TypeZ: {box(0, 1, 5, 6), box(1, 4, 5, 8)},
	TypeS: {box(1, 2, 4, 5), box(0, 4, 5, 9)},
}

// Period returns how many distinct orientations t has: 1 for O, 2 for I, Z
// and S, 4 for T, L and J.
func Period(t Type) int {
	if !t.Valid() {
		panic(fmt.Sprintf("tetris: invalid type %d", int(t)))
	}
	return len(catalog[t])
}

// Cells returns the four offsets occupied by type t at the given rotation.
// Any integer rotation is accepted; it is reduced by the type's period.
func Cells(t Type, rotation int) Shape {
	p := Period(t)
	r := rotation % p
	if r < 0 {
		r += p
	}
	return catalog[t][r]
}
