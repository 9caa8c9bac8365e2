package tetris

// Spawn columns for a new piece on row 0.
const (
	SpawnColumn  = 4
	SpawnColumnI = 3
)

// Piece is the falling tetromino. Rotation is the raw counter in 0..3; the
// catalog reduces it by the type's period on lookup.
type Piece struct {
	Type     Type
	Rotation int
	X, Y     int
}

// newPiece returns t in its spawn position.
func newPiece(t Type) Piece {
	x := SpawnColumn
	if t == TypeI {
		x = SpawnColumnI
	}
	return Piece{Type: t, X: x}
}

// Footprint returns the absolute board cells the piece covers.
func (p Piece) Footprint() Shape {
	return Cells(p.Type, p.Rotation).Offset(p.X, p.Y)
}

// Moved returns a copy of p displaced by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// Rotated returns a copy of p turned one step clockwise.
func (p Piece) Rotated() Piece {
	p.Rotation = (p.Rotation + 1) % 4
	return p
}
