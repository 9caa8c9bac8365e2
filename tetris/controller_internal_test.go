package tetris

import (
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	NopDisplay
	cells   []string
	cleared []int
	scores  []int
	pauses  []PauseCode
}

func (f *fakeDisplay) SetCell(row, col int, t Type, rotation int, on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	f.cells = append(f.cells, t.String()+"@"+strconv.Itoa(row)+","+strconv.Itoa(col)+"/"+strconv.Itoa(rotation)+":"+state)
	return nil
}

func (f *fakeDisplay) ClearRow(row int) error {
	f.cleared = append(f.cleared, row)
	return nil
}

func (f *fakeDisplay) SetScore(d Digits) error {
	f.scores = append(f.scores, d.Value())
	return nil
}

func (f *fakeDisplay) SetPause(code PauseCode) error {
	f.pauses = append(f.pauses, code)
	return nil
}

// newPlaying returns a controller in the Playing phase with an empty board
// and no falling piece cells, and a display with no recorded calls.
func newPlaying(t *testing.T) (*Controller, *fakeDisplay) {
	t.Helper()
	d := &fakeDisplay{}
	c := NewController(d, WithSeed(42), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	c.Reset()
	require.Equal(t, PhasePlaying, c.Phase())
	c.board.Reset()
	*d = fakeDisplay{}
	return c, d
}

// setPiece replaces the falling piece and puts its cells on the board.
func (c *Controller) setPiece(p Piece) {
	c.piece = p
	c.board.Toggle(p.Footprint())
}

func fill(b *Board, row int, cols ...int) {
	for _, col := range cols {
		b[row][col] = true
	}
}

func fillFull(b *Board, row int) {
	for col := range Width {
		b[row][col] = true
	}
}

func TestSpawnPlacement(t *testing.T) {
	for typ := range Type(TypeCount) {
		t.Run(typ.String(), func(t *testing.T) {
			c, d := newPlaying(t)

			require.True(t, c.trySpawn(typ))
			assert.Equal(t, 4, c.board.Count())

			lo, hi := 4, 7
			if typ == TypeI {
				lo, hi = 3, 6
			}
			var row0 []int
			for col := range Width {
				if c.board.Occupied(col, 0) {
					row0 = append(row0, col)
				}
			}
			require.NotEmpty(t, row0)
			for _, col := range row0 {
				assert.GreaterOrEqual(t, col, lo)
				assert.LessOrEqual(t, col, hi)
			}
			if typ == TypeI {
				assert.Equal(t, []int{3, 4, 5, 6}, row0)
			}
			assert.Equal(t, []string{typ.String() + "@0," + strconv.Itoa(lo) + "/0:on"}, d.cells)
		})
	}
}

func TestSpawnBlocked(t *testing.T) {
	c, d := newPlaying(t)
	fill(&c.board, 1, 5)
	before := c.board

	assert.False(t, c.trySpawn(TypeO))
	assert.Equal(t, before, c.board)
	assert.Empty(t, d.cells)
}

func TestMoveLeftToWall(t *testing.T) {
	c, d := newPlaying(t)
	require.True(t, c.trySpawn(TypeO))
	d.cells = nil

	for i := 1; i <= 4; i++ {
		require.Equal(t, Committed, c.Move(-1, Horizontal))
		assert.Equal(t, 4-i, c.piece.X)
		assert.Equal(t, 4, c.board.Count())
		for _, cell := range c.piece.Footprint() {
			assert.True(t, c.board.Occupied(cell.Col, cell.Row))
		}
	}
	assert.True(t, c.board.Occupied(0, 0))
	assert.True(t, c.board.Occupied(1, 1))
	assert.Len(t, d.cells, 8)
	assert.Equal(t, "O@0,4/0:off", d.cells[0])
	assert.Equal(t, "O@0,3/0:on", d.cells[1])

	before := c.board
	assert.Equal(t, Rejected, c.Move(-1, Horizontal))
	assert.Equal(t, before, c.board)
	assert.Equal(t, 0, c.piece.X)
	assert.Len(t, d.cells, 8, "a rejected move sends nothing")
}

func TestMoveBlockedByStack(t *testing.T) {
	c, _ := newPlaying(t)
	c.setPiece(Piece{Type: TypeI, Rotation: 1, X: 5, Y: 10})
	fill(&c.board, 12, 6)
	before := c.board

	assert.Equal(t, Rejected, c.Move(1, Horizontal))
	assert.Equal(t, before, c.board)
	assert.Equal(t, Committed, c.Move(-1, Vertical))
	assert.Equal(t, 9, c.piece.Y)
}

func TestRotate(t *testing.T) {
	t.Run("in place", func(t *testing.T) {
		c, d := newPlaying(t)
		require.True(t, c.trySpawn(TypeI))
		d.cells = nil

		assert.Equal(t, Committed, c.Rotate())
		assert.Equal(t, 1, c.piece.Rotation)
		assert.Equal(t, []string{"I@0,3/0:off", "I@0,3/1:on"}, d.cells)
		for row := range 4 {
			assert.True(t, c.board.Occupied(3, row))
		}
		assert.Equal(t, 4, c.board.Count())
	})

	t.Run("raw counter wraps at four", func(t *testing.T) {
		c, _ := newPlaying(t)
		c.setPiece(Piece{Type: TypeT, X: 4, Y: 5})
		start := c.board
		for i := range 4 {
			require.Equal(t, Committed, c.Rotate())
			assert.Equal(t, (i+1)%4, c.piece.Rotation)
		}
		assert.Equal(t, start, c.board)
	})

	t.Run("O still advances the counter", func(t *testing.T) {
		c, _ := newPlaying(t)
		c.setPiece(Piece{Type: TypeO, X: 4, Y: 5})
		before := c.board
		assert.Equal(t, Committed, c.Rotate())
		assert.Equal(t, 1, c.piece.Rotation)
		assert.Equal(t, before, c.board)
	})

	t.Run("rejected at the floor", func(t *testing.T) {
		c, d := newPlaying(t)
		c.setPiece(Piece{Type: TypeI, X: 3, Y: 21})
		before := c.board

		assert.Equal(t, Rejected, c.Rotate())
		assert.Equal(t, before, c.board)
		assert.Equal(t, 0, c.piece.Rotation)
		assert.Empty(t, d.cells)
	})

	t.Run("rejected by a neighbour", func(t *testing.T) {
		c, _ := newPlaying(t)
		c.setPiece(Piece{Type: TypeZ, X: 4, Y: 5})
		fill(&c.board, 6, 4)
		before := c.board

		assert.Equal(t, Rejected, c.Rotate())
		assert.Equal(t, before, c.board)
	})
}

func TestLineClearSingleRow(t *testing.T) {
	for speed := range SpeedLevels {
		t.Run(strconv.Itoa(speed), func(t *testing.T) {
			c, d := newPlaying(t)
			c.state.Speed = speed
			c.state.Score = 5
			c.state.Next = TypeO
			fillFull(&c.board, 21)

			cleared, ok := c.LockAndAdvance()

			require.True(t, ok)
			assert.Equal(t, 1, cleared)
			assert.Equal(t, []int{21}, d.cleared)
			assert.Equal(t, 5+speed+1, c.state.Score)
			assert.Equal(t, []int{5 + speed + 1}, d.scores)
			assert.True(t, c.state.Suppress)

			// Only the new piece remains.
			assert.Equal(t, 4, c.board.Count())
			for row := 2; row < Height; row++ {
				for col := range Width {
					assert.False(t, c.board.Occupied(col, row))
				}
			}
		})
	}
}

func TestLockWithoutClear(t *testing.T) {
	c, d := newPlaying(t)
	c.state.Next = TypeT
	c.state.SoftDrop = true
	fill(&c.board, 21, 0, 1, 2)

	cleared, ok := c.LockAndAdvance()

	require.True(t, ok)
	assert.Equal(t, 0, cleared)
	assert.Empty(t, d.cleared)
	assert.Equal(t, []int{0}, d.scores)
	assert.False(t, c.state.Suppress)
	assert.False(t, c.state.SoftDrop, "landing releases soft drop")
	assert.Equal(t, TypeT, c.piece.Type)
	assert.NotEqual(t, TypeT, c.state.Next)
}

// TestRowCompletedByFallingPiece fills row 21 except where the falling O will
// land, then lets the piece fall onto it.
func TestRowCompletedByFallingPiece(t *testing.T) {
	c, d := newPlaying(t)
	c.state.Next = TypeT
	fill(&c.board, 21, 2, 3, 4, 5, 6, 7, 8, 9)
	fill(&c.board, 10, 5)
	c.setPiece(Piece{Type: TypeO, X: 0, Y: 19})

	require.Equal(t, Committed, c.Move(1, Vertical))
	require.True(t, c.board.RowComplete(21))

	rows := c.board
	require.Equal(t, Locked, c.Move(1, Vertical))

	assert.Equal(t, []int{21}, d.cleared)
	assert.Equal(t, 1, c.state.Score)
	assert.Equal(t, []int{1}, d.scores)

	// Rows 0..20 moved down by one. Row 0 was empty before the new piece
	// spawned into it, so compare the board without the new piece.
	after := c.board
	after.Toggle(c.piece.Footprint())
	for row := 1; row < Height; row++ {
		assert.Equal(t, rows[row-1], after[row], "row %d", row)
	}
	assert.Equal(t, [Width]bool{}, after[0])
	assert.True(t, after.Occupied(5, 11))
	assert.True(t, after.Occupied(0, 21))
	assert.True(t, after.Occupied(1, 21))
}

func TestLineClearMultipleRows(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *Board)
		cleared []int
		remain  []Cell
	}{
		{
			name: "adjacent",
			setup: func(b *Board) {
				fill(b, 19, 9)
				fillFull(b, 20)
				fillFull(b, 21)
			},
			cleared: []int{20, 21},
			remain:  []Cell{{Col: 9, Row: 21}},
		},
		{
			name: "separated",
			setup: func(b *Board) {
				fillFull(b, 19)
				fill(b, 20, 0)
				fillFull(b, 21)
			},
			cleared: []int{19, 21},
			remain:  []Cell{{Col: 0, Row: 21}},
		},
		{
			name: "four",
			setup: func(b *Board) {
				for row := 18; row < Height; row++ {
					fillFull(b, row)
				}
				fill(b, 17, 3, 4)
			},
			cleared: []int{18, 19, 20, 21},
			remain:  []Cell{{Col: 3, Row: 21}, {Col: 4, Row: 21}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, d := newPlaying(t)
			c.state.Next = TypeO
			tt.setup(&c.board)

			cleared, ok := c.LockAndAdvance()

			require.True(t, ok)
			n := len(tt.cleared)
			assert.Equal(t, n, cleared)
			assert.Equal(t, tt.cleared, d.cleared)
			assert.Equal(t, n*n, c.state.Score)

			after := c.board
			after.Toggle(c.piece.Footprint())
			assert.Equal(t, len(tt.remain), after.Count())
			for _, cell := range tt.remain {
				assert.True(t, after.Occupied(cell.Col, cell.Row), "cell %v", cell)
			}
		})
	}
}

func TestLockEndsGameWhenSpawnBlocked(t *testing.T) {
	c, d := newPlaying(t)
	c.state.Next = TypeO
	fill(&c.board, 0, 4, 5)
	fill(&c.board, 1, 4, 5)
	before := c.board

	cleared, ok := c.LockAndAdvance()

	assert.False(t, ok)
	assert.Equal(t, 0, cleared)
	assert.Equal(t, PhaseGameOver, c.Phase())
	assert.Equal(t, before, c.board)
	assert.Equal(t, []PauseCode{PauseGameOver}, d.pauses)
	assert.Equal(t, Rejected, c.Move(-1, Horizontal))
}

func TestAnnounceNextAvoidsFallingType(t *testing.T) {
	c, _ := newPlaying(t)
	seen := make(map[Type]map[Type]bool)
	for typ := range Type(TypeCount) {
		seen[typ] = make(map[Type]bool)
		c.piece.Type = typ
		for range 500 {
			c.announceNext()
			assert.NotEqual(t, typ, c.state.Next)
			seen[typ][c.state.Next] = true
		}
		assert.Len(t, seen[typ], TypeCount-1, "every other type is reachable after %s", typ)
	}
}

func TestConsumeSuppress(t *testing.T) {
	c, _ := newPlaying(t)
	assert.False(t, c.ConsumeSuppress())
	c.state.Suppress = true
	assert.True(t, c.ConsumeSuppress())
	assert.False(t, c.ConsumeSuppress())
}
