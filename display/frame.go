package display

import (
	"sync"

	"github.com/kamstrup/intmap"
	"github.com/plus3/tetris/tetris"
)

// Empty marks a free cell in a Snapshot grid.
const Empty = -1

// Snapshot is a copy of a Frame taken for rendering.
type Snapshot struct {
	// Grid holds the tetris.Type filling each cell, or Empty.
	Grid    [tetris.Height][tetris.Width]int
	Score   tetris.Digits
	Next    tetris.Type
	HasNext bool
	Level   int
	Pause   tetris.PauseCode
	Cleared int
}

// Occupied reports whether the cell at (col, row) is filled.
func (s *Snapshot) Occupied(col, row int) bool {
	return s.Grid[row][col] != Empty
}

// Frame is a Display that mirrors what a screen should show. It resolves
// piece commands to cells through the shape catalog and applies row clears
// the same way the board does. Renderers running on another goroutine read
// it through Snapshot.
type Frame struct {
	mu      sync.Mutex
	cells   *intmap.Map[int, tetris.Type]
	score   tetris.Digits
	next    tetris.Type
	hasNext bool
	level   int
	pause   tetris.PauseCode
	cleared int
}

// NewFrame returns an empty frame at speed level 1, paused, matching an
// idle controller.
func NewFrame() *Frame {
	return &Frame{
		cells: intmap.New[int, tetris.Type](tetris.Width * tetris.Height),
		level: 1,
		pause: tetris.PausePaused,
	}
}

func cellKey(col, row int) int {
	return row*tetris.Width + col
}

func (f *Frame) SetCell(row, col int, t tetris.Type, rotation int, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range tetris.Cells(t, rotation).Offset(col, row) {
		if !tetris.InBounds(c) {
			continue
		}
		if on {
			f.cells.Put(cellKey(c.Col, c.Row), t)
		} else {
			f.cells.Del(cellKey(c.Col, c.Row))
		}
	}
	return nil
}

func (f *Frame) SetScore(d tetris.Digits) error {
	f.mu.Lock()
	f.score = d
	f.mu.Unlock()
	return nil
}

func (f *Frame) SetNext(t tetris.Type) error {
	f.mu.Lock()
	f.next = t
	f.hasNext = true
	f.mu.Unlock()
	return nil
}

func (f *Frame) SetSpeed(level int) error {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
	return nil
}

// ClearRow drops row and moves every row above it down by one.
func (f *Frame) ClearRow(row int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	shifted := intmap.New[int, tetris.Type](f.cells.Len())
	f.cells.ForEach(func(k int, t tetris.Type) bool {
		r, c := k/tetris.Width, k%tetris.Width
		switch {
		case r < row:
			shifted.Put(cellKey(c, r+1), t)
		case r > row:
			shifted.Put(k, t)
		}
		return true
	})
	f.cells = shifted
	f.cleared++
	return nil
}

func (f *Frame) SetPause(code tetris.PauseCode) error {
	f.mu.Lock()
	f.pause = code
	f.mu.Unlock()
	return nil
}

func (f *Frame) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cells.Clear()
	f.score = 0
	f.hasNext = false
	f.level = 1
	f.cleared = 0
	return nil
}

// Snapshot copies the frame.
func (f *Frame) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		Score:   f.score,
		Next:    f.next,
		HasNext: f.hasNext,
		Level:   f.level,
		Pause:   f.pause,
		Cleared: f.cleared,
	}
	for r := range s.Grid {
		for c := range s.Grid[r] {
			s.Grid[r][c] = Empty
		}
	}
	f.cells.ForEach(func(k int, t tetris.Type) bool {
		s.Grid[k/tetris.Width][k%tetris.Width] = int(t)
		return true
	})
	return s
}
