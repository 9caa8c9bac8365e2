package display

import (
	"errors"

	"github.com/plus3/tetris/tetris"
)

type multi []tetris.Display

// Multi returns a Display that forwards every command to each of ds in
// order. Every display receives the command even when an earlier one fails;
// the failures are joined.
func Multi(ds ...tetris.Display) tetris.Display {
	out := make(multi, 0, len(ds))
	for _, d := range ds {
		if d == nil {
			continue
		}
		if m, ok := d.(multi); ok {
			out = append(out, m...)
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m multi) each(fn func(tetris.Display) error) error {
	var errs []error
	for _, d := range m {
		if err := fn(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) SetCell(row, col int, t tetris.Type, rotation int, on bool) error {
	return m.each(func(d tetris.Display) error { return d.SetCell(row, col, t, rotation, on) })
}

func (m multi) SetScore(v tetris.Digits) error {
	return m.each(func(d tetris.Display) error { return d.SetScore(v) })
}

func (m multi) SetNext(t tetris.Type) error {
	return m.each(func(d tetris.Display) error { return d.SetNext(t) })
}

func (m multi) SetSpeed(level int) error {
	return m.each(func(d tetris.Display) error { return d.SetSpeed(level) })
}

func (m multi) ClearRow(row int) error {
	return m.each(func(d tetris.Display) error { return d.ClearRow(row) })
}

func (m multi) SetPause(code tetris.PauseCode) error {
	return m.each(func(d tetris.Display) error { return d.SetPause(code) })
}

func (m multi) Reset() error {
	return m.each(func(d tetris.Display) error { return d.Reset() })
}
