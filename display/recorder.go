// Package display holds Display adapters that are independent of any
// rendering backend: a command recorder, a fan-out, the Frame mirror that
// renderers draw from, and the register encoder used by the hardware.
package display

import (
	"fmt"

	"github.com/plus3/tetris/tetris"
)

// Command names as recorded by Recorder.
const (
	CmdSetCell  = "SetCell"
	CmdSetScore = "SetScore"
	CmdSetNext  = "SetNext"
	CmdSetSpeed = "SetSpeed"
	CmdClearRow = "ClearRow"
	CmdSetPause = "SetPause"
	CmdReset    = "Reset"
)

// Command is one recorded display call. Only the fields relevant to Name
// are set; Value carries the score, speed level, row or pause code.
type Command struct {
	Name     string
	Row, Col int
	Type     tetris.Type
	Rotation int
	On       bool
	Value    int
}

func (c Command) String() string {
	switch c.Name {
	case CmdSetCell:
		return fmt.Sprintf("%s(%d,%d,%s,%d,%t)", c.Name, c.Row, c.Col, c.Type, c.Rotation, c.On)
	case CmdSetNext:
		return fmt.Sprintf("%s(%s)", c.Name, c.Type)
	case CmdReset:
		return c.Name + "()"
	}
	return fmt.Sprintf("%s(%d)", c.Name, c.Value)
}

// Recorder is a Display that keeps every command it receives. Setting Err
// makes every call fail after recording.
type Recorder struct {
	Err      error
	commands []Command
}

func (r *Recorder) record(c Command) error {
	r.commands = append(r.commands, c)
	return r.Err
}

func (r *Recorder) SetCell(row, col int, t tetris.Type, rotation int, on bool) error {
	return r.record(Command{Name: CmdSetCell, Row: row, Col: col, Type: t, Rotation: rotation, On: on})
}

func (r *Recorder) SetScore(d tetris.Digits) error {
	return r.record(Command{Name: CmdSetScore, Value: d.Value()})
}

func (r *Recorder) SetNext(t tetris.Type) error {
	return r.record(Command{Name: CmdSetNext, Type: t})
}

func (r *Recorder) SetSpeed(level int) error {
	return r.record(Command{Name: CmdSetSpeed, Value: level})
}

func (r *Recorder) ClearRow(row int) error {
	return r.record(Command{Name: CmdClearRow, Row: row, Value: row})
}

func (r *Recorder) SetPause(code tetris.PauseCode) error {
	return r.record(Command{Name: CmdSetPause, Value: int(code)})
}

func (r *Recorder) Reset() error {
	return r.record(Command{Name: CmdReset})
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Named returns the recorded commands with the given name.
func (r *Recorder) Named(name string) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent command with the given name.
func (r *Recorder) Last(name string) (Command, bool) {
	for i := len(r.commands) - 1; i >= 0; i-- {
		if r.commands[i].Name == name {
			return r.commands[i], true
		}
	}
	return Command{}, false
}

// Drain returns the recorded commands and forgets them.
func (r *Recorder) Drain() []Command {
	out := r.commands
	r.commands = nil
	return out
}
