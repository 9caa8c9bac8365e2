package display

import (
	"fmt"
	"strconv"

	"github.com/plus3/tetris/tetris"
)

// Register offsets, in 16-bit words, of the display controller.
const (
	RegPosition = iota
	RegClearRow
	RegScore
	RegNext
	RegSpeed
	RegReset
	RegPause
)

// PositionWord packs a piece command: row in bits 11-15, column in bits
// 7-10, type+1 in bits 4-6, rotation in bits 2-3 and the on flag in bit 1.
func PositionWord(row, col int, t tetris.Type, rotation int, on bool) uint16 {
	w := uint16(row)<<11 | uint16(col)<<7 | uint16(int(t)%tetris.TypeCount+1)<<4 | uint16(rotation%4)<<2
	if on {
		w |= 1 << 1
	}
	return w
}

// IoctlCommand returns the ioctl request number that writes reg on the
// display controller device: _IOW('q', reg+1, tetris_arg_t *). The size
// field is that of a pointer on the host.
func IoctlCommand(reg int) uint {
	const (
		iocWrite   = 1
		magic      = 'q'
		argPtrSize = strconv.IntSize / 8
	)
	return iocWrite<<30 | argPtrSize<<16 | magic<<8 | uint(reg+1)
}

// Bus carries one 16-bit word to a register of the display controller.
type Bus interface {
	WriteRegister(reg int, word uint16) error
}

// Register is a Display that encodes each command as the 16-bit word the
// display controller expects and hands it to a Bus.
type Register struct {
	bus Bus
}

// NewRegister returns a register adapter writing to bus, usually a Device.
func NewRegister(bus Bus) *Register {
	return &Register{bus: bus}
}

func (r *Register) write(reg int, word uint16) error {
	if err := r.bus.WriteRegister(reg, word); err != nil {
		return fmt.Errorf("write register %d: %w", reg, err)
	}
	return nil
}

func (r *Register) SetCell(row, col int, t tetris.Type, rotation int, on bool) error {
	return r.write(RegPosition, PositionWord(row, col, t, rotation, on))
}

func (r *Register) SetScore(d tetris.Digits) error {
	return r.write(RegScore, uint16(d))
}

func (r *Register) SetNext(t tetris.Type) error {
	return r.write(RegNext, uint16(t)+1)
}

func (r *Register) SetSpeed(level int) error {
	return r.write(RegSpeed, uint16(level))
}

func (r *Register) ClearRow(row int) error {
	return r.write(RegClearRow, uint16(row))
}

func (r *Register) SetPause(code tetris.PauseCode) error {
	return r.write(RegPause, uint16(code))
}

func (r *Register) Reset() error {
	return r.write(RegReset, 0)
}
