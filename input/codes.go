package input

import (
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/plus3/tetris/tetris"
)

// Joystick codes of the default controller.
const (
	CodeAxisX  uint16 = 0
	CodeAxisY  uint16 = 1
	CodeX      uint16 = 32
	CodeA      uint16 = 33
	CodeB      uint16 = 34
	CodeY      uint16 = 35
	CodeL      uint16 = 36
	CodeR      uint16 = 37
	CodeSelect uint16 = 40
	CodeStart  uint16 = 41
)

// CodeTable binds raw codes to actions. A button bound to SoftDropOn
// releases soft drop when it is released. The soft-drop axis turns soft
// drop on at AxisMax and off at any other position.
type CodeTable struct {
	Buttons      map[uint16]tetris.Action
	SoftDropAxis uint16
	AxisMin      int32
	AxisMax      int32
}

// DefaultCodeTable returns the bindings of the stock joystick.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		Buttons: map[uint16]tetris.Action{
			CodeA:      tetris.ActionRotate,
			CodeL:      tetris.ActionMoveLeft,
			CodeR:      tetris.ActionMoveRight,
			CodeStart:  tetris.ActionStartPause,
			CodeSelect: tetris.ActionCycleSpeed,
		},
		SoftDropAxis: CodeAxisY,
		AxisMin:      0,
		AxisMax:      255,
	}
}

type codeTableFile struct {
	Buttons      map[string]string `toml:"buttons"`
	SoftDropAxis *uint16           `toml:"soft_drop_axis"`
	AxisMin      *int32            `toml:"axis_min"`
	AxisMax      *int32            `toml:"axis_max"`
}

// ParseCodeTable reads a TOML code table. Only the keys present override
// the defaults; a [buttons] section replaces the default bindings:
//
//	soft_drop_axis = 1
//	axis_max = 255
//
//	[buttons]
//	33 = "rotate"
//	36 = "move_left"
func ParseCodeTable(data []byte) (CodeTable, error) {
	ct := DefaultCodeTable()

	var f codeTableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return ct, fmt.Errorf("code table: %w", err)
	}

	if f.Buttons != nil {
		ct.Buttons = make(map[uint16]tetris.Action, len(f.Buttons))
		for key, name := range f.Buttons {
			code, err := strconv.ParseUint(key, 10, 16)
			if err != nil {
				return ct, fmt.Errorf("code table: button %q: not a code", key)
			}
			a, err := tetris.ParseAction(name)
			if err != nil {
				return ct, fmt.Errorf("code table: button %q: %w", key, err)
			}
			if a == tetris.ActionNone || a == tetris.ActionSoftDropOff {
				return ct, fmt.Errorf("code table: button %q: %s cannot be bound", key, a)
			}
			ct.Buttons[uint16(code)] = a
		}
	}
	if f.SoftDropAxis != nil {
		ct.SoftDropAxis = *f.SoftDropAxis
	}
	if f.AxisMin != nil {
		ct.AxisMin = *f.AxisMin
	}
	if f.AxisMax != nil {
		ct.AxisMax = *f.AxisMax
	}
	if ct.AxisMin >= ct.AxisMax {
		return ct, fmt.Errorf("code table: axis_min %d must be below axis_max %d", ct.AxisMin, ct.AxisMax)
	}
	return ct, nil
}
