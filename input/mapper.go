package input

import "github.com/plus3/tetris/tetris"

// Mapper decodes raw events into actions using a CodeTable.
type Mapper struct {
	table CodeTable
}

// NewMapper returns a mapper for table.
func NewMapper(table CodeTable) *Mapper {
	return &Mapper{table: table}
}

// Normalize maps a raw axis position to -1 at AxisMin, +1 at AxisMax and 0
// anywhere in between.
func (m *Mapper) Normalize(raw int32) int {
	switch {
	case raw <= m.table.AxisMin:
		return -1
	case raw >= m.table.AxisMax:
		return 1
	}
	return 0
}

// Decode returns the action for ev. The second result is false for events
// that map to nothing: unmapped codes, auto-repeat, and releases of
// buttons other than soft drop.
func (m *Mapper) Decode(ev Event) (tetris.Action, bool) {
	switch ev.Kind {
	case Button:
		a, ok := m.table.Buttons[ev.Code]
		if !ok {
			return tetris.ActionNone, false
		}
		switch ev.Value {
		case Pressed:
			return a, true
		case Released:
			if a == tetris.ActionSoftDropOn {
				return tetris.ActionSoftDropOff, true
			}
		}
	case Axis:
		if ev.Code != m.table.SoftDropAxis {
			return tetris.ActionNone, false
		}
		if m.Normalize(ev.Value) == 1 {
			return tetris.ActionSoftDropOn, true
		}
		return tetris.ActionSoftDropOff, true
	}
	return tetris.ActionNone, false
}

// DecodeAll decodes every event of a batch in order, dropping the ones
// that map to nothing.
func (m *Mapper) DecodeAll(events []Event) []tetris.Action {
	var out []tetris.Action
	for _, ev := range events {
		if a, ok := m.Decode(ev); ok {
			out = append(out, a)
		}
	}
	return out
}
