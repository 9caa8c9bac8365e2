package tetris

import "fmt"

// Action is a decoded player command.
type Action int

const (
	ActionNone Action = iota
	ActionRotate
	ActionMoveLeft
	ActionMoveRight
	ActionStartPause
	ActionSoftDropOn
	ActionSoftDropOff
	ActionCycleSpeed
)

var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionRotate:      "rotate",
	ActionMoveLeft:    "move_left",
	ActionMoveRight:   "move_right",
	ActionStartPause:  "start_pause",
	ActionSoftDropOn:  "soft_drop_on",
	ActionSoftDropOff: "soft_drop_off",
	ActionCycleSpeed:  "cycle_speed",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction returns the action with the given snake_case name.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}
