// Package input turns raw controller events into game actions. It decodes
// Linux evdev records, maps button and axis codes through a code table and
// hands the results to the main loop in batches.
package input

import "fmt"

// Kind is the class of a raw event.
type Kind uint8

const (
	Button Kind = iota + 1
	Axis
)

func (k Kind) String() string {
	switch k {
	case Button:
		return "button"
	case Axis:
		return "axis"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Button values.
const (
	Released int32 = 0
	Pressed  int32 = 1
)

// Event is one raw input event. For buttons Value is Pressed or Released;
// for axes it is the raw position.
type Event struct {
	Kind  Kind
	Code  uint16
	Value int32
}

func (e Event) String() string {
	return fmt.Sprintf("%s %d=%d", e.Kind, e.Code, e.Value)
}

// Batch is what a source delivers per read: the events it decoded, and the
// read error if there was one. A batch with an error may still carry the
// events decoded before the failure.
type Batch struct {
	Events []Event
	Err    error
}
