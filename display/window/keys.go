package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tetris/input"
)

// Key repeat for held movement keys, in ticks at 60 TPS.
const (
	repeatDelay    = 15
	repeatInterval = 5
)

// binding ties a keyboard key or gamepad button to a joystick code. Axis
// bindings drive the soft-drop axis instead of a button.
type binding struct {
	code   uint16
	axis   bool
	repeat bool
}

type keyBinding struct {
	key ebiten.Key
	binding
}

type padBinding struct {
	button ebiten.StandardGamepadButton
	binding
}

// Bindings are polled in this order, so events of the same frame reach the
// loop in it.
var keyBindings = []keyBinding{
	{ebiten.KeyArrowUp, binding{code: input.CodeA}},
	{ebiten.KeyX, binding{code: input.CodeA}},
	{ebiten.KeyArrowLeft, binding{code: input.CodeL, repeat: true}},
	{ebiten.KeyArrowRight, binding{code: input.CodeR, repeat: true}},
	{ebiten.KeyArrowDown, binding{code: input.CodeAxisY, axis: true}},
	{ebiten.KeyTab, binding{code: input.CodeSelect}},
	{ebiten.KeyEnter, binding{code: input.CodeStart}},
	{ebiten.KeySpace, binding{code: input.CodeStart}},
}

var padBindings = []padBinding{
	{ebiten.StandardGamepadButtonRightBottom, binding{code: input.CodeA}},
	{ebiten.StandardGamepadButtonRightRight, binding{code: input.CodeB}},
	{ebiten.StandardGamepadButtonFrontTopLeft, binding{code: input.CodeL, repeat: true}},
	{ebiten.StandardGamepadButtonLeftLeft, binding{code: input.CodeL, repeat: true}},
	{ebiten.StandardGamepadButtonFrontTopRight, binding{code: input.CodeR, repeat: true}},
	{ebiten.StandardGamepadButtonLeftRight, binding{code: input.CodeR, repeat: true}},
	{ebiten.StandardGamepadButtonLeftBottom, binding{code: input.CodeAxisY, axis: true}},
	{ebiten.StandardGamepadButtonCenterLeft, binding{code: input.CodeSelect}},
	{ebiten.StandardGamepadButtonCenterRight, binding{code: input.CodeStart}},
}

// keyBindingFor returns the binding of key.
func keyBindingFor(key ebiten.Key) (binding, bool) {
	for _, kb := range keyBindings {
		if kb.key == key {
			return kb.binding, true
		}
	}
	return binding{}, false
}

// events returns the raw events for one binding in one tick, given whether
// it went down or up this tick and how many ticks it has been held.
func (b binding) events(justPressed, justReleased bool, held int) []input.Event {
	if b.axis {
		switch {
		case justPressed:
			return []input.Event{{Kind: input.Axis, Code: b.code, Value: 255}}
		case justReleased:
			return []input.Event{{Kind: input.Axis, Code: b.code, Value: 128}}
		}
		return nil
	}

	switch {
	case justPressed:
		return []input.Event{{Kind: input.Button, Code: b.code, Value: input.Pressed}}
	case justReleased:
		return []input.Event{{Kind: input.Button, Code: b.code, Value: input.Released}}
	case b.repeat && held >= repeatDelay && (held-repeatDelay)%repeatInterval == 0:
		return []input.Event{{Kind: input.Button, Code: b.code, Value: input.Pressed}}
	}
	return nil
}

// frameEvents collects the events of one frame from bindings in order.
// state reports for binding i whether it went down, whether it went up and
// how long it has been held.
func frameEvents[B interface{ bound() binding }](events []input.Event, bindings []B, state func(i int) (bool, bool, int)) []input.Event {
	for i, b := range bindings {
		pressed, released, held := state(i)
		events = append(events, b.bound().events(pressed, released, held)...)
	}
	return events
}

func (kb keyBinding) bound() binding { return kb.binding }
func (pb padBinding) bound() binding { return pb.binding }
