package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tetris/input"
)

// KeyCommand is what a key press means to the source.
type KeyCommand int

const (
	KeyIgnored KeyCommand = iota
	// KeyButton presses and releases a joystick button.
	KeyButton
	// KeySoftDrop holds the vertical axis down.
	KeySoftDrop
	KeyQuit
)

// Axis positions sent for the soft-drop emulation.
const (
	axisDown   int32 = 255
	axisCentre int32 = 128
)

var runeButtons = map[rune]uint16{
	'w': input.CodeA, 'k': input.CodeA, 'x': input.CodeA,
	'a': input.CodeL, 'h': input.CodeL,
	'd': input.CodeR, 'l': input.CodeR,
	'p': input.CodeStart, ' ': input.CodeStart,
	's': input.CodeSelect,
}

// Translate maps a key to the joystick button it stands for. The code is
// only meaningful for KeyButton.
func Translate(key tcell.Key, r rune) (KeyCommand, uint16) {
	switch key {
	case tcell.KeyUp:
		return KeyButton, input.CodeA
	case tcell.KeyLeft:
		return KeyButton, input.CodeL
	case tcell.KeyRight:
		return KeyButton, input.CodeR
	case tcell.KeyEnter:
		return KeyButton, input.CodeStart
	case tcell.KeyTab:
		return KeyButton, input.CodeSelect
	case tcell.KeyDown:
		return KeySoftDrop, 0
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyQuit, 0
	case tcell.KeyRune:
		switch r {
		case 'q':
			return KeyQuit, 0
		case 'j':
			return KeySoftDrop, 0
		}
		if code, ok := runeButtons[r]; ok {
			return KeyButton, code
		}
	}
	return KeyIgnored, 0
}

// Source reads keys from a screen and delivers them as joystick events.
// Terminals report key repeats but no releases, so soft drop is released
// once no Down key has arrived for the hold time.
type Source struct {
	screen   tcell.Screen
	hold     time.Duration
	onResize func()
}

// NewSource returns a source reading from screen. onResize, if not nil, is
// called from the source goroutine when the terminal is resized.
func NewSource(screen tcell.Screen, hold time.Duration, onResize func()) *Source {
	return &Source{screen: screen, hold: hold, onResize: onResize}
}

// Start begins polling. The returned channel is closed when a quit key is
// pressed, when ctx is done, or when the screen is finalized.
func (s *Source) Start(ctx context.Context) <-chan input.Batch {
	raw := make(chan tcell.Event, 16)
	go func() {
		defer close(raw)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case raw <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan input.Batch)
	go s.translate(ctx, raw, out)
	return out
}

func (s *Source) translate(ctx context.Context, raw <-chan tcell.Event, out chan<- input.Batch) {
	defer close(out)

	hold := time.NewTimer(s.hold)
	hold.Stop()
	defer hold.Stop()
	held := false

	send := func(events ...input.Event) bool {
		select {
		case out <- input.Batch{Events: events}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-hold.C:
			held = false
			if !send(input.Event{Kind: input.Axis, Code: input.CodeAxisY, Value: axisCentre}) {
				return
			}
		case ev, ok := <-raw:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				if s.onResize != nil {
					s.onResize()
				}
			case *tcell.EventKey:
				cmd, code := Translate(ev.Key(), ev.Rune())
				switch cmd {
				case KeyQuit:
					return
				case KeyButton:
					if !send(
						input.Event{Kind: input.Button, Code: code, Value: input.Pressed},
						input.Event{Kind: input.Button, Code: code, Value: input.Released},
					) {
						return
					}
				case KeySoftDrop:
					hold.Reset(s.hold)
					if !held {
						held = true
						if !send(input.Event{Kind: input.Axis, Code: input.CodeAxisY, Value: axisDown}) {
							return
						}
					}
				}
			}
		}
	}
}
