// Package window runs the game in a desktop window through ebiten. The
// keyboard and any standard-layout gamepad are read each frame and turned
// into joystick events, so the rest of the system cannot tell them apart
// from the real device. An optional imgui inspector draws the control loop's
// counters over the game.
package window

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
)

// Layout of the window, in pixels.
const (
	cellSize   = 24
	wellLeft   = 16
	wellTop    = 16
	panelLeft  = wellLeft + tetris.Width*cellSize + 32
	baseWidth  = panelLeft + 200
	baseHeight = wellTop*2 + tetris.Height*cellSize

	inspectorWidth  = 1280
	inspectorHeight = 720
)

// BatchBuffer is how many batches the window holds for a slow consumer
// before it starts dropping input.
const BatchBuffer = 64

var (
	background = color.RGBA{0x10, 0x10, 0x18, 0xff}
	wellColor  = color.RGBA{0x30, 0x30, 0x40, 0xff}
	emptyColor = color.RGBA{0x1c, 0x1c, 0x26, 0xff}
)

var typeColors = [tetris.TypeCount]color.RGBA{
	tetris.TypeI: {0x00, 0xf0, 0xf0, 0xff},
	tetris.TypeO: {0xf0, 0xf0, 0x00, 0xff},
	tetris.TypeT: {0xa0, 0x00, 0xf0, 0xff},
	tetris.TypeL: {0xf0, 0xa0, 0x00, 0xff},
	tetris.TypeJ: {0x00, 0x00, 0xf0, 0xff},
	tetris.TypeZ: {0xf0, 0x00, 0x00, 0xff},
	tetris.TypeS: {0x00, 0xf0, 0x00, 0xff},
}

// cellRect returns the pixel rectangle of a board cell, with a one pixel
// gutter on the right and bottom.
func cellRect(col, row int) (x, y, w, h float32) {
	return float32(wellLeft + col*cellSize), float32(wellTop + row*cellSize), cellSize - 1, cellSize - 1
}

type Option func(*Window)

// WithInspector draws the imgui inspector over the game, reading loop
// counters from stats.
func WithInspector(stats func() loop.Stats) Option {
	return func(w *Window) {
		w.inspector = NewInspector(stats, 120)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Window) {
		w.logger = logger
	}
}

// Window is an ebiten.Game that shows a display.Frame and reports input as
// batches of joystick events.
type Window struct {
	frame     *display.Frame
	logger    *slog.Logger
	inspector *Inspector
	backend   *ebitenbackend.EbitenBackend
	timer     *frameTimer

	ctx     context.Context
	batches chan input.Batch
	close   sync.Once
	dropped int
	pads    []ebiten.GamepadID
}

func New(frame *display.Frame, opts ...Option) *Window {
	w := &Window{
		frame:   frame,
		logger:  slog.Default(),
		batches: make(chan input.Batch, BatchBuffer),
		ctx:     context.Background(),
		timer:   newFrameTimer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Source returns the channel input batches are delivered on. It closes when
// the window does.
func (w *Window) Source() <-chan input.Batch {
	return w.batches
}

// Run opens the window and blocks until it is closed or ctx is done. Like
// ebiten.RunGame it must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	defer w.shutdown()

	if w.inspector != nil {
		w.backend = ebitenbackend.NewEbitenBackend()
		w.backend.CreateWindow("Tetris", inspectorWidth, inspectorHeight)
		imgui.CurrentIO().SetIniFilename("")
	} else {
		ebiten.SetWindowTitle("Tetris")
		ebiten.SetWindowSize(baseWidth, baseHeight)
	}

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (w *Window) shutdown() {
	w.close.Do(func() { close(w.batches) })
}

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}

	if w.backend != nil {
		w.backend.BeginFrame()
		w.inspector.Render(w.frame.Snapshot(), w.timer.delta())
		w.backend.EndFrame()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		w.shutdown()
		return ebiten.Termination
	}

	var events []input.Event
	if w.backend == nil || !imgui.CurrentIO().WantCaptureKeyboard() {
		events = w.keyEvents(events)
	}
	events = w.padEvents(events)
	if len(events) > 0 {
		w.send(input.Batch{Events: events})
	}
	return nil
}

func (w *Window) keyEvents(events []input.Event) []input.Event {
	return frameEvents(events, keyBindings, func(i int) (bool, bool, int) {
		key := keyBindings[i].key
		return inpututil.IsKeyJustPressed(key), inpututil.IsKeyJustReleased(key), inpututil.KeyPressDuration(key)
	})
}

func (w *Window) padEvents(events []input.Event) []input.Event {
	w.pads = ebiten.AppendGamepadIDs(w.pads[:0])
	for _, id := range w.pads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		events = frameEvents(events, padBindings, func(i int) (bool, bool, int) {
			button := padBindings[i].button
			return inpututil.IsStandardGamepadButtonJustPressed(id, button),
				inpututil.IsStandardGamepadButtonJustReleased(id, button),
				inpututil.StandardGamepadButtonPressDuration(id, button)
		})
	}
	return events
}

// send never blocks the render thread; batches that find the buffer full
// are dropped and counted.
func (w *Window) send(b input.Batch) {
	select {
	case w.batches <- b:
	default:
		w.dropped++
		w.logger.Warn("input batch dropped", "dropped", w.dropped, "events", len(b.Events))
	}
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	s := w.frame.Snapshot()

	vector.DrawFilledRect(screen, wellLeft-4, wellTop-4, tetris.Width*cellSize+8, tetris.Height*cellSize+8, wellColor, false)
	for row := range tetris.Height {
		for col := range tetris.Width {
			c := emptyColor
			if t := s.Grid[row][col]; t != display.Empty {
				c = typeColors[t]
			}
			x, y, cw, ch := cellRect(col, row)
			vector.DrawFilledRect(screen, x, y, cw, ch, c, false)
		}
	}

	ebitenutil.DebugPrintAt(screen, panelText(s), panelLeft, wellTop)
	if s.HasNext {
		for _, c := range tetris.Cells(s.Next, 0) {
			x := float32(panelLeft + c.Col*cellSize)
			y := float32(wellTop + 120 + c.Row*cellSize)
			vector.DrawFilledRect(screen, x, y, cellSize-1, cellSize-1, typeColors[s.Next], false)
		}
	}

	if w.backend != nil {
		w.backend.Draw(screen)
	}
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if w.backend != nil {
		w.backend.Layout(outsideWidth, outsideHeight)
		return outsideWidth, outsideHeight
	}
	return baseWidth, baseHeight
}

// panelText is the side panel's text block.
func panelText(s display.Snapshot) string {
	status := ""
	switch s.Pause {
	case tetris.PausePaused:
		status = "PAUSED"
	case tetris.PauseGameOver:
		status = "GAME OVER"
	}
	return fmt.Sprintf("SCORE  %s\nLEVEL  %d\nLINES  %d\n\nNEXT\n\n\n\n\n\n\n\n\n\n\n%s\n\narrows  move/rotate\nenter   start/pause\ntab     speed\nesc     quit",
		s.Score, s.Level, s.Cleared, status)
}
