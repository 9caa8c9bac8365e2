// Package terminal runs the game in a text terminal through tcell: a
// renderer that draws a display.Frame and a keyboard source that speaks the
// joystick's codes.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/tetris"
)

// Layout of the screen, in terminal cells. Each board cell is two columns
// wide so the well looks square.
const (
	boardLeft = 1
	boardTop  = 1
	cellWidth = 2
	panelLeft = boardLeft + tetris.Width*cellWidth + 4
)

var typeColors = [tetris.TypeCount]tcell.Color{
	tetris.TypeI: tcell.ColorAqua,
	tetris.TypeO: tcell.ColorYellow,
	tetris.TypeT: tcell.ColorPurple,
	tetris.TypeL: tcell.ColorOrange,
	tetris.TypeJ: tcell.ColorBlue,
	tetris.TypeZ: tcell.ColorRed,
	tetris.TypeS: tcell.ColorGreen,
}

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	emptyStyle  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	alertStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer draws snapshots to a screen.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw paints s and shows it.
func (r *Renderer) Draw(s display.Snapshot) {
	r.screen.Clear()
	r.drawWell()

	for row := range tetris.Height {
		for col := range tetris.Width {
			x, y := boardLeft+1+col*cellWidth, boardTop+row
			if t := s.Grid[row][col]; t != display.Empty {
				r.fill(x, y, tcell.StyleDefault.Foreground(typeColors[t]), '█')
			} else {
				r.fill(x, y, emptyStyle, ' ')
				r.screen.SetContent(x, y, '·', nil, emptyStyle)
			}
		}
	}

	r.text(panelLeft, boardTop, textStyle, fmt.Sprintf("SCORE  %s", s.Score))
	r.text(panelLeft, boardTop+1, textStyle, fmt.Sprintf("LEVEL  %d", s.Level))
	r.text(panelLeft, boardTop+2, textStyle, fmt.Sprintf("LINES  %d", s.Cleared))
	r.text(panelLeft, boardTop+4, textStyle, "NEXT")
	if s.HasNext {
		style := tcell.StyleDefault.Foreground(typeColors[s.Next])
		for _, c := range tetris.Cells(s.Next, 0) {
			r.fill(panelLeft+c.Col*cellWidth, boardTop+5+c.Row, style, '█')
		}
	}

	switch s.Pause {
	case tetris.PausePaused:
		r.text(panelLeft, boardTop+10, alertStyle, "PAUSED")
	case tetris.PauseGameOver:
		r.text(panelLeft, boardTop+10, alertStyle, "GAME OVER")
	}

	help := []string{
		"←/→ move   ↑ rotate",
		"↓ soft drop",
		"enter start/pause",
		"tab speed   q quit",
	}
	for i, line := range help {
		r.text(panelLeft, boardTop+12+i, emptyStyle, line)
	}

	r.screen.Show()
}

func (r *Renderer) drawWell() {
	right := boardLeft + 1 + tetris.Width*cellWidth
	bottom := boardTop + tetris.Height
	for y := boardTop; y < bottom; y++ {
		r.screen.SetContent(boardLeft, y, '│', nil, borderStyle)
		r.screen.SetContent(right, y, '│', nil, borderStyle)
	}
	r.screen.SetContent(boardLeft, bottom, '└', nil, borderStyle)
	r.screen.SetContent(right, bottom, '┘', nil, borderStyle)
	for x := boardLeft + 1; x < right; x++ {
		r.screen.SetContent(x, bottom, '─', nil, borderStyle)
	}
}

func (r *Renderer) fill(x, y int, style tcell.Style, ch rune) {
	for i := range cellWidth {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (r *Renderer) text(x, y int, style tcell.Style, s string) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// Run redraws frame every interval until ctx is done. Frames that have not
// changed since the last draw are skipped.
func (r *Renderer) Run(ctx context.Context, frame *display.Frame, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last display.Snapshot
	drawn := false
	for {
		if s := frame.Snapshot(); !drawn || s != last {
			r.Draw(s)
			last, drawn = s, true
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sync repaints the whole screen, as needed after a resize.
func (r *Renderer) Sync() {
	r.screen.Sync()
}
