package window

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
)

// history is a fixed ring of samples fed to imgui's line plots.
type history struct {
	samples []float32
	next    int
}

func newHistory(n int) *history {
	return &history{samples: make([]float32, n)}
}

func (h *history) push(v float32) {
	h.samples[h.next] = v
	h.next = (h.next + 1) % len(h.samples)
}

func (h *history) average() float32 {
	var sum float32
	for _, v := range h.samples {
		sum += v
	}
	return sum / float32(len(h.samples))
}

// Inspector draws debug windows over the game: frame timing, the control
// loop's counters and the state of the display.
type Inspector struct {
	stats  func() loop.Stats
	frames *history
	cycles *history
}

func NewInspector(stats func() loop.Stats, historyFrames int) *Inspector {
	return &Inspector{
		stats:  stats,
		frames: newHistory(historyFrames),
		cycles: newHistory(historyFrames),
	}
}

// Render emits the inspector's widgets. It must run between the imgui
// backend's BeginFrame and EndFrame.
func (in *Inspector) Render(s display.Snapshot, deltaTime float32) {
	in.frames.push(deltaTime * 1000)
	in.renderLoop()
	in.renderState(s)
}

func (in *Inspector) renderLoop() {
	if !imgui.BeginV("Control Loop", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	avg := in.frames.average()
	imgui.Text(fmt.Sprintf("Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	imgui.PlotLinesFloatPtr("##frametime", &in.frames.samples[0], int32(len(in.frames.samples)))

	if in.stats == nil {
		imgui.End()
		return
	}

	st := in.stats()
	in.cycles.push(float32(st.LastDuration) / float32(time.Microsecond))

	imgui.Separator()
	imgui.Text(fmt.Sprintf("Cycle: last %v, avg %v, max %v", st.LastDuration, st.AvgDuration, st.MaxDuration))
	imgui.Text("Cycle Time Graph (us)")
	imgui.PlotLinesFloatPtr("##cycletime", &in.cycles.samples[0], int32(len(in.cycles.samples)))

	if imgui.TreeNodeStr("Counters") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("LoopCounters", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Counter")
			imgui.TableSetupColumn("Value")
			imgui.TableHeadersRow()

			for _, c := range counters(st) {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(c.name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", c.value))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (in *Inspector) renderState(s display.Snapshot) {
	if !imgui.BeginV("Game State", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Score: %s", s.Score))
	imgui.Text(fmt.Sprintf("Level: %d", s.Level))
	imgui.Text(fmt.Sprintf("Pause: %s", s.Pause))
	imgui.Text(fmt.Sprintf("Lines: %d", s.Cleared))
	if s.HasNext {
		imgui.Text(fmt.Sprintf("Next: %s", s.Next))
	}

	if imgui.TreeNodeStr("Stack Height") {
		for _, h := range columnHeights(s) {
			imgui.BulletText(h)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type counter struct {
	name  string
	value int64
}

func counters(st loop.Stats) []counter {
	return []counter{
		{"cycles", st.Cycles},
		{"ticks", st.Ticks},
		{"steps", st.Steps},
		{"batches", st.Batches},
		{"events", st.Events},
		{"actions", st.Actions},
		{"ignored", st.Ignored},
		{"suppressed", st.Suppressed},
		{"settles", st.Settles},
		{"input errors", st.InputErrors},
		{"lines", st.Lines},
		{"game overs", st.GameOvers},
	}
}

// columnHeights describes how tall the stack is in each column.
func columnHeights(s display.Snapshot) []string {
	out := make([]string, tetris.Width)
	for col := range tetris.Width {
		height := 0
		for row := range tetris.Height {
			if s.Occupied(col, row) {
				height = tetris.Height - row
				break
			}
		}
		out[col] = fmt.Sprintf("column %d: %d", col, height)
	}
	return out
}

type frameTimer struct {
	last time.Time
}

func newFrameTimer() *frameTimer {
	return &frameTimer{last: time.Now()}
}

func (ft *frameTimer) delta() float32 {
	now := time.Now()
	d := float32(now.Sub(ft.last).Seconds())
	ft.last = now
	return d
}
