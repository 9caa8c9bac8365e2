package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
)

type Report struct {
	// Configuration
	Duration       time.Duration
	Seed           uint64
	Tick           time.Duration
	ActionsPerTick int

	// Results
	TotalTime      time.Duration
	Loop           loop.Stats
	Games          int
	BestScore      int
	Final          display.Snapshot
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Board renders the final board, one line per row.
func (r *Report) Board() string {
	var b tetris.Board
	for row := range tetris.Height {
		for col := range tetris.Width {
			b[row][col] = r.Final.Occupied(col, row)
		}
	}
	return b.String()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Tetris Soak Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Seed:** {{.Seed}}
- **Tick:** {{.Tick}}
- **Max Events per Tick:** {{.ActionsPerTick}}

## Game Results
- **Games Started:** {{.Games}}
- **Games Over:** {{.Loop.GameOvers}}
- **Lines Cleared:** {{.Loop.Lines}}
- **Best Score:** {{.BestScore}}

## Loop Results
- **Total Test Time:** {{.TotalTime}}
- **Cycles:** {{.Loop.Cycles}} ({{.Loop.Suppressed}} suppressed, {{.Loop.Settles}} settles)
- **Gravity Steps:** {{.Loop.Steps}}
- **Input:** {{.Loop.Batches}} batches, {{.Loop.Events}} events, {{.Loop.Actions}} actions, {{.Loop.Ignored}} ignored
- **Cycle Time:**
  - **Avg:** {{.Loop.AvgDuration}}
  - **Min:** {{.Loop.MinDuration}}
  - **Max:** {{.Loop.MaxDuration}}

## Final Board
` + "```" + `
{{.Board}}` + "```" + `

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
{{end}}`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
