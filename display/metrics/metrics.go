// Package metrics exports game activity as Prometheus metrics. Metrics is
// a Display, so it sees exactly what the screen sees.
package metrics

import (
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tetris"

// Metrics counts display commands and derives game statistics from them.
// Collectors live in their own registry.
type Metrics struct {
	registry *prometheus.Registry

	commands  *prometheus.CounterVec
	rows      prometheus.Counter
	clears    prometheus.Histogram
	games     prometheus.Counter
	gameOvers prometheus.Counter
	score     prometheus.Gauge
	level     prometheus.Gauge
	pause     prometheus.Gauge

	pending int
}

// New returns a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "display_commands_total",
				Help:      "Display commands sent by the controller",
			},
			[]string{"command"},
		),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_cleared_total",
			Help:      "Completed rows removed from the board",
		}),
		clears: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rows_per_clear",
			Help:      "Rows removed by a single lock",
			Buckets:   []float64{1, 2, 3, 4},
		}),
		games: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started",
		}),
		gameOvers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Games that ended with a blocked spawn",
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Displayed score of the current game",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "speed_level",
			Help:      "Displayed speed level, 1 to 3",
		}),
		pause: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pause_code",
			Help:      "Pause state: 0 running, 1 paused, 3 game over",
		}),
	}
	m.registry.MustRegister(m.commands, m.rows, m.clears, m.games, m.gameOvers, m.score, m.level, m.pause)
	return m
}

// Registry returns the registry holding the game collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WatchLoop exports loop statistics, read through stats at scrape time.
func (m *Metrics) WatchLoop(stats func() loop.Stats) {
	counter := func(name, help string, v func(loop.Stats) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(v(stats())) })
	}
	m.registry.MustRegister(
		counter("cycles_total", "Loop cycles run", func(s loop.Stats) int64 { return s.Cycles }),
		counter("ticks_total", "Gravity ticks", func(s loop.Stats) int64 { return s.Ticks }),
		counter("input_events_total", "Raw input events received", func(s loop.Stats) int64 { return s.Events }),
		counter("actions_total", "Actions accepted by the controller", func(s loop.Stats) int64 { return s.Actions }),
		counter("suppressed_cycles_total", "Cycles skipped after a line clear", func(s loop.Stats) int64 { return s.Suppressed }),
		counter("input_errors_total", "Failed input reads", func(s loop.Stats) int64 { return s.InputErrors }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "cycle_max_seconds",
			Help:      "Longest cycle so far",
		}, func() float64 { return stats().MaxDuration.Seconds() }),
	)
}

func (m *Metrics) count(cmd string) {
	m.commands.WithLabelValues(cmd).Inc()
}

func (m *Metrics) SetCell(int, int, tetris.Type, int, bool) error {
	m.count("SetCell")
	return nil
}

func (m *Metrics) SetScore(d tetris.Digits) error {
	m.count("SetScore")
	m.score.Set(float64(d.Value()))
	if m.pending > 0 {
		m.clears.Observe(float64(m.pending))
		m.pending = 0
	}
	return nil
}

func (m *Metrics) SetNext(tetris.Type) error {
	m.count("SetNext")
	return nil
}

func (m *Metrics) SetSpeed(level int) error {
	m.count("SetSpeed")
	m.level.Set(float64(level))
	return nil
}

func (m *Metrics) ClearRow(int) error {
	m.count("ClearRow")
	m.rows.Inc()
	m.pending++
	return nil
}

func (m *Metrics) SetPause(code tetris.PauseCode) error {
	m.count("SetPause")
	m.pause.Set(float64(code))
	if code == tetris.PauseGameOver {
		m.gameOvers.Inc()
	}
	return nil
}

func (m *Metrics) Reset() error {
	m.count("Reset")
	m.games.Inc()
	m.score.Set(0)
	m.pending = 0
	return nil
}
