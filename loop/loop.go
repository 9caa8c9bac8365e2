// Package loop runs the game: it merges input batches with a gravity ticker
// and drives the controller, one cycle per batch or tick.
package loop

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/tetris"
)

// Defaults match the polling rate and line-clear pause of the hardware.
const (
	DefaultTick   = 5 * time.Millisecond
	DefaultSettle = 100 * time.Millisecond
)

// Engine is the part of the controller the loop drives.
type Engine interface {
	Apply(a tetris.Action) bool
	Tick() tetris.TickResult
	ConsumeSuppress() bool
}

// Stats provides statistics about loop execution. Durations cover the
// work done in a cycle, not the time spent waiting for it.
type Stats struct {
	Cycles      int64
	Ticks       int64
	Steps       int64
	Batches     int64
	Events      int64
	Actions     int64
	Ignored     int64
	Suppressed  int64
	Settles     int64
	InputErrors int64
	Lines       int64
	GameOvers   int64

	MinDuration   time.Duration
	MaxDuration   time.Duration
	AvgDuration   time.Duration
	LastDuration  time.Duration
	TotalDuration time.Duration
}

// Loop owns the engine for the lifetime of Run. Apart from Stats, its
// methods must be called from a single goroutine.
type Loop struct {
	engine Engine
	mapper *input.Mapper
	source <-chan input.Batch
	tick   time.Duration
	settle time.Duration
	logger *slog.Logger

	stats     Stats
	published atomic.Pointer[Stats]
}

// Option configures a Loop.
type Option func(*Loop)

// WithTick sets the gravity tick interval.
func WithTick(d time.Duration) Option {
	return func(l *Loop) {
		l.tick = d
	}
}

// WithSettle sets the pause after a cycle that cleared rows.
func WithSettle(d time.Duration) Option {
	return func(l *Loop) {
		l.settle = d
	}
}

// WithLogger sets the logger used for input errors.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New returns a loop feeding batches from source through mapper into
// engine. A nil source runs on gravity alone.
func New(engine Engine, mapper *input.Mapper, source <-chan input.Batch, opts ...Option) *Loop {
	l := &Loop{
		engine: engine,
		mapper: mapper,
		source: source,
		tick:   DefaultTick,
		settle: DefaultSettle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.stats.MinDuration = time.Duration(1<<63 - 1)
	return l
}

// HandleBatch decodes a batch and applies its actions in order. A batch
// carrying a read error is logged and treated as having no events.
func (l *Loop) HandleBatch(b input.Batch) {
	start := time.Now()
	l.stats.Batches++
	if b.Err != nil {
		l.stats.InputErrors++
		l.logger.Warn("input read failed", "error", b.Err, "dropped", len(b.Events))
		l.record(start)
		return
	}
	l.stats.Events += int64(len(b.Events))

	for _, a := range l.mapper.DecodeAll(b.Events) {
		if l.engine.Apply(a) {
			l.stats.Actions++
		} else {
			l.stats.Ignored++
		}
	}
	l.record(start)
}

// Tick runs one gravity tick.
func (l *Loop) Tick() tetris.TickResult {
	start := time.Now()
	l.stats.Ticks++
	res := l.engine.Tick()
	if res.Stepped {
		l.stats.Steps++
	}
	l.stats.Lines += int64(res.Cleared)
	if res.GameOver {
		l.stats.GameOvers++
	}
	l.record(start)
	return res
}

func (l *Loop) record(start time.Time) {
	d := time.Since(start)
	l.stats.Cycles++
	l.stats.LastDuration = d
	l.stats.TotalDuration += d
	if d < l.stats.MinDuration {
		l.stats.MinDuration = d
	}
	if d > l.stats.MaxDuration {
		l.stats.MaxDuration = d
	}
	l.publish()
}

func (l *Loop) publish() {
	s := l.stats
	l.published.Store(&s)
}

// Run executes cycles until the context is cancelled or the source is
// closed. Each received batch is a cycle and each tick is a cycle; on a
// tick, batches already waiting are handled before gravity. After a line
// clear the loop waits for the settle time, and the cycle following it is
// skipped without reading input. Run returns nil when the source closes and
// the context error otherwise.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		if l.engine.ConsumeSuppress() {
			l.stats.Cycles++
			l.stats.Suppressed++
			l.publish()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-l.source:
			if !ok {
				return nil
			}
			l.HandleBatch(b)
		case <-ticker.C:
			if !l.drain() {
				return nil
			}
			res := l.Tick()
			if res.Cleared > 0 && l.settle > 0 {
				l.stats.Settles++
				if err := sleep(ctx, l.settle); err != nil {
					return err
				}
			}
		}
	}
}

// drain handles every batch that is already waiting. It reports false if
// the source was closed.
func (l *Loop) drain() bool {
	for {
		select {
		case b, ok := <-l.source:
			if !ok {
				return false
			}
			l.HandleBatch(b)
		default:
			return true
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Stats returns statistics about loop execution as of the last completed
// cycle. It may be called from any goroutine.
func (l *Loop) Stats() Stats {
	var s Stats
	if p := l.published.Load(); p != nil {
		s = *p
	}
	if s.Cycles == s.Suppressed {
		s.MinDuration = 0
	}
	if n := s.Cycles - s.Suppressed; n > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(n)
	}
	return s
}
