package loop_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine records what the loop asks of it. Tick results are handed out
// in order, then zero results.
type fakeEngine struct {
	log      []string
	tickedAt []time.Time
	results  []tetris.TickResult
	reject   bool
	suppress bool
}

func (e *fakeEngine) Apply(a tetris.Action) bool {
	e.log = append(e.log, a.String())
	return !e.reject
}

func (e *fakeEngine) Tick() tetris.TickResult {
	e.log = append(e.log, "tick")
	e.tickedAt = append(e.tickedAt, time.Now())
	if len(e.results) == 0 {
		return tetris.TickResult{}
	}
	res := e.results[0]
	e.results = e.results[1:]
	if res.Cleared > 0 {
		e.suppress = true
	}
	return res
}

func (e *fakeEngine) ConsumeSuppress() bool {
	s := e.suppress
	e.suppress = false
	return s
}

func quiet() loop.Option {
	return loop.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func press(code uint16) input.Event {
	return input.Event{Kind: input.Button, Code: code, Value: input.Pressed}
}

func newMapper() *input.Mapper {
	return input.NewMapper(input.DefaultCodeTable())
}

func TestHandleBatch(t *testing.T) {
	t.Run("actions are applied in order", func(t *testing.T) {
		e := &fakeEngine{}
		l := loop.New(e, newMapper(), nil, quiet())

		l.HandleBatch(input.Batch{Events: []input.Event{
			press(input.CodeL),
			{Kind: input.Button, Code: input.CodeL, Value: input.Released},
			{Kind: input.Axis, Code: input.CodeAxisY, Value: 255},
			press(input.CodeA),
		}})

		assert.Equal(t, []string{"move_left", "soft_drop_on", "rotate"}, e.log)
		s := l.Stats()
		assert.Equal(t, int64(1), s.Cycles)
		assert.Equal(t, int64(1), s.Batches)
		assert.Equal(t, int64(4), s.Events)
		assert.Equal(t, int64(3), s.Actions)
	})

	t.Run("ignored actions are counted", func(t *testing.T) {
		e := &fakeEngine{reject: true}
		l := loop.New(e, newMapper(), nil, quiet())
		l.HandleBatch(input.Batch{Events: []input.Event{press(input.CodeA), press(input.CodeR)}})
		assert.Equal(t, int64(0), l.Stats().Actions)
		assert.Equal(t, int64(2), l.Stats().Ignored)
	})

	t.Run("read errors are logged and the batch is dropped", func(t *testing.T) {
		var buf bytes.Buffer
		e := &fakeEngine{}
		l := loop.New(e, newMapper(), nil, loop.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		l.HandleBatch(input.Batch{Events: []input.Event{press(input.CodeStart)}, Err: input.ErrShortRecord})

		assert.Empty(t, e.log)
		s := l.Stats()
		assert.Equal(t, int64(1), s.InputErrors)
		assert.Equal(t, int64(1), s.Batches)
		assert.Equal(t, int64(1), s.Cycles)
		assert.Zero(t, s.Events)
		assert.Zero(t, s.Actions)
		assert.Contains(t, buf.String(), "input read failed")
		assert.Contains(t, buf.String(), "short evdev record")

		l.HandleBatch(input.Batch{Events: []input.Event{press(input.CodeStart)}})
		assert.Equal(t, []string{"start_pause"}, e.log)
	})
}

func TestTickStats(t *testing.T) {
	e := &fakeEngine{results: []tetris.TickResult{
		{},
		{Stepped: true, Move: tetris.Committed},
		{Stepped: true, Move: tetris.Locked, Cleared: 2},
		{Stepped: true, Move: tetris.Locked, GameOver: true},
	}}
	l := loop.New(e, newMapper(), nil, quiet())

	for range 4 {
		l.Tick()
	}

	s := l.Stats()
	assert.Equal(t, int64(4), s.Ticks)
	assert.Equal(t, int64(3), s.Steps)
	assert.Equal(t, int64(2), s.Lines)
	assert.Equal(t, int64(1), s.GameOvers)
	assert.Equal(t, int64(4), s.Cycles)
	assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
	assert.Equal(t, s.TotalDuration/4, s.AvgDuration)
}

func TestStatsBeforeFirstCycle(t *testing.T) {
	l := loop.New(&fakeEngine{}, newMapper(), nil)
	assert.Equal(t, loop.Stats{}, l.Stats())
}

func TestRun(t *testing.T) {
	t.Run("context cancellation", func(t *testing.T) {
		e := &fakeEngine{}
		l := loop.New(e, newMapper(), nil, loop.WithTick(time.Millisecond), quiet())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- l.Run(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("loop did not stop after context cancellation")
		}
		assert.NotZero(t, l.Stats().Ticks, "expected gravity to tick at least once")
	})

	t.Run("closed source ends the loop", func(t *testing.T) {
		e := &fakeEngine{}
		src := make(chan input.Batch, 2)
		src <- input.Batch{Events: []input.Event{press(input.CodeStart)}}
		src <- input.Batch{Events: []input.Event{press(input.CodeSelect)}}
		close(src)

		l := loop.New(e, newMapper(), src, loop.WithTick(time.Hour), quiet())
		require.NoError(t, l.Run(context.Background()))
		assert.Equal(t, []string{"start_pause", "cycle_speed"}, e.log)
	})

	t.Run("waiting input is applied before gravity", func(t *testing.T) {
		e := &fakeEngine{}
		src := make(chan input.Batch, 50)
		for range 50 {
			src <- input.Batch{Events: []input.Event{press(input.CodeR)}}
		}
		close(src)

		l := loop.New(e, newMapper(), src, loop.WithTick(time.Microsecond), quiet())
		require.NoError(t, l.Run(context.Background()))

		assert.Len(t, e.log, 50)
		assert.NotContains(t, e.log, "tick", "gravity must not run while input is waiting")
	})

	t.Run("line clear settles and skips a cycle", func(t *testing.T) {
		settle := 30 * time.Millisecond
		e := &fakeEngine{results: []tetris.TickResult{{Stepped: true, Move: tetris.Locked, Cleared: 1}}}
		l := loop.New(e, newMapper(), nil,
			loop.WithTick(time.Millisecond),
			loop.WithSettle(settle),
			quiet(),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		err := l.Run(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		s := l.Stats()
		assert.Equal(t, int64(1), s.Settles)
		assert.Equal(t, int64(1), s.Suppressed)
		assert.Equal(t, int64(1), s.Lines)
		require.GreaterOrEqual(t, len(e.tickedAt), 2)
		assert.GreaterOrEqual(t, e.tickedAt[1].Sub(e.tickedAt[0]), settle)
	})

	t.Run("cancellation during settle", func(t *testing.T) {
		e := &fakeEngine{results: []tetris.TickResult{{Stepped: true, Cleared: 4}}}
		l := loop.New(e, newMapper(), nil, loop.WithTick(time.Millisecond), loop.WithSettle(time.Hour), quiet())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		start := time.Now()
		assert.ErrorIs(t, l.Run(ctx), context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestLoopDrivesController(t *testing.T) {
	rec := &display.Recorder{}
	c := tetris.NewController(rec, tetris.WithSeed(11), tetris.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	src := make(chan input.Batch, 1)
	l := loop.New(c, newMapper(), src, loop.WithTick(100*time.Microsecond), quiet())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- l.Run(ctx)
	}()

	src <- input.Batch{Events: []input.Event{press(input.CodeStart)}}
	time.Sleep(300 * time.Millisecond)
	cancel()
	require.True(t, errors.Is(<-done, context.Canceled))

	assert.Equal(t, tetris.PhasePlaying, c.Phase())
	s := l.Stats()
	assert.Equal(t, int64(1), s.Actions)
	assert.NotZero(t, s.Steps, "gravity should have moved the piece")
	assert.NotEmpty(t, rec.Named(display.CmdReset))
}
