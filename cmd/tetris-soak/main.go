package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/display/metrics"
	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/logging"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the soak should run for.")
	seed := flag.Uint64("seed", 1, "Seed for both the piece sequence and the input generator.")
	perTick := flag.Int("actions-per-tick", 2, "Maximum joystick events generated per tick.")
	tick := flag.Duration("tick", 100*time.Microsecond, "Control loop tick period.")
	level := flag.String("log-level", "warn", "Log level for the game and the loop.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		log.Fatal(err)
	}
	handler, err := logging.NewHandler(os.Stderr, "text", lvl)
	if err != nil {
		log.Fatal(err)
	}
	logger := slog.New(handler)

	log.Println("Starting tetris soak test...")

	frame := display.NewFrame()
	m := metrics.New()
	best := &bestScore{}
	ctrl := tetris.NewController(display.Multi(frame, m, best),
		tetris.WithSeed(*seed),
		tetris.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	gen := &generator{
		rng:     rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)),
		frame:   frame,
		perTick: *perTick,
	}
	source := gen.Start(ctx, *tick)

	l := loop.New(ctrl, input.NewMapper(input.DefaultCodeTable()), source,
		loop.WithTick(*tick),
		loop.WithSettle(0),
		loop.WithLogger(logger),
	)
	m.WatchLoop(l.Stats)

	report := &Report{
		Duration:       *duration,
		Seed:           *seed,
		Tick:           *tick,
		ActionsPerTick: *perTick,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running soak for %s...\n", *duration)
	startTime := time.Now()
	if err := l.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Fatalf("Loop failed: %v", err)
	}
	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Loop = l.Stats()
	report.BestScore = best.best
	report.Games = best.games
	report.Final = frame.Snapshot()

	log.Println("Soak finished.")

	fmt.Println("\n\n--- Soak Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

// bestScore tracks the highest score shown across games.
type bestScore struct {
	tetris.NopDisplay
	best  int
	games int
}

func (b *bestScore) SetScore(d tetris.Digits) error {
	b.best = max(b.best, d.Value())
	return nil
}

func (b *bestScore) Reset() error {
	b.games++
	return nil
}

// generator plays like an impatient player: it presses start whenever the
// game is not running and otherwise mashes the movement buttons and the
// soft-drop axis.
type generator struct {
	rng     *rand.Rand
	frame   *display.Frame
	perTick int
	down    bool
	// cooldown holds off further start presses until the first one has
	// reached the game.
	cooldown int
}

// Start emits one batch per tick until ctx is done.
func (g *generator) Start(ctx context.Context, tick time.Duration) <-chan input.Batch {
	out := make(chan input.Batch, 16)
	go func() {
		defer close(out)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			b := input.Batch{Events: g.events()}
			if len(b.Events) == 0 {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (g *generator) events() []input.Event {
	if g.cooldown > 0 {
		g.cooldown--
		return nil
	}
	if g.frame.Snapshot().Pause != tetris.PauseRunning {
		g.cooldown = 20
		return []input.Event{press(input.CodeStart), release(input.CodeStart)}
	}

	n := g.rng.IntN(g.perTick + 1)
	events := make([]input.Event, 0, n)
	for range n {
		switch g.rng.IntN(8) {
		case 0, 1:
			events = append(events, press(input.CodeL))
		case 2, 3:
			events = append(events, press(input.CodeR))
		case 4, 5:
			events = append(events, press(input.CodeA))
		case 6:
			g.down = !g.down
			value := int32(128)
			if g.down {
				value = 255
			}
			events = append(events, input.Event{Kind: input.Axis, Code: input.CodeAxisY, Value: value})
		case 7:
			if g.rng.IntN(50) == 0 {
				events = append(events, press(input.CodeSelect))
			}
		}
	}
	return events
}

func press(code uint16) input.Event {
	return input.Event{Kind: input.Button, Code: code, Value: input.Pressed}
}

func release(code uint16) input.Event {
	return input.Event{Kind: input.Button, Code: code, Value: input.Released}
}
