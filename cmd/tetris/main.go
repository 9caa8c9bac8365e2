package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/tetris/config"
	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/display/metrics"
	"github.com/plus3/tetris/display/sound"
	"github.com/plus3/tetris/display/terminal"
	"github.com/plus3/tetris/display/window"
	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/logging"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/status"
	"github.com/plus3/tetris/tetris"
	"golang.org/x/sync/errgroup"
)

const redrawInterval = 30 * time.Millisecond

type options struct {
	config   string
	frontend string
	seed     uint64
	debug    bool
}

func main() {
	var o options
	flag.StringVar(&o.config, "config", "", "Path to a TOML config file.")
	flag.StringVar(&o.frontend, "frontend", "", "Frontend to run: terminal, window or evdev.")
	flag.Uint64Var(&o.seed, "seed", 0, "Seed for the piece sequence. 0 keeps the configured seed.")
	flag.BoolVar(&o.debug, "debug", false, "Log at debug level and show the inspector in the window frontend.")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "tetris: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(o options) (config.Config, error) {
	cfg, err := config.Load(o.config)
	if err != nil {
		return cfg, err
	}
	if o.frontend != "" {
		cfg.Frontend = o.frontend
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// openInput opens the evdev node. Records in the host layout are read
// through the device API; a foreign layout is decoded from the raw stream.
func openInput(cfg config.InputConfig) (input.BatchReader, io.Closer, error) {
	if cfg.RecordSize == input.NativeRecordSize {
		dev, err := input.OpenDevice(cfg.Device)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("input device opened", "path", cfg.Device, "name", dev.Name())
		return dev, dev, nil
	}

	f, err := os.Open(cfg.Device)
	if err != nil {
		return nil, nil, fmt.Errorf("open input device: %w", err)
	}
	r, err := input.NewReader(f, cfg.RecordSize)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}

func run(o options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	logger, logs, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logs.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frame := display.NewFrame()
	m := metrics.New()
	displays := []tetris.Display{frame, m}

	if cfg.Sound.Enabled {
		if err := sound.Init(); err != nil {
			logger.Warn("sound disabled", "err", err)
		} else {
			play := func(s beep.Streamer) { speaker.Play(s) }
			displays = append(displays, sound.New(play, cfg.Sound.Volume))
		}
	}

	if cfg.Register.Device != "" {
		dev, err := display.OpenDevice(cfg.Register.Device)
		if err != nil {
			return err
		}
		defer dev.Close()
		displays = append(displays, display.NewRegister(dev))
	}

	table, err := cfg.CodeTable()
	if err != nil {
		return err
	}

	copts := []tetris.Option{tetris.WithLogger(logger)}
	if cfg.Seed != 0 {
		copts = append(copts, tetris.WithSeed(cfg.Seed))
	}
	ctrl := tetris.NewController(display.Multi(displays...), copts...)

	var l *loop.Loop
	stats := func() loop.Stats { return l.Stats() }

	g, gctx := errgroup.WithContext(ctx)
	var (
		source <-chan input.Batch
		win    *window.Window
	)

	switch cfg.Frontend {
	case config.FrontendTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		defer screen.Fini()

		r := terminal.NewRenderer(screen)
		g.Go(func() error {
			r.Run(gctx, frame, redrawInterval)
			return nil
		})
		source = terminal.NewSource(screen, cfg.Terminal.SoftDropHold.Std(), r.Sync).Start(gctx)

	case config.FrontendWindow:
		wopts := []window.Option{window.WithLogger(logger)}
		if o.debug {
			wopts = append(wopts, window.WithInspector(stats))
		}
		win = window.New(frame, wopts...)
		source = win.Source()

	case config.FrontendEvdev:
		r, closer, err := openInput(cfg.Input)
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			return closer.Close()
		})
		source = input.Stream(gctx, r)
	}

	l = loop.New(ctrl, input.NewMapper(table), source,
		loop.WithTick(cfg.Loop.Tick.Std()),
		loop.WithSettle(cfg.Loop.Settle.Std()),
		loop.WithLogger(logger),
	)
	m.WatchLoop(stats)

	if cfg.Metrics.Listen != "" {
		srv := status.New(frame, m.Registry(), status.WithLoopStats(stats), status.WithLogger(logger))
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.Metrics.Listen)
		})
	}

	g.Go(func() error {
		defer cancel()
		err := l.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logger.Info("game ready", "frontend", cfg.Frontend, "seed", cfg.Seed)

	if win != nil {
		err := win.Run(gctx)
		cancel()
		if err != nil {
			g.Wait()
			return err
		}
	}

	err = g.Wait()
	st := l.Stats()
	logger.Info("game closed",
		"cycles", st.Cycles,
		"lines", st.Lines,
		"game_overs", st.GameOvers,
		"avg_cycle", st.AvgDuration,
		"max_cycle", st.MaxDuration,
	)
	return err
}
