// Package config loads the game configuration: defaults, then a TOML file,
// then TETRIS_* variables from the environment or a .env file. Command-line
// flags are applied on top by the binary.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/loop"
)

// Frontends.
const (
	FrontendTerminal = "terminal"
	FrontendWindow   = "window"
	FrontendEvdev    = "evdev"
)

var ErrUnknownFrontend = errors.New("unknown frontend")

// Duration is a time.Duration written as a string ("5ms") in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Frontend string `toml:"frontend"`
	// Seed fixes the piece sequence; 0 picks a random seed.
	Seed uint64 `toml:"seed"`

	Loop     LoopConfig     `toml:"loop"`
	Input    InputConfig    `toml:"input"`
	Terminal TerminalConfig `toml:"terminal"`
	Sound    SoundConfig    `toml:"sound"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Log      LogConfig      `toml:"log"`
	Register RegisterConfig `toml:"register"`
}

type LoopConfig struct {
	Tick   Duration `toml:"tick"`
	Settle Duration `toml:"settle"`
}

type InputConfig struct {
	// Device is the evdev node read by the evdev frontend.
	Device     string `toml:"device"`
	RecordSize int    `toml:"record_size"`
	// CodeTable is an optional TOML file overriding the joystick bindings.
	CodeTable string `toml:"code_table"`
}

type TerminalConfig struct {
	// SoftDropHold is how long soft drop stays on after the last Down key
	// event; terminals do not report key releases.
	SoftDropHold Duration `toml:"soft_drop_hold"`
}

type SoundConfig struct {
	Enabled bool `toml:"enabled"`
	// Volume is in halvings of amplitude: 0 is full, -1 half, -2 a quarter.
	Volume float64 `toml:"volume"`
}

type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint; empty disables it.
	Listen string `toml:"listen"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type RegisterConfig struct {
	// Device is the display controller node; empty disables it.
	Device string `toml:"device"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Frontend: FrontendTerminal,
		Loop: LoopConfig{
			Tick:   Duration(loop.DefaultTick),
			Settle: Duration(loop.DefaultSettle),
		},
		Input: InputConfig{
			Device:     "/dev/input/event0",
			RecordSize: input.NativeRecordSize,
		},
		Terminal: TerminalConfig{
			SoftDropHold: Duration(150 * time.Millisecond),
		},
		Sound: SoundConfig{
			Enabled: true,
			Volume:  -1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path (skipped when empty) and the .env
// file in the working directory, if present, over the defaults.
func Load(path string) (Config, error) {
	return LoadFrom(path, ".env", os.LookupEnv)
}

// LoadFrom is Load with an explicit env file and environment lookup.
// Variables already present in the environment win over the env file.
func LoadFrom(path, envFile string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	var fileEnv map[string]string
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = m
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read env file: %w", err)
		}
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, get); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode parses TOML into cfg, rejecting keys cfg does not have.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, get func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	var errs []error
	parse := func(key string, fn func(string) error) {
		if v, ok := get(key); ok {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("TETRIS_FRONTEND", &cfg.Frontend)
	parse("TETRIS_SEED", func(v string) (err error) {
		cfg.Seed, err = strconv.ParseUint(v, 10, 64)
		return err
	})
	parse("TETRIS_TICK", cfg.Loop.Tick.set)
	parse("TETRIS_SETTLE", cfg.Loop.Settle.set)
	str("TETRIS_INPUT_DEVICE", &cfg.Input.Device)
	parse("TETRIS_RECORD_SIZE", func(v string) (err error) {
		cfg.Input.RecordSize, err = strconv.Atoi(v)
		return err
	})
	str("TETRIS_CODE_TABLE", &cfg.Input.CodeTable)
	parse("TETRIS_SOFT_DROP_HOLD", cfg.Terminal.SoftDropHold.set)
	parse("TETRIS_SOUND", func(v string) (err error) {
		cfg.Sound.Enabled, err = strconv.ParseBool(v)
		return err
	})
	parse("TETRIS_VOLUME", func(v string) (err error) {
		cfg.Sound.Volume, err = strconv.ParseFloat(v, 64)
		return err
	})
	str("TETRIS_METRICS_LISTEN", &cfg.Metrics.Listen)
	str("TETRIS_LOG_LEVEL", &cfg.Log.Level)
	str("TETRIS_LOG_FORMAT", &cfg.Log.Format)
	str("TETRIS_LOG_FILE", &cfg.Log.File)
	str("TETRIS_REGISTER_DEVICE", &cfg.Register.Device)

	return errors.Join(errs...)
}

func (d *Duration) set(s string) error {
	return d.UnmarshalText([]byte(s))
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	var errs []error
	switch c.Frontend {
	case FrontendTerminal, FrontendWindow, FrontendEvdev:
	default:
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownFrontend, c.Frontend))
	}
	if c.Loop.Tick <= 0 {
		errs = append(errs, fmt.Errorf("loop.tick must be positive, got %s", c.Loop.Tick.Std()))
	}
	if c.Loop.Settle < 0 {
		errs = append(errs, fmt.Errorf("loop.settle must not be negative, got %s", c.Loop.Settle.Std()))
	}
	if c.Input.RecordSize != input.RecordSize32 && c.Input.RecordSize != input.RecordSize64 {
		errs = append(errs, fmt.Errorf("input.record_size must be %d or %d, got %d", input.RecordSize32, input.RecordSize64, c.Input.RecordSize))
	}
	if c.Terminal.SoftDropHold <= 0 {
		errs = append(errs, fmt.Errorf("terminal.soft_drop_hold must be positive, got %s", c.Terminal.SoftDropHold.Std()))
	}
	if c.Sound.Volume > 0 {
		errs = append(errs, fmt.Errorf("sound.volume must not be above 0, got %g", c.Sound.Volume))
	}
	return errors.Join(errs...)
}

// CodeTable loads the configured code table, or the default one.
func (c Config) CodeTable() (input.CodeTable, error) {
	if c.Input.CodeTable == "" {
		return input.DefaultCodeTable(), nil
	}
	data, err := os.ReadFile(c.Input.CodeTable)
	if err != nil {
		return input.CodeTable{}, fmt.Errorf("read code table: %w", err)
	}
	return input.ParseCodeTable(data)
}
