// Package sound plays short cues for game events: a chime per line clear,
// a longer fanfare for four lines, a jingle on a new game and a falling
// tone at game over.
package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/tetris/tetris"
)

// SampleRate is the rate every cue is rendered at.
const SampleRate = beep.SampleRate(44100)

// Cue identifies a sound.
type Cue int

const (
	CueStart Cue = iota
	CueLines
	CueFour
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueStart:
		return "start"
	case CueLines:
		return "lines"
	case CueFour:
		return "four"
	case CueGameOver:
		return "game over"
	}
	return "unknown"
}

// Init opens the audio device. It must be called once before New is used
// with speaker.Play.
func Init() error {
	return speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond))
}

// Sound is a Display that turns game events into cues. Rows cleared by one
// lock are collected and played as a single cue when the score update that
// follows them arrives.
type Sound struct {
	play    func(beep.Streamer)
	volume  float64
	pending int
}

// New returns a sound adapter handing cues to play, usually speaker.Play.
// Volume is in halvings of amplitude; 0 is full scale.
func New(play func(beep.Streamer), volume float64) *Sound {
	return &Sound{play: play, volume: volume}
}

// Streamer renders c.
func (s *Sound) Streamer(c Cue) beep.Streamer {
	var seq beep.Streamer
	switch c {
	case CueStart:
		seq = beep.Seq(note(523.25, 80), note(659.25, 80), note(783.99, 120))
	case CueLines:
		seq = note(880, 90)
	case CueFour:
		seq = beep.Seq(note(880, 70), note(1108.73, 70), note(1318.51, 70), note(1760, 160))
	case CueGameOver:
		seq = beep.Seq(note(392, 150), note(311.13, 150), note(261.63, 300))
	default:
		return nil
	}
	return &effects.Volume{Streamer: seq, Base: 2, Volume: s.volume}
}

func (s *Sound) cue(c Cue) {
	if st := s.Streamer(c); st != nil {
		s.play(st)
	}
}

func (s *Sound) SetCell(int, int, tetris.Type, int, bool) error { return nil }
func (s *Sound) SetNext(tetris.Type) error                      { return nil }
func (s *Sound) SetSpeed(int) error                             { return nil }

func (s *Sound) ClearRow(int) error {
	s.pending++
	return nil
}

func (s *Sound) SetScore(tetris.Digits) error {
	switch {
	case s.pending >= 4:
		s.cue(CueFour)
	case s.pending > 0:
		s.cue(CueLines)
	}
	s.pending = 0
	return nil
}

func (s *Sound) SetPause(code tetris.PauseCode) error {
	if code == tetris.PauseGameOver {
		s.cue(CueGameOver)
	}
	return nil
}

func (s *Sound) Reset() error {
	s.pending = 0
	s.cue(CueStart)
	return nil
}

// note is a sine tone of freq Hz lasting ms milliseconds, with a short
// linear fade in and out so the cue does not click.
func note(freq float64, ms int) beep.Streamer {
	return &tone{
		step:  freq / float64(SampleRate),
		total: SampleRate.N(time.Duration(ms) * time.Millisecond),
		fade:  SampleRate.N(5 * time.Millisecond),
	}
}

type tone struct {
	phase float64
	step  float64
	pos   int
	total int
	fade  int
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		gain := 1.0
		if t.pos < t.fade {
			gain = float64(t.pos) / float64(t.fade)
		} else if rem := t.total - t.pos; rem < t.fade {
			gain = float64(rem) / float64(t.fade)
		}
		v := gain * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.step
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
