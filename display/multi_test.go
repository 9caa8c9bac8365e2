package display_test

import (
	"errors"
	"testing"

	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/tetris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiFansOut(t *testing.T) {
	a, b, c := &display.Recorder{}, &display.Recorder{}, &display.Recorder{}
	d := display.Multi(a, nil, display.Multi(b, c))

	require.NoError(t, d.Reset())
	require.NoError(t, d.SetCell(3, 4, tetris.TypeL, 2, true))
	require.NoError(t, d.SetScore(tetris.ScoreDigits(12)))
	require.NoError(t, d.SetNext(tetris.TypeJ))
	require.NoError(t, d.SetSpeed(2))
	require.NoError(t, d.ClearRow(21))
	require.NoError(t, d.SetPause(tetris.PausePaused))

	want := []string{
		"Reset()",
		"SetCell(3,4,L,2,true)",
		"SetScore(12)",
		"SetNext(J)",
		"SetSpeed(2)",
		"ClearRow(21)",
		"SetPause(1)",
	}
	for _, r := range []*display.Recorder{a, b, c} {
		var got []string
		for _, cmd := range r.Commands() {
			got = append(got, cmd.String())
		}
		assert.Equal(t, want, got)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	a := &display.Recorder{Err: errA}
	b := &display.Recorder{}
	c := &display.Recorder{Err: errC}

	err := display.Multi(a, b, c).SetNext(tetris.TypeS)

	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
	assert.Len(t, b.Commands(), 1, "a failure does not stop the fan-out")
	assert.Len(t, c.Commands(), 1)
}

func TestRecorderQueries(t *testing.T) {
	r := &display.Recorder{}
	_ = r.SetSpeed(1)
	_ = r.SetSpeed(2)
	_ = r.ClearRow(19)

	assert.Len(t, r.Named(display.CmdSetSpeed), 2)
	last, ok := r.Last(display.CmdSetSpeed)
	require.True(t, ok)
	assert.Equal(t, 2, last.Value)
	_, ok = r.Last(display.CmdReset)
	assert.False(t, ok)

	assert.Len(t, r.Drain(), 3)
	assert.Empty(t, r.Commands())
}
