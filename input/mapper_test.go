package input_test

import (
	"testing"

	"github.com/plus3/tetris/input"
	"github.com/plus3/tetris/tetris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaultTable(t *testing.T) {
	m := input.NewMapper(input.DefaultCodeTable())

	tests := []struct {
		name string
		ev   input.Event
		want tetris.Action
		ok   bool
	}{
		{"A rotates", input.Event{Kind: input.Button, Code: 33, Value: input.Pressed}, tetris.ActionRotate, true},
		{"L moves left", input.Event{Kind: input.Button, Code: 36, Value: input.Pressed}, tetris.ActionMoveLeft, true},
		{"R moves right", input.Event{Kind: input.Button, Code: 37, Value: input.Pressed}, tetris.ActionMoveRight, true},
		{"start", input.Event{Kind: input.Button, Code: 41, Value: input.Pressed}, tetris.ActionStartPause, true},
		{"select cycles speed", input.Event{Kind: input.Button, Code: 40, Value: input.Pressed}, tetris.ActionCycleSpeed, true},
		{"release is ignored", input.Event{Kind: input.Button, Code: 33, Value: input.Released}, tetris.ActionNone, false},
		{"auto-repeat is ignored", input.Event{Kind: input.Button, Code: 36, Value: 2}, tetris.ActionNone, false},
		{"unmapped button", input.Event{Kind: input.Button, Code: 34, Value: input.Pressed}, tetris.ActionNone, false},
		{"axis down", input.Event{Kind: input.Axis, Code: 1, Value: 255}, tetris.ActionSoftDropOn, true},
		{"axis centre", input.Event{Kind: input.Axis, Code: 1, Value: 128}, tetris.ActionSoftDropOff, true},
		{"axis up", input.Event{Kind: input.Axis, Code: 1, Value: 0}, tetris.ActionSoftDropOff, true},
		{"horizontal axis", input.Event{Kind: input.Axis, Code: 0, Value: 255}, tetris.ActionNone, false},
		{"unknown kind", input.Event{Code: 33, Value: input.Pressed}, tetris.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := m.Decode(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestNormalize(t *testing.T) {
	m := input.NewMapper(input.DefaultCodeTable())
	assert.Equal(t, -1, m.Normalize(0))
	assert.Equal(t, -1, m.Normalize(-20))
	assert.Equal(t, 0, m.Normalize(1))
	assert.Equal(t, 0, m.Normalize(128))
	assert.Equal(t, 0, m.Normalize(254))
	assert.Equal(t, 1, m.Normalize(255))
}

func TestSoftDropButton(t *testing.T) {
	table := input.DefaultCodeTable()
	table.Buttons[input.CodeB] = tetris.ActionSoftDropOn
	m := input.NewMapper(table)

	a, ok := m.Decode(input.Event{Kind: input.Button, Code: input.CodeB, Value: input.Pressed})
	require.True(t, ok)
	assert.Equal(t, tetris.ActionSoftDropOn, a)

	a, ok = m.Decode(input.Event{Kind: input.Button, Code: input.CodeB, Value: input.Released})
	require.True(t, ok)
	assert.Equal(t, tetris.ActionSoftDropOff, a)
}

func TestDecodeAll(t *testing.T) {
	m := input.NewMapper(input.DefaultCodeTable())
	got := m.DecodeAll([]input.Event{
		{Kind: input.Button, Code: input.CodeL, Value: input.Pressed},
		{Kind: input.Button, Code: input.CodeL, Value: input.Released},
		{Kind: input.Axis, Code: input.CodeAxisY, Value: 255},
		{Kind: input.Button, Code: 99, Value: input.Pressed},
		{Kind: input.Button, Code: input.CodeA, Value: input.Pressed},
	})
	assert.Equal(t, []tetris.Action{tetris.ActionMoveLeft, tetris.ActionSoftDropOn, tetris.ActionRotate}, got)
}

func TestParseCodeTable(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		ct, err := input.ParseCodeTable(nil)
		require.NoError(t, err)
		assert.Equal(t, input.DefaultCodeTable(), ct)
	})

	t.Run("overrides", func(t *testing.T) {
		ct, err := input.ParseCodeTable([]byte(`
soft_drop_axis = 17
axis_min = -32768
axis_max = 32767

[buttons]
304 = "rotate"
308 = "soft_drop_on"
315 = "start_pause"
`))
		require.NoError(t, err)
		assert.Equal(t, uint16(17), ct.SoftDropAxis)
		assert.Equal(t, int32(-32768), ct.AxisMin)
		assert.Equal(t, int32(32767), ct.AxisMax)
		assert.Equal(t, map[uint16]tetris.Action{
			304: tetris.ActionRotate,
			308: tetris.ActionSoftDropOn,
			315: tetris.ActionStartPause,
		}, ct.Buttons)
	})

	errorCases := map[string]string{
		"syntax":         `[buttons`,
		"bad code":       "[buttons]\nabc = \"rotate\"",
		"code too large": "[buttons]\n70000 = \"rotate\"",
		"bad action":     "[buttons]\n33 = \"jump\"",
		"release action": "[buttons]\n33 = \"soft_drop_off\"",
		"axis range":     "axis_min = 10\naxis_max = 10",
	}
	for name, data := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := input.ParseCodeTable([]byte(data))
			assert.Error(t, err)
		})
	}
}
