package tetris

// PauseCode is the pause state sent to the display.
type PauseCode int

const (
	PauseRunning  PauseCode = 0
	PausePaused   PauseCode = 1
	PauseGameOver PauseCode = 3
)

func (c PauseCode) String() string {
	switch c {
	case PauseRunning:
		return "running"
	case PausePaused:
		return "paused"
	case PauseGameOver:
		return "game over"
	}
	return "unknown"
}

// Display receives rendering commands from the controller. Calls are
// synchronous and must not block. A returned error is logged by the
// controller and otherwise ignored: engine state is never rolled back.
//
// SetCell addresses a whole piece: row and col are the piece anchor and the
// adapter resolves the four covered cells from type and rotation.
type Display interface {
	SetCell(row, col int, t Type, rotation int, on bool) error
	SetScore(d Digits) error
	SetNext(t Type) error
	SetSpeed(level int) error
	ClearRow(row int) error
	SetPause(code PauseCode) error
	Reset() error
}

// NopDisplay discards every command.
type NopDisplay struct{}

func (NopDisplay) SetCell(int, int, Type, int, bool) error { return nil }
func (NopDisplay) SetScore(Digits) error                   { return nil }
func (NopDisplay) SetNext(Type) error                      { return nil }
func (NopDisplay) SetSpeed(int) error                      { return nil }
func (NopDisplay) ClearRow(int) error                      { return nil }
func (NopDisplay) SetPause(PauseCode) error                { return nil }
func (NopDisplay) Reset() error                            { return nil }
