package tetris

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// Phase is the controller's position in the game lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhasePaused
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game over"
	}
	return "unknown"
}

// Axis selects the direction of a move.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// MoveResult is the outcome of a move or rotation.
type MoveResult int

const (
	// Rejected means the candidate position was blocked; nothing changed.
	Rejected MoveResult = iota
	// Committed means the piece moved and the board reflects it.
	Committed
	// Locked means a downward move was blocked, so the piece landed and
	// the lock-and-advance step ran.
	Locked
)

func (r MoveResult) String() string {
	switch r {
	case Rejected:
		return "rejected"
	case Committed:
		return "committed"
	case Locked:
		return "locked"
	}
	return "unknown"
}

// GameState is the per-game bookkeeping. It is replaced wholesale on reset.
type GameState struct {
	ScoreSpeed
	Paused    bool
	Ended     bool
	DropTicks int
	SoftDrop  bool
	Next      Type
	// Suppress skips the next loop cycle after a line clear.
	Suppress bool
}

// TickResult describes what a gravity tick did.
type TickResult struct {
	// Stepped is true when the drop threshold was reached and a downward
	// move was attempted.
	Stepped  bool
	Move     MoveResult
	Cleared  int
	GameOver bool
}

// Controller owns the board, the falling piece and the game state, and
// pushes every visible change to its Display. It is not safe for concurrent
// use; the main loop is its only caller.
type Controller struct {
	display Display
	logger  *slog.Logger
	rng     *rand.Rand

	board   Board
	piece   Piece
	state   GameState
	started bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for display failures and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithRand sets the random source used to draw piece types.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) {
		c.rng = r
	}
}

// WithSeed seeds the piece generator deterministically.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewController returns a controller in the Idle phase. Nothing is sent to
// the display until the first Start.
func NewController(d Display, opts ...Option) *Controller {
	if d == nil {
		d = NopDisplay{}
	}
	now := uint64(time.Now().UnixNano())
	c := &Controller{
		display: d,
		logger:  slog.Default(),
		rng:     rand.New(rand.NewPCG(now, now>>1)),
		state:   GameState{Paused: true, Ended: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	switch {
	case !c.started:
		return PhaseIdle
	case c.state.Ended:
		return PhaseGameOver
	case c.state.Paused:
		return PhasePaused
	}
	return PhasePlaying
}

// Board returns a copy of the board, including the falling piece's cells.
func (c *Controller) Board() Board { return c.board }

// Piece returns the falling piece.
func (c *Controller) Piece() Piece { return c.piece }

// State returns a copy of the game state.
func (c *Controller) State() GameState { return c.state }

// Start handles the start/pause button: it begins a new game from Idle or
// GameOver and toggles pause otherwise.
func (c *Controller) Start() {
	switch c.Phase() {
	case PhaseIdle, PhaseGameOver:
		c.Reset()
	case PhasePlaying:
		c.state.Paused = true
		c.show("SetPause", c.display.SetPause(PausePaused))
		c.logger.Debug("game paused")
	case PhasePaused:
		c.state.Paused = false
		c.show("SetPause", c.display.SetPause(PauseRunning))
		c.logger.Debug("game resumed")
	}
}

// Reset discards the current game and starts a new one with a random first
// piece.
func (c *Controller) Reset() {
	c.board.Reset()
	c.state = GameState{}
	c.started = true
	c.show("Reset", c.display.Reset())

	if !c.trySpawn(c.randomType()) {
		c.endGame()
		return
	}
	c.show("SetScore", c.display.SetScore(c.state.Digits()))
	c.show("SetSpeed", c.display.SetSpeed(c.state.Level()))
	c.show("SetPause", c.display.SetPause(PauseRunning))
	c.announceNext()
	c.logger.Info("game started", "piece", c.piece.Type, "next", c.state.Next)
}

// Apply dispatches a decoded action. Start/pause and soft-drop release are
// always accepted; everything else only while playing. It reports whether
// the action was accepted.
func (c *Controller) Apply(a Action) bool {
	switch a {
	case ActionStartPause:
		c.Start()
		return true
	case ActionSoftDropOff:
		c.state.SoftDrop = false
		return true
	}

	if c.Phase() != PhasePlaying {
		return false
	}

	switch a {
	case ActionRotate:
		c.Rotate()
	case ActionMoveLeft:
		c.Move(-1, Horizontal)
	case ActionMoveRight:
		c.Move(1, Horizontal)
	case ActionSoftDropOn:
		c.state.SoftDrop = true
	case ActionCycleSpeed:
		c.CycleSpeed()
	default:
		return false
	}
	return true
}

// Tick advances gravity by one tick. Once the drop counter reaches the
// active threshold the piece is moved down one row.
func (c *Controller) Tick() TickResult {
	if c.Phase() != PhasePlaying {
		return TickResult{}
	}

	c.state.DropTicks++
	if c.state.DropTicks < c.state.Threshold(c.state.SoftDrop) {
		return TickResult{}
	}
	c.state.DropTicks = 0

	res, cleared := c.drop()
	return TickResult{
		Stepped:  true,
		Move:     res,
		Cleared:  cleared,
		GameOver: c.state.Ended,
	}
}

// ConsumeSuppress reports whether the suppress-next-cycle flag was set and
// clears it.
func (c *Controller) ConsumeSuppress() bool {
	if !c.state.Suppress {
		return false
	}
	c.state.Suppress = false
	return true
}

// Move displaces the piece by delta along axis. A blocked downward move
// locks the piece and advances to the next one.
func (c *Controller) Move(delta int, axis Axis) MoveResult {
	if c.Phase() != PhasePlaying {
		return Rejected
	}
	if axis == Vertical && delta > 0 {
		res, _ := c.drop()
		return res
	}

	next := c.piece.Moved(delta, 0)
	if axis == Vertical {
		next = c.piece.Moved(0, delta)
	}
	if !c.commit(next) {
		return Rejected
	}
	return Committed
}

// Rotate turns the piece one step clockwise in place. There are no wall
// kicks: the rotation either fits where the piece is or is rejected.
func (c *Controller) Rotate() MoveResult {
	if c.Phase() != PhasePlaying {
		return Rejected
	}
	if !c.commit(c.piece.Rotated()) {
		return Rejected
	}
	return Committed
}

// CycleSpeed advances the speed level and publishes it.
func (c *Controller) CycleSpeed() {
	c.state.CycleSpeed()
	c.show("SetSpeed", c.display.SetSpeed(c.state.Level()))
}

// LockAndAdvance clears complete rows, credits the score and spawns the
// announced next piece. It reports the number of cleared rows and whether
// the spawn succeeded; a failed spawn ends the game.
//
// Rows are scanned once from top to bottom. A cleared row pulls the rows
// above it down, all of which were already checked.
func (c *Controller) LockAndAdvance() (cleared int, ok bool) {
	for row := range Height {
		if !c.board.RowComplete(row) {
			continue
		}
		c.board.ClearAndShift(row)
		c.show("ClearRow", c.display.ClearRow(row))
		cleared++
	}

	if cleared > 0 {
		gain := c.state.AddLines(cleared)
		c.state.Suppress = true
		c.logger.Debug("rows cleared", "rows", cleared, "gain", gain, "score", c.state.Score)
	}
	c.show("SetScore", c.display.SetScore(c.state.Digits()))

	if !c.trySpawn(c.state.Next) {
		c.endGame()
		return cleared, false
	}
	c.state.SoftDrop = false
	c.announceNext()
	return cleared, true
}

func (c *Controller) drop() (MoveResult, int) {
	if c.commit(c.piece.Moved(0, 1)) {
		return Committed, 0
	}
	cleared, _ := c.LockAndAdvance()
	return Locked, cleared
}

// commit moves the piece to next if it fits, updating board and display.
func (c *Controller) commit(next Piece) bool {
	old := c.piece.Footprint()
	fp := next.Footprint()
	if !c.board.Fits(fp, old[:]) {
		return false
	}
	c.board.place(old, fp)

	prev := c.piece
	c.piece = next
	c.show("SetCell", c.display.SetCell(prev.Y, prev.X, prev.Type, prev.Rotation, false))
	c.show("SetCell", c.display.SetCell(next.Y, next.X, next.Type, next.Rotation, true))
	return true
}

// trySpawn places a new piece of type t at the top. It fails without
// touching the board when the spawn cells are blocked.
func (c *Controller) trySpawn(t Type) bool {
	p := newPiece(t)
	fp := p.Footprint()
	if !c.board.Fits(fp, nil) {
		return false
	}
	c.board.Toggle(fp)
	c.piece = p
	c.show("SetCell", c.display.SetCell(p.Y, p.X, p.Type, p.Rotation, true))
	return true
}

func (c *Controller) endGame() {
	c.state.Ended = true
	c.state.Paused = true
	c.state.SoftDrop = false
	c.show("SetPause", c.display.SetPause(PauseGameOver))
	c.logger.Info("game over", "score", c.state.Score, "speed", c.state.Level())
}

// announceNext draws the next type, avoiding the type currently falling,
// and publishes it.
func (c *Controller) announceNext() {
	t := c.randomType()
	if t == c.piece.Type {
		t = Type((int(t) + 1 + c.rng.IntN(TypeCount-1)) % TypeCount)
	}
	c.state.Next = t
	c.show("SetNext", c.display.SetNext(t))
}

func (c *Controller) randomType() Type {
	return Type(c.rng.IntN(TypeCount))
}

func (c *Controller) show(cmd string, err error) {
	if err != nil {
		c.logger.Warn("display command failed", "command", cmd, "error", err)
	}
}
