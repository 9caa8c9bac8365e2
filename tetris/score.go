package tetris

import "fmt"

// MaxDisplayScore is the largest score the display can show.
const MaxDisplayScore = 9999

// SpeedLevels is the number of speed levels.
const SpeedLevels = 3

// SoftDropThreshold is the gravity threshold, in ticks, while soft drop is
// held.
const SoftDropThreshold = 10

// DropThresholds holds the gravity threshold in ticks for each speed level.
var DropThresholds = [SpeedLevels]int{120, 80, 40}

// Digits is a score packed as four BCD nibbles, least significant digit in
// the low nibble.
type Digits uint16

// ScoreDigits clamps score to MaxDisplayScore and packs it as BCD.
func ScoreDigits(score int) Digits {
	v := min(max(score, 0), MaxDisplayScore)
	var d Digits
	for i := range 4 {
		d |= Digits(v%10) << (4 * i)
		v /= 10
	}
	return d
}

// Value unpacks d to its decimal value.
func (d Digits) Value() int {
	v := 0
	for i := 3; i >= 0; i-- {
		v = v*10 + int((d>>(4*i))&0xF)
	}
	return v
}

// String renders d as four decimal digits.
func (d Digits) String() string {
	return fmt.Sprintf("%04d", d.Value())
}

// ScoreSpeed tracks the score accumulator and the speed level.
type ScoreSpeed struct {
	Score int
	Speed int
}

// AddLines credits n cleared lines and returns the points gained:
// n * (speed + n).
func (s *ScoreSpeed) AddLines(n int) int {
	gain := n * (s.Speed + n)
	s.Score += gain
	return gain
}

// CycleSpeed advances the speed level 0 -> 1 -> 2 -> 0.
func (s *ScoreSpeed) CycleSpeed() {
	s.Speed = (s.Speed + 1) % SpeedLevels
}

// Level returns the 1-based speed level shown on the display.
func (s ScoreSpeed) Level() int {
	return s.Speed + 1
}

// Threshold returns the number of ticks between gravity steps.
func (s ScoreSpeed) Threshold(softDrop bool) int {
	if softDrop {
		return SoftDropThreshold
	}
	return DropThresholds[s.Speed]
}

// Digits returns the display value of the score.
func (s ScoreSpeed) Digits() Digits {
	return ScoreDigits(s.Score)
}
