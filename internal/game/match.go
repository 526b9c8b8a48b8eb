package game

import (
	"encoding/json"
	"time"
)

// Side identifies one of the two competitors.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns the lowercase side name used in JSON payloads and logs.
func (s Side) String() string {
	if s == SideOpponent {
		return "opponent"
	}
	return "player"
}

// MarshalJSON encodes the side as its string name.
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Phase is the match state machine's logical state. Pause is an orthogonal
// overlay flag on MatchState, not a phase: pausing and resuming preserves
// exactly the pre-pause phase.
type Phase int

const (
	PhaseServing Phase = iota
	PhaseRallying
	PhaseMatchOver
)

// String returns the lowercase phase name used in JSON payloads and logs.
func (p Phase) String() string {
	switch p {
	case PhaseRallying:
		return "rallying"
	case PhaseMatchOver:
		return "matchover"
	default:
		return "serving"
	}
}

// MarshalJSON encodes the phase as its string name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// MatchState is the single mutable aggregate for one match. It is owned
// exclusively by the Engine: all writes happen inside the tick under the
// engine mutex, and everything outside the engine sees only immutable
// snapshots. Created once at startup and reset in place, never reallocated.
type MatchState struct {
	PlayerY   float64 // Top edge of the human paddle
	OpponentY float64 // Top edge of the computer paddle

	BallX, BallY   float64
	BallVX, BallVY float64
	BallSpeed      float64 // Scalar magnitude, kept in [base, max]

	ScorePlayer   int
	ScoreOpponent int

	Server Side  // Who serves the next point
	Phase  Phase
	Paused bool

	ServeStart time.Time // When the current serve was initiated
}

// TotalPoints returns the cumulative points played this match.
func (st *MatchState) TotalPoints() int {
	return st.ScorePlayer + st.ScoreOpponent
}

// ServerForTotal returns who serves given the cumulative point count.
// Serve alternates every 2 points played, regardless of who scored them,
// the way paddle sports rotate service.
func ServerForTotal(totalPoints int) Side {
	if (totalPoints/2)%2 == 1 {
		return SideOpponent
	}
	return SidePlayer
}

// Winner reports whether a side has won: score at target or beyond AND
// leading by at least the margin.
func Winner(scorePlayer, scoreOpponent, target, margin int) (Side, bool) {
	if scorePlayer >= target && scorePlayer-scoreOpponent >= margin {
		return SidePlayer, true
	}
	if scoreOpponent >= target && scoreOpponent-scorePlayer >= margin {
		return SideOpponent, true
	}
	return SidePlayer, false
}
