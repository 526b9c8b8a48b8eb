package game

import (
	"testing"

	"paddle-arena/internal/config"
)

// TestMovePlayerPaddleKeys verifies keyboard movement and the both-keys rule
func TestMovePlayerPaddleKeys(t *testing.T) {
	court := testCourt()

	tests := []struct {
		name   string
		intent Intent
		startY float64
		wantY  float64
	}{
		{"up moves up", Intent{MoveUp: true}, 200, 193},
		{"down moves down", Intent{MoveDown: true}, 200, 207},
		{"both keys cancel", Intent{MoveUp: true, MoveDown: true}, 200, 200},
		{"no keys no movement", Intent{}, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := MatchState{PlayerY: tt.startY}
			movePlayerPaddle(&st, tt.intent, court, 7.0, 1.0)
			if st.PlayerY != tt.wantY {
				t.Errorf("PlayerY = %v, want %v", st.PlayerY, tt.wantY)
			}
		})
	}
}

// TestMovePlayerPaddleClamp verifies the paddle never leaves the court
func TestMovePlayerPaddleClamp(t *testing.T) {
	court := testCourt()

	st := MatchState{PlayerY: 2}
	movePlayerPaddle(&st, Intent{MoveUp: true}, court, 7.0, 1.0)
	if st.PlayerY != 0 {
		t.Errorf("PlayerY = %v, want clamped to 0", st.PlayerY)
	}

	st.PlayerY = court.MaxPaddleY() - 2
	movePlayerPaddle(&st, Intent{MoveDown: true}, court, 7.0, 1.0)
	if st.PlayerY != court.MaxPaddleY() {
		t.Errorf("PlayerY = %v, want clamped to %v", st.PlayerY, court.MaxPaddleY())
	}
}

// TestMovePlayerPaddlePointer verifies pointer drags override keyboard intents
// and clamp like any other positional update
func TestMovePlayerPaddlePointer(t *testing.T) {
	court := testCourt()

	st := MatchState{PlayerY: 10}
	movePlayerPaddle(&st, Intent{MoveUp: true, PointerActive: true, PointerY: 300}, court, 7.0, 1.0)

	want := 300 - court.PaddleHeight/2
	if st.PlayerY != want {
		t.Errorf("PlayerY = %v, want pointer-centered %v", st.PlayerY, want)
	}

	// A drag past the bottom edge clamps.
	movePlayerPaddle(&st, Intent{PointerActive: true, PointerY: court.Height + 100}, court, 7.0, 1.0)
	if st.PlayerY != court.MaxPaddleY() {
		t.Errorf("PlayerY = %v, want clamped to %v", st.PlayerY, court.MaxPaddleY())
	}
}

// TestMovePlayerPaddleDtScale verifies speed scales with tick duration
func TestMovePlayerPaddleDtScale(t *testing.T) {
	court := testCourt()

	st := MatchState{PlayerY: 200}
	movePlayerPaddle(&st, Intent{MoveDown: true}, court, 7.0, 0.5)
	if st.PlayerY != 203.5 {
		t.Errorf("PlayerY = %v, want 203.5 on a half-length tick", st.PlayerY)
	}
}

// TestOpponentStepChasesBall verifies the tracker follows an approaching ball
func TestOpponentStepChasesBall(t *testing.T) {
	cap := config.OpponentSpeedCap(config.TierMedium)

	// Ball far below the paddle and approaching: full step down.
	delta := OpponentStep(400, 6, 200, 270, cap, 1.0)
	if delta != cap {
		t.Errorf("delta = %v, want full step %v", delta, cap)
	}

	// Ball just above: partial step, no overshoot.
	delta = OpponentStep(198, 6, 200, 270, cap, 1.0)
	if delta != -2 {
		t.Errorf("delta = %v, want -2", delta)
	}
}

// TestOpponentStepReturnsToCenter verifies the tracker drifts home while the
// ball travels away
func TestOpponentStepReturnsToCenter(t *testing.T) {
	cap := config.OpponentSpeedCap(config.TierMedium)

	delta := OpponentStep(400, -6, 100, 270, cap, 1.0)
	if delta != cap {
		t.Errorf("delta = %v, want step toward center %v", delta, cap)
	}

	// Already centered: no movement.
	delta = OpponentStep(400, -6, 270, 270, cap, 1.0)
	if delta != 0 {
		t.Errorf("delta = %v, want 0 at center", delta)
	}
}

// TestOpponentStepTierCaps verifies higher tiers move faster
func TestOpponentStepTierCaps(t *testing.T) {
	low := OpponentStep(500, 6, 100, 270, config.OpponentSpeedCap(config.TierLow), 1.0)
	high := OpponentStep(500, 6, 100, 270, config.OpponentSpeedCap(config.TierHigh), 1.0)

	if low >= high {
		t.Errorf("low tier step %v should be smaller than high tier step %v", low, high)
	}
}

// TestMoveOpponentPaddleClamp verifies the tracker respects court bounds
func TestMoveOpponentPaddleClamp(t *testing.T) {
	court := testCourt()

	st := MatchState{OpponentY: court.MaxPaddleY() - 1, BallY: court.Height, BallVX: 6}
	for i := 0; i < 50; i++ {
		moveOpponentPaddle(&st, court, config.TierHigh, 1.0)
	}
	if st.OpponentY > court.MaxPaddleY() {
		t.Errorf("OpponentY = %v exceeds max %v", st.OpponentY, court.MaxPaddleY())
	}
}
