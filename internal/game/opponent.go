package game

import "paddle-arena/internal/config"

// OpponentStep computes the computer paddle's movement for one tick as a pure
// function of visible state, so the tracker is testable in isolation.
//
// The paddle chases the ball's Y only while the ball travels toward the
// opponent side; otherwise it drifts back to the court's vertical center,
// which keeps it from jittering around a receding ball. The step is clamped
// to the difficulty tier's speed cap, which is what makes the tracker
// beatable: a steep deflection outruns it.
//
// ballVX > 0 means the ball is moving toward the opponent. paddleCenterY is
// the paddle's current center; the return value is the delta to apply to it.
func OpponentStep(ballY, ballVX, paddleCenterY, courtCenterY, speedCap, dtScale float64) float64 {
	target := courtCenterY
	if ballVX > 0 {
		target = ballY
	}

	maxStep := speedCap * dtScale
	return clamp(target-paddleCenterY, -maxStep, maxStep)
}

// moveOpponentPaddle applies the tracker's step and clamps to court bounds.
// The difficulty tier is read live each tick, so a mid-match tier change
// takes effect on the next step.
func moveOpponentPaddle(st *MatchState, court config.Court, tier string, dtScale float64) {
	half := court.PaddleHeight / 2
	center := st.OpponentY + half

	delta := OpponentStep(st.BallY, st.BallVX, center, court.Height/2, config.OpponentSpeedCap(tier), dtScale)

	st.OpponentY = clamp(st.OpponentY+delta, 0, court.MaxPaddleY())
}
