package game

import (
	"math"

	"paddle-arena/internal/config"
)

// integrateBall advances the ball by its velocity scaled to the tick duration.
func integrateBall(st *MatchState, dtScale float64) {
	st.BallX += st.BallVX * dtScale
	st.BallY += st.BallVY * dtScale
}

// bounceWalls reflects the vertical velocity when the ball crosses the top or
// bottom bound while still moving toward it. The position is snapped to the
// boundary so a slow ball cannot re-trigger the same reflection next tick.
func bounceWalls(st *MatchState, court config.Court) bool {
	r := court.BallRadius

	if st.BallY-r <= 0 && st.BallVY < 0 {
		st.BallY = r
		st.BallVY = -st.BallVY
		return true
	}
	if st.BallY+r >= court.Height && st.BallVY > 0 {
		st.BallY = court.Height - r
		st.BallVY = -st.BallVY
		return true
	}
	return false
}

// collidePaddles checks the ball against both paddle faces and applies the
// deflection on a hit. Returns the side whose paddle connected.
//
// A hit requires the ball's leading edge inside the paddle's thickness band
// on the correct side AND vertical overlap with the paddle span. The bounce
// angle is proportional to how far from the paddle center the ball struck;
// each hit speeds the ball up toward the cap. The ball is repositioned just
// outside the face so one contact produces exactly one deflection.
func collidePaddles(st *MatchState, court config.Court, cfg config.Match) (Side, bool) {
	r := court.BallRadius

	// Player paddle guards the left side.
	if st.BallVX < 0 {
		face := court.PlayerFaceX()
		lead := st.BallX - r
		if lead <= face && lead >= court.PaddleMargin && ballOverlapsPaddle(st.BallY, st.PlayerY, court) {
			deflect(st, court, cfg, st.PlayerY, 1)
			st.BallX = face + r
			return SidePlayer, true
		}
	}

	// Opponent paddle guards the right side.
	if st.BallVX > 0 {
		face := court.OpponentFaceX()
		lead := st.BallX + r
		if lead >= face && lead <= court.Width-court.PaddleMargin && ballOverlapsPaddle(st.BallY, st.OpponentY, court) {
			deflect(st, court, cfg, st.OpponentY, -1)
			st.BallX = face - r
			return SideOpponent, true
		}
	}

	return SidePlayer, false
}

// ballOverlapsPaddle reports whether the ball's vertical extent intersects
// the paddle's span.
func ballOverlapsPaddle(ballY, paddleY float64, court config.Court) bool {
	r := court.BallRadius
	return ballY+r >= paddleY && ballY-r <= paddleY+court.PaddleHeight
}

// deflect recomputes ball velocity after a paddle hit. dirX is +1 when the
// ball must leave toward the right (player hit), -1 toward the left.
func deflect(st *MatchState, court config.Court, cfg config.Match, paddleY, dirX float64) {
	half := court.PaddleHeight / 2
	intersect := (st.BallY - (paddleY + half)) / half
	intersect = clamp(intersect, -1, 1)

	st.BallSpeed = math.Min(st.BallSpeed*cfg.SpeedMultiplier, cfg.MaxBallSpeed)

	angle := intersect * cfg.MaxBounceAngle
	st.BallVX = dirX * st.BallSpeed * math.Cos(angle)
	st.BallVY = st.BallSpeed * math.Sin(angle)
}

// ballOut reports whether the ball has exited the court, and which side
// conceded the point.
func ballOut(st *MatchState, court config.Court) (conceded Side, out bool) {
	r := court.BallRadius
	if st.BallX-r < 0 {
		return SidePlayer, true
	}
	if st.BallX+r > court.Width {
		return SideOpponent, true
	}
	return SidePlayer, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
