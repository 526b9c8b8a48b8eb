package game

import "paddle-arena/internal/config"

// movePlayerPaddle applies the human paddle's movement for one tick.
//
// Keyboard intents are velocities: exactly one of up/down moves the paddle,
// both or neither leaves it still. An active pointer drag is an absolute
// override: the dragged Y is taken as the desired paddle center. The clamp is
// applied after every positional update, pointer sets included.
func movePlayerPaddle(st *MatchState, in Intent, court config.Court, speed, dtScale float64) {
	if in.MoveUp != in.MoveDown {
		delta := speed * dtScale
		if in.MoveUp {
			delta = -delta
		}
		st.PlayerY += delta
	}

	if in.PointerActive {
		st.PlayerY = in.PointerY - court.PaddleHeight/2
	}

	st.PlayerY = clamp(st.PlayerY, 0, court.MaxPaddleY())
}
