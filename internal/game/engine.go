package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"paddle-arena/internal/config"
)

// Engine owns the match simulation. One goroutine (the ticker loop, or a
// test calling Step directly) performs every MatchState mutation; input
// arrives through the IntentBuffer and commands take the engine mutex, so
// ticks never interleave with anything.
type Engine struct {
	mu    sync.Mutex
	court config.Court
	cfg   config.Match

	st         MatchState
	intents    *IntentBuffer
	difficulty string

	clock func() time.Time
	last  time.Time

	rng *rand.Rand

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount uint64
	snapshots *SnapshotPool

	// Event callbacks, set before Start. Invoked inside the tick, so they
	// must be cheap (metric increments, queue pushes).
	OnPoint     func(scorer Side, scorePlayer, scoreOpponent int)
	OnPaddleHit func(side Side)
	OnMatchOver func(winner Side)
	OnTick      func(elapsed time.Duration)
}

// EngineConfig bundles the engine's construction parameters.
type EngineConfig struct {
	Court config.Court
	Match config.Match

	// Clock supplies tick timestamps; defaults to time.Now. Injecting a fake
	// clock makes serve-freeze and dt behavior deterministic in tests.
	Clock func() time.Time

	// Seed for the serve randomizer; 0 means derive from the clock.
	Seed int64
}

// NewEngine creates an engine with the match ready to serve. The loop does
// not run until Start is called; tests drive Step directly instead.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock().UnixNano()
	}

	e := &Engine{
		court:      cfg.Court,
		cfg:        cfg.Match,
		intents:    NewIntentBuffer(),
		difficulty: config.DefaultTier,
		clock:      cfg.Clock,
		rng:        rand.New(rand.NewSource(seed)),
		stopChan:   make(chan struct{}),
		snapshots:  NewSnapshotPool(),
	}

	e.resetMatch(e.clock())
	e.produceSnapshot(e.clock())
	return e
}

// Start begins the tick loop. The engine may be started again after Stop;
// each Start gets a fresh stop channel so the old loop's shutdown cannot
// leak into the new one.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.Step(e.clock())
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🏓 Match engine started at %d TPS", e.cfg.TickRate)
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Match engine stopped")
}

// Intents returns the input buffer that input collaborators write into.
func (e *Engine) Intents() *IntentBuffer {
	return e.intents
}

// Step advances the simulation to the given timestamp. Exported so tests can
// drive the engine deterministically with a fake clock.
func (e *Engine) Step(now time.Time) {
	started := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	dt := e.cfg.ReferenceFrame
	if !e.last.IsZero() {
		dt = now.Sub(e.last)
		if dt < 0 {
			dt = 0
		}
		// Clamp so a stalled process (debugger, suspended host) cannot
		// produce one giant unstable physics step.
		if dt > e.cfg.MaxTickDelta {
			dt = e.cfg.MaxTickDelta
		}
	}
	e.last = now
	e.tickCount++

	if e.st.Paused {
		e.produceSnapshot(now)
		return
	}

	dtScale := float64(dt) / float64(e.cfg.ReferenceFrame)

	movePlayerPaddle(&e.st, e.intents.Snapshot(), e.court, e.cfg.PlayerSpeed, dtScale)
	moveOpponentPaddle(&e.st, e.court, e.difficulty, dtScale)

	switch e.st.Phase {
	case PhaseServing:
		// Serve-freeze window: the ball stays put until the delay elapses.
		if now.Sub(e.st.ServeStart) >= e.cfg.ServeFreeze {
			e.st.Phase = PhaseRallying
		}
	case PhaseRallying:
		e.advanceBall(now, dtScale)
	}

	e.produceSnapshot(now)

	if e.OnTick != nil {
		e.OnTick(time.Since(started))
	}
}

// advanceBall runs one rally step: integration, wall and paddle collisions,
// and the exit/score check.
func (e *Engine) advanceBall(now time.Time, dtScale float64) {
	integrateBall(&e.st, dtScale)
	bounceWalls(&e.st, e.court)

	if side, hit := collidePaddles(&e.st, e.court, e.cfg); hit {
		if e.OnPaddleHit != nil {
			e.OnPaddleHit(side)
		}
	}

	if conceded, out := ballOut(&e.st, e.court); out {
		e.scorePoint(conceded.Other(), now)
	}
}

// scorePoint credits a point, then either ends the match or rotates the
// server and re-enters Serving.
func (e *Engine) scorePoint(scorer Side, now time.Time) {
	if scorer == SidePlayer {
		e.st.ScorePlayer++
	} else {
		e.st.ScoreOpponent++
	}

	log.Printf("🏓 Point to %s (%d-%d)", scorer, e.st.ScorePlayer, e.st.ScoreOpponent)
	if e.OnPoint != nil {
		e.OnPoint(scorer, e.st.ScorePlayer, e.st.ScoreOpponent)
	}

	if winner, over := Winner(e.st.ScorePlayer, e.st.ScoreOpponent, e.cfg.TargetScore, e.cfg.WinMargin); over {
		e.st.Phase = PhaseMatchOver
		e.st.Paused = true // Halt ticking until an explicit restart
		log.Printf("🏆 Match over: %s wins %d-%d", winner, e.st.ScorePlayer, e.st.ScoreOpponent)
		if e.OnMatchOver != nil {
			e.OnMatchOver(winner)
		}
		return
	}

	e.st.Server = ServerForTotal(e.st.TotalPoints())
	e.enterServe(now)
}

// enterServe positions the ball adjacent to the serving paddle at a
// randomized height within the middle 60% of the court, aims it at the
// receiver at base speed, and records the serve timestamp that gates the
// freeze window.
func (e *Engine) enterServe(now time.Time) {
	e.st.Phase = PhaseServing
	e.st.ServeStart = now
	e.st.BallSpeed = e.cfg.BaseBallSpeed

	e.st.BallY = e.court.Height*0.2 + e.rng.Float64()*e.court.Height*0.6

	if e.st.Server == SidePlayer {
		e.st.BallX = e.court.PlayerFaceX() + e.court.BallRadius
		e.st.BallVX = e.st.BallSpeed
	} else {
		e.st.BallX = e.court.OpponentFaceX() - e.court.BallRadius
		e.st.BallVX = -e.st.BallSpeed
	}
	e.st.BallVY = (e.rng.Float64()*2 - 1) * 0.4 * e.st.BallSpeed
}

// resetMatch re-initializes the aggregate in place for a fresh match.
func (e *Engine) resetMatch(now time.Time) {
	center := (e.court.Height - e.court.PaddleHeight) / 2
	e.st.PlayerY = center
	e.st.OpponentY = center
	e.st.ScorePlayer = 0
	e.st.ScoreOpponent = 0
	e.st.Server = SidePlayer
	e.st.Paused = false
	e.enterServe(now)
}

// RestartMatch unconditionally resets the match: scores zeroed, paddles
// centered, player serves first. Valid in any phase, including MatchOver.
func (e *Engine) RestartMatch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetMatch(e.clock())
	e.produceSnapshot(e.clock())
	log.Println("🔁 Match restarted")
}

// TogglePause flips the pause overlay and returns the new value. The phase is
// untouched, so resuming continues exactly where play stopped. While the
// match is over the toggle is inert: the engine stays halted until restart.
func (e *Engine) TogglePause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Phase == PhaseMatchOver {
		return true
	}
	e.st.Paused = !e.st.Paused
	e.produceSnapshot(e.clock())
	return e.st.Paused
}

// SetDifficulty selects the opponent's speed tier, effective on the next
// tick. Unrecognized names fall back to the default tier; the normalized
// name is returned.
func (e *Engine) SetDifficulty(tier string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.difficulty = config.NormalizeTier(tier)
	return e.difficulty
}

// Difficulty returns the current tier name.
func (e *Engine) Difficulty() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

// State returns a copy of the match aggregate. Intended for tests; rendering
// and the API read Snapshot instead.
func (e *Engine) State() MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st
}

// Snapshot returns the latest published immutable snapshot.
func (e *Engine) Snapshot() *MatchSnapshot {
	return e.snapshots.AcquireRead()
}

// produceSnapshot publishes the current state through the triple buffer.
// Called at the end of every tick and after synchronous commands, so readers
// never see a half-applied command.
func (e *Engine) produceSnapshot(now time.Time) {
	snap := e.snapshots.AcquireWrite()

	snap.Tick = e.tickCount
	snap.PlayerY = e.st.PlayerY
	snap.OpponentY = e.st.OpponentY
	snap.BallX = e.st.BallX
	snap.BallY = e.st.BallY
	snap.BallVX = e.st.BallVX
	snap.BallVY = e.st.BallVY
	snap.BallSpeed = e.st.BallSpeed
	snap.ScorePlayer = e.st.ScorePlayer
	snap.ScoreOpponent = e.st.ScoreOpponent
	snap.Server = e.st.Server
	snap.Phase = e.st.Phase
	snap.Paused = e.st.Paused
	snap.Difficulty = e.difficulty

	snap.FreezeLeft = 0
	if e.st.Phase == PhaseServing {
		if left := e.cfg.ServeFreeze - now.Sub(e.st.ServeStart); left > 0 {
			snap.FreezeLeft = left.Seconds()
		}
	}

	e.snapshots.PublishWrite()
}
