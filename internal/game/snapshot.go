package game

import (
	"sync/atomic"
	"time"
)

// MatchSnapshot is a complete immutable view of the match for rendering and
// API responses. Value types only, so a published snapshot can never observe
// a later tick's writes.
type MatchSnapshot struct {
	Sequence  uint64    `json:"-"`         // Monotonic publish order
	Timestamp time.Time `json:"timestamp"` // When the snapshot was produced
	Tick      uint64    `json:"tick"`

	PlayerY   float64 `json:"playerY"`
	OpponentY float64 `json:"opponentY"`

	BallX     float64 `json:"ballX"`
	BallY     float64 `json:"ballY"`
	BallVX    float64 `json:"ballVX"`
	BallVY    float64 `json:"ballVY"`
	BallSpeed float64 `json:"ballSpeed"`

	ScorePlayer   int `json:"scorePlayer"`
	ScoreOpponent int `json:"scoreOpponent"`

	Server Side  `json:"server"`
	Phase  Phase `json:"phase"`
	Paused bool  `json:"paused"`

	// FreezeLeft is the remaining serve-freeze window in seconds, zero once
	// the rally is live. Lets the renderer count a serve in.
	FreezeLeft float64 `json:"freezeLeft"`

	Difficulty string `json:"difficulty"`
}

// SnapshotPool is a triple buffer for lock-free producer/consumer handoff:
// the tick publishes into the next write slot while readers keep the last
// published one. A reader can always acquire without blocking the engine.
type SnapshotPool struct {
	snapshots [3]MatchSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates an empty pool.
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

// AcquireWrite returns the next write slot. Producer only, called from the
// game tick.
func (p *SnapshotPool) AcquireWrite() *MatchSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write slot complete and makes it visible to readers.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Safe from any goroutine.
func (p *SnapshotPool) AcquireRead() *MatchSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
