package game

import "sync"

// Intent is the raw input state for one tick: keyboard flags plus an optional
// absolute pointer-drag position.
type Intent struct {
	MoveUp        bool
	MoveDown      bool
	PointerActive bool
	PointerY      float64 // Desired paddle center while dragging
}

// IntentBuffer is the handoff point between asynchronous input handlers and
// the synchronous tick. WebSocket read pumps (or any other input collaborator)
// write plain flags here from their own goroutines; the engine reads the
// buffer exactly once per tick. Writers never compute physics and never block
// beyond the mutex.
type IntentBuffer struct {
	mu  sync.Mutex
	cur Intent
}

// NewIntentBuffer returns an empty intent buffer.
func NewIntentBuffer() *IntentBuffer {
	return &IntentBuffer{}
}

// SetKeys records the current keyboard intents. Both flags may be set at
// once; the paddle logic treats that as no movement.
func (b *IntentBuffer) SetKeys(up, down bool) {
	b.mu.Lock()
	b.cur.MoveUp = up
	b.cur.MoveDown = down
	b.mu.Unlock()
}

// SetPointer records or clears the pointer drag. y is the desired paddle
// center in court coordinates; it is ignored when active is false.
func (b *IntentBuffer) SetPointer(active bool, y float64) {
	b.mu.Lock()
	b.cur.PointerActive = active
	b.cur.PointerY = y
	b.mu.Unlock()
}

// Snapshot returns the current intent state.
func (b *IntentBuffer) Snapshot() Intent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

// Reset clears all intents, used when the last input source disconnects so a
// stuck key cannot keep the paddle drifting.
func (b *IntentBuffer) Reset() {
	b.mu.Lock()
	b.cur = Intent{}
	b.mu.Unlock()
}
