package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"paddle-arena/internal/config"
	"paddle-arena/internal/game"
)

// mockEngine satisfies EngineInterface without a running tick loop. Guarded
// by a mutex because hub read pumps call it from their own goroutines.
type mockEngine struct {
	mu         sync.Mutex
	snap       game.MatchSnapshot
	intents    *game.IntentBuffer
	paused     bool
	difficulty string
	restarted  int
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		snap: game.MatchSnapshot{
			Tick:        7,
			ScorePlayer: 3, ScoreOpponent: 1,
			Server: game.SidePlayer,
			Phase:  game.PhaseRallying,
		},
		intents:    game.NewIntentBuffer(),
		difficulty: config.DefaultTier,
	}
}

func (m *mockEngine) Snapshot() *game.MatchSnapshot { return &m.snap }
func (m *mockEngine) Intents() *game.IntentBuffer   { return m.intents }

func (m *mockEngine) RestartMatch() {
	m.mu.Lock()
	m.restarted++
	m.mu.Unlock()
}

func (m *mockEngine) restartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarted
}

func (m *mockEngine) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return m.paused
}

func (m *mockEngine) isPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *mockEngine) SetDifficulty(tier string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.difficulty = config.NormalizeTier(tier)
	return m.difficulty
}

func (m *mockEngine) Difficulty() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.difficulty
}

// mockFrames serves a canned JPEG payload.
type mockFrames struct {
	frame []byte
	seq   uint64
}

func (m *mockFrames) LatestFrame() ([]byte, uint64) { return m.frame, m.seq }

func newTestRouter(engine EngineInterface, frames FrameSource) http.Handler {
	return NewRouter(RouterConfig{
		Engine:         engine,
		Frames:         frames,
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
	})
}

// TestGetState verifies the state endpoint returns the snapshot as JSON
func TestGetState(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(newTestRouter(engine, nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["scorePlayer"] != float64(3) {
		t.Errorf("scorePlayer = %v, want 3", body["scorePlayer"])
	}
	if body["phase"] != "rallying" {
		t.Errorf("phase = %v, want rallying", body["phase"])
	}
	if body["server"] != "player" {
		t.Errorf("server = %v, want player", body["server"])
	}
}

// TestRestartEndpoint verifies the restart command reaches the engine
func TestRestartEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(newTestRouter(engine, nil))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/match/restart", "application/json", nil)
	if err != nil {
		t.Fatalf("POST restart: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if engine.restartCount() != 1 {
		t.Errorf("restarted = %d, want 1", engine.restartCount())
	}
}

// TestPauseEndpoint verifies the toggle result is reported back
func TestPauseEndpoint(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(newTestRouter(engine, nil))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/match/pause", "application/json", nil)
	if err != nil {
		t.Fatalf("POST pause: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["paused"] {
		t.Error("paused = false, want true after first toggle")
	}
}

// TestDifficultyEndpoints verifies set and get, including tier fallback
func TestDifficultyEndpoints(t *testing.T) {
	engine := newMockEngine()
	ts := httptest.NewServer(newTestRouter(engine, nil))
	defer ts.Close()

	payload, _ := json.Marshal(map[string]string{"tier": "high"})
	resp, err := http.Post(ts.URL+"/api/match/difficulty", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST difficulty: %v", err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["tier"] != "high" {
		t.Errorf("tier = %q, want high", body["tier"])
	}

	// Unknown tier normalizes to the default instead of erroring.
	payload, _ = json.Marshal(map[string]string{"tier": "impossible"})
	resp, err = http.Post(ts.URL+"/api/match/difficulty", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST difficulty: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["tier"] != config.DefaultTier {
		t.Errorf("tier = %q, want %q", body["tier"], config.DefaultTier)
	}

	resp, err = http.Get(ts.URL + "/api/match/difficulty")
	if err != nil {
		t.Fatalf("GET difficulty: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["tier"] != config.DefaultTier {
		t.Errorf("GET tier = %q, want %q", body["tier"], config.DefaultTier)
	}
}

// TestFrameEndpoint verifies JPEG delivery and the not-ready case
func TestFrameEndpoint(t *testing.T) {
	engine := newMockEngine()

	// No frame rendered yet: 503.
	ts := httptest.NewServer(newTestRouter(engine, &mockFrames{}))
	resp, err := http.Get(ts.URL + "/frame")
	if err != nil {
		t.Fatalf("GET /frame: %v", err)
	}
	resp.Body.Close()
	ts.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d before first frame, want 503", resp.StatusCode)
	}

	// With a frame available: the bytes come back as image/jpeg.
	frames := &mockFrames{frame: []byte{0xFF, 0xD8, 0xFF, 0xD9}, seq: 1}
	ts = httptest.NewServer(newTestRouter(engine, frames))
	defer ts.Close()

	resp, err = http.Get(ts.URL + "/frame")
	if err != nil {
		t.Fatalf("GET /frame: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
}

// TestStatsEndpoint verifies the stats summary includes the frame sequence
func TestStatsEndpoint(t *testing.T) {
	engine := newMockEngine()
	frames := &mockFrames{frame: []byte{0xFF}, seq: 42}
	ts := httptest.NewServer(newTestRouter(engine, frames))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["tick"] != float64(7) {
		t.Errorf("tick = %v, want 7", body["tick"])
	}
	if body["frameSequence"] != float64(42) {
		t.Errorf("frameSequence = %v, want 42", body["frameSequence"])
	}
}

// TestRateLimitRejects verifies requests beyond the burst get 429
func TestRateLimitRejects(t *testing.T) {
	engine := newMockEngine()
	router := NewRouter(RouterConfig{
		Engine:         engine,
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	var got429 bool
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			got429 = true
		}
	}
	if !got429 {
		t.Error("expected at least one 429 past the burst")
	}
}
