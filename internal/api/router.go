package api

import (
	"paddle-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the engine methods used by the API layer.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// Snapshot returns the latest lock-free immutable match snapshot
	Snapshot() *game.MatchSnapshot
	// Intents returns the input buffer WebSocket clients write into
	Intents() *game.IntentBuffer
	// RestartMatch resets the match unconditionally
	RestartMatch()
	// TogglePause flips the pause overlay and returns the new value
	TogglePause() bool
	// SetDifficulty selects the opponent tier, returning the normalized name
	SetDifficulty(tier string) string
	// Difficulty returns the current tier name
	Difficulty() string
}

// FrameSource supplies the latest encoded video frame.
// The render frame loop satisfies this.
type FrameSource interface {
	// LatestFrame returns the newest JPEG frame and its sequence number;
	// nil before the first frame exists
	LatestFrame() ([]byte, uint64)
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// Designed for dependency injection and testability.
type RouterConfig struct {
	// Engine is the match engine (required)
	Engine EngineInterface

	// Frames is the frame producer (required for /frame and /stream)
	Frames FrameSource

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil; both nil means DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins optionally overrides the allowed CORS origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for tests).
	DisableLogging bool
}

// routerHandlers holds the dependencies the handler functions close over.
type routerHandlers struct {
	engine EngineInterface
	frames FrameSource
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects beyond the rate
// limiter's cleanup goroutine when one is created here: no listeners, no
// broadcast workers. This makes it safe to use with httptest.NewServer.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine: cfg.Engine,
		frames: cfg.Frames,
	}

	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)

		// Match control
		r.Post("/match/restart", h.handleRestart)
		r.Post("/match/pause", h.handleTogglePause)
		r.Post("/match/difficulty", h.handleSetDifficulty)
		r.Get("/match/difficulty", h.handleGetDifficulty)
	})

	// Frame output
	r.Get("/frame", h.handleFrame)
	r.Get("/stream", h.handleStream)

	return r
}
