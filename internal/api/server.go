package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server bundles the HTTP router with the WebSocket hub and owns the
// listener lifecycle. The router itself stays pure (see NewRouter); this
// type is the impure shell around it.
type Server struct {
	router      *chi.Mux
	hub         *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// ServerConfig configures the full API server.
type ServerConfig struct {
	Engine          EngineInterface
	Frames          FrameSource
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string
}

// NewServer wires the router, rate limiter and WebSocket hub together.
// Nothing starts listening until Start is called.
func NewServer(cfg ServerConfig) *Server {
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	rateLimiter := NewIPRateLimiter(rateLimitCfg)

	router := NewRouter(RouterConfig{
		Engine:      cfg.Engine,
		Frames:      cfg.Frames,
		RateLimiter: rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
	})

	hub := NewWebSocketHub(cfg.Engine)
	router.Get("/ws", hub.HandleWebSocket)

	return &Server{
		router:      router,
		hub:         hub,
		rateLimiter: rateLimiter,
	}
}

// Router exposes the underlying mux for tests (httptest.NewServer).
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Hub exposes the WebSocket hub for wiring broadcasts from the engine.
func (s *Server) Hub() *WebSocketHub {
	return s.hub
}

// Start runs the hub workers and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.hub.StartBroadcastLoop()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP listener, the WebSocket hub and the
// rate limiter.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
