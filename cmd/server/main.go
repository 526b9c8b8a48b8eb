package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"paddle-arena/internal/api"
	"paddle-arena/internal/config"
	"paddle-arena/internal/game"
	"paddle-arena/internal/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🏓 ================================")
	log.Println("🏓  PADDLE ARENA - GO ENGINE")
	log.Println("🏓 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	courtCfg := appConfig.Court
	matchCfg := appConfig.Match
	videoCfg := appConfig.Video
	serverCfg := appConfig.Server

	port := strconv.Itoa(serverCfg.Port)

	log.Printf("🎮 Config: %d TPS, %d FPS, court %.0fx%.0f, race to %d (win by %d)",
		matchCfg.TickRate, videoCfg.FPS, courtCfg.Width, courtCfg.Height,
		matchCfg.TargetScore, matchCfg.WinMargin)

	// Create match engine with centralized config
	engine := game.NewEngine(game.EngineConfig{
		Court: courtCfg,
		Match: matchCfg,
	})

	// Wire engine events into metrics
	engine.OnTick = api.RecordTick
	engine.OnPaddleHit = func(side game.Side) {
		api.RecordRallyHit()
	}
	engine.OnPoint = func(scorer game.Side, scorePlayer, scoreOpponent int) {
		api.RecordPoint(scorer.String())
	}
	engine.OnMatchOver = func(winner game.Side) {
		api.RecordMatchOver(winner.String())
	}

	if tier := os.Getenv("DIFFICULTY"); tier != "" {
		applied := engine.SetDifficulty(tier)
		log.Printf("🤖 Opponent difficulty: %s", applied)
	}

	// Start debug server
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	// Create frame producer
	renderer := render.NewRenderer(courtCfg, os.Getenv("FONT_PATH"), 24)
	frameLoop := render.NewFrameLoop(engine, renderer, render.LoopConfig{
		FPS:         videoCfg.FPS,
		JPEGQuality: videoCfg.JPEGQuality,
	})
	frameLoop.OnRender = api.RecordRender

	// Create API server (HTTP control + WebSocket input + MJPEG output)
	server := api.NewServer(api.ServerConfig{
		Engine: engine,
		Frames: frameLoop,
	})

	// Start match engine
	engine.Start()
	log.Println("✅ Match engine started")

	frameLoop.Start()

	// Start API server in goroutine
	go func() {
		addr := ":" + port
		log.Printf("🌐 Play at http://localhost%s/stream", addr)
		log.Printf("🎮 Controller WebSocket: ws://localhost%s/ws", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	frameLoop.Stop()
	engine.Stop()
	log.Println("👋 Goodbye!")
}
