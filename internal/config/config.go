// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all court and match settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"math"
	"os"
	"strconv"
	"time"
)

// =============================================================================
// COURT GEOMETRY
// =============================================================================

// Court holds the immutable court geometry. The canvas the renderer paints
// has exactly these dimensions, so simulation coordinates are pixel
// coordinates. Fixed for the lifetime of the process.
type Court struct {
	Width        float64 // Court width in pixels
	Height       float64 // Court height in pixels
	NetX         float64 // Horizontal position of the net line
	PaddleWidth  float64 // Paddle thickness
	PaddleHeight float64 // Paddle vertical span
	PaddleMargin float64 // Gap between court edge and paddle face
	BallRadius   float64
}

// DefaultCourt returns the default court geometry.
func DefaultCourt() Court {
	return Court{
		Width:        960,
		Height:       540,
		NetX:         480,
		PaddleWidth:  14,
		PaddleHeight: 100,
		PaddleMargin: 28,
		BallRadius:   9,
	}
}

// PlayerFaceX returns the X coordinate of the player paddle's hitting face.
func (c Court) PlayerFaceX() float64 {
	return c.PaddleMargin + c.PaddleWidth
}

// OpponentFaceX returns the X coordinate of the opponent paddle's hitting face.
func (c Court) OpponentFaceX() float64 {
	return c.Width - c.PaddleMargin - c.PaddleWidth
}

// MaxPaddleY returns the largest legal paddle top-edge position.
func (c Court) MaxPaddleY() float64 {
	return c.Height - c.PaddleHeight
}

// =============================================================================
// MATCH DYNAMICS
// =============================================================================

// Match holds the tunable simulation parameters. Speeds are expressed in
// pixels per reference frame; the engine scales them by the measured tick
// duration.
type Match struct {
	TickRate        int           // Simulation ticks per second
	ReferenceFrame  time.Duration // Duration one "speed unit" corresponds to
	MaxTickDelta    time.Duration // Upper clamp on a single tick's dt
	PlayerSpeed     float64       // Human paddle speed per reference frame
	BaseBallSpeed   float64       // Ball speed at serve
	MaxBallSpeed    float64       // Hard cap on ball speed
	SpeedMultiplier float64       // Ball speed gain per paddle hit
	MaxBounceAngle  float64       // Steepest paddle deflection, radians
	ServeFreeze     time.Duration // Ball stays static this long after a serve
	TargetScore     int           // Points needed to win
	WinMargin       int           // Minimum lead needed to win
}

// DefaultMatch returns the default match dynamics.
func DefaultMatch() Match {
	return Match{
		TickRate:        60,
		ReferenceFrame:  16 * time.Millisecond,
		MaxTickDelta:    32 * time.Millisecond,
		PlayerSpeed:     7.0,
		BaseBallSpeed:   6.0,
		MaxBallSpeed:    14.0,
		SpeedMultiplier: 1.05,
		MaxBounceAngle:  63.0 * math.Pi / 180.0,
		ServeFreeze:     900 * time.Millisecond,
		TargetScore:     11,
		WinMargin:       2,
	}
}

// MatchFromEnv returns match dynamics with environment variable overrides.
// Environment variables take precedence over defaults.
func MatchFromEnv() Match {
	cfg := DefaultMatch()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if ts := getEnvInt("TARGET_SCORE", 0); ts > 0 {
		cfg.TargetScore = ts
	}
	if wm := getEnvInt("WIN_MARGIN", 0); wm > 0 {
		cfg.WinMargin = wm
	}
	if bs := getEnvFloat("BASE_BALL_SPEED", 0); bs > 0 {
		cfg.BaseBallSpeed = bs
	}
	if ms := getEnvFloat("MAX_BALL_SPEED", 0); ms > cfg.BaseBallSpeed {
		cfg.MaxBallSpeed = ms
	}

	return cfg
}

// =============================================================================
// DIFFICULTY TIERS
// =============================================================================

// Difficulty tier names. The opponent paddle's speed cap is the only thing a
// tier changes; an unrecognized name falls back to DefaultTier.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"

	DefaultTier = TierMedium
)

// tierSpeedCaps maps each tier to the opponent paddle's maximum speed per
// reference frame.
var tierSpeedCaps = map[string]float64{
	TierLow:    4.0,
	TierMedium: 5.5,
	TierHigh:   7.0,
}

// OpponentSpeedCap returns the speed cap for a difficulty tier.
// Unknown tiers fall back to the default tier rather than failing.
func OpponentSpeedCap(tier string) float64 {
	if cap, ok := tierSpeedCaps[tier]; ok {
		return cap
	}
	return tierSpeedCaps[DefaultTier]
}

// NormalizeTier returns the tier name itself when recognized, or the default
// tier otherwise.
func NormalizeTier(tier string) string {
	if _, ok := tierSpeedCaps[tier]; ok {
		return tier
	}
	return DefaultTier
}

// =============================================================================
// VIDEO CONFIGURATION
// =============================================================================

// Video holds frame output settings. The frame dimensions always equal the
// court dimensions; only the pacing is configurable.
type Video struct {
	FPS         int // Frames rendered per second
	JPEGQuality int // Encoder quality (1-100)
}

// DefaultVideo returns the default video configuration.
func DefaultVideo() Video {
	return Video{
		FPS:         30,
		JPEGQuality: 85,
	}
}

// VideoFromEnv returns video configuration with environment variable overrides.
func VideoFromEnv() Video {
	cfg := DefaultVideo()

	if fps := getEnvInt("FRAME_FPS", 0); fps > 0 {
		cfg.FPS = fps
	}
	if q := getEnvInt("JPEG_QUALITY", 0); q > 0 && q <= 100 {
		cfg.JPEGQuality = q
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// Server holds HTTP server settings.
type Server struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() Server {
	return Server{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() Server {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// App holds the complete application configuration.
type App struct {
	Court  Court
	Match  Match
	Video  Video
	Server Server
}

// Load returns the complete configuration with environment overrides.
func Load() App {
	return App{
		Court:  DefaultCourt(),
		Match:  MatchFromEnv(),
		Video:  VideoFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
