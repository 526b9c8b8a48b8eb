package render

import (
	"bytes"
	"context"
	"image/jpeg"
	"log"
	"sync"
	"time"

	"paddle-arena/internal/game"

	"golang.org/x/time/rate"
)

// SnapshotSource supplies the latest immutable match snapshot.
// The game engine satisfies this.
type SnapshotSource interface {
	Snapshot() *game.MatchSnapshot
}

// LoopConfig configures the frame loop.
type LoopConfig struct {
	FPS         int
	JPEGQuality int
}

// FrameLoop renders snapshots at a fixed pace and keeps the latest encoded
// frame available for HTTP consumers. Rendering runs entirely outside the
// engine's tick: the loop only ever reads published snapshots.
type FrameLoop struct {
	source   SnapshotSource
	renderer *Renderer
	limiter  *rate.Limiter
	quality  int

	mu       sync.RWMutex
	latest   []byte
	sequence uint64

	cancel context.CancelFunc
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	// OnRender, if set, receives each frame's render+encode duration.
	// Used for metrics; must be cheap.
	OnRender func(elapsed time.Duration)
}

// NewFrameLoop creates a frame loop. The limiter paces frame production at
// the configured FPS regardless of how fast rendering itself is.
func NewFrameLoop(source SnapshotSource, renderer *Renderer, cfg LoopConfig) *FrameLoop {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 85
	}

	return &FrameLoop{
		source:   source,
		renderer: renderer,
		limiter:  rate.NewLimiter(rate.Limit(cfg.FPS), 1),
		quality:  cfg.JPEGQuality,
		done:     make(chan struct{}),
	}
}

// Start begins producing frames in a background goroutine.
func (f *FrameLoop) Start() {
	f.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		f.cancel = cancel

		go f.run(ctx)
		log.Println("🎥 Frame loop started")
	})
}

// Stop halts frame production and waits for the loop to exit.
func (f *FrameLoop) Stop() {
	f.stopOnce.Do(func() {
		if f.cancel != nil {
			f.cancel()
			<-f.done
		}
		log.Println("🎥 Frame loop stopped")
	})
}

func (f *FrameLoop) run(ctx context.Context) {
	defer close(f.done)

	var buf bytes.Buffer
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return
		}

		started := time.Now()

		snap := f.source.Snapshot()
		img := f.renderer.Render(snap)

		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: f.quality}); err != nil {
			log.Printf("⚠️ Frame encode failed: %v", err)
			continue
		}

		encoded := make([]byte, buf.Len())
		copy(encoded, buf.Bytes())

		f.mu.Lock()
		f.latest = encoded
		f.sequence++
		f.mu.Unlock()

		if f.OnRender != nil {
			f.OnRender(time.Since(started))
		}
	}
}

// LatestFrame returns the most recent JPEG frame and its sequence number.
// The returned slice is never mutated after publication; callers must treat
// it as read-only. Returns nil before the first frame is produced.
func (f *FrameLoop) LatestFrame() ([]byte, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.sequence
}
