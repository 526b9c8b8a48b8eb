package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Handler methods for routerHandlers.
// Used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	var frameSeq uint64
	if h.frames != nil {
		_, frameSeq = h.frames.LatestFrame()
	}

	writeJSON(w, map[string]interface{}{
		"tick":          snap.Tick,
		"phase":         snap.Phase,
		"paused":        snap.Paused,
		"scorePlayer":   snap.ScorePlayer,
		"scoreOpponent": snap.ScoreOpponent,
		"server":        snap.Server,
		"difficulty":    snap.Difficulty,
		"frameSequence": frameSeq,
	})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	log.Println("🔁 Restart requested via API")
	h.engine.RestartMatch()
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleTogglePause(w http.ResponseWriter, r *http.Request) {
	paused := h.engine.TogglePause()
	writeJSON(w, map[string]bool{"paused": paused})
}

func (h *routerHandlers) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier string `json:"tier"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Unknown tiers silently normalize to the default rather than erroring.
	applied := h.engine.SetDifficulty(req.Tier)
	writeJSON(w, map[string]string{"tier": applied})
}

func (h *routerHandlers) handleGetDifficulty(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"tier": h.engine.Difficulty()})
}

// handleFrame returns the latest rendered frame as a single JPEG.
func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		writeError(w, "Frame output not configured", http.StatusServiceUnavailable)
		return
	}

	frame, _ := h.frames.LatestFrame()
	if frame == nil {
		writeError(w, "No frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(frame)
}

// handleStream serves the court as an MJPEG stream: new frames are pushed as
// multipart parts until the client disconnects. Any browser renders this in
// an <img> tag, which keeps the display surface dependency-free.
func (h *routerHandlers) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		writeError(w, "Frame output not configured", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	const boundary = "frame"
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-store")

	// Poll slightly faster than any sane FPS; parts are only written when
	// the frame sequence advances.
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			frame, seq := h.frames.LatestFrame()
			if frame == nil || seq == lastSeq {
				continue
			}
			lastSeq = seq

			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
