package handlers

import (
	"net/http"
	"runtime"
	"time"

	"clip-viewer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse is served by /health. Ready mirrors /readyz; the player
// fields describe the current session.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	Engine      string `json:"engine"`
	PlayerState string `json:"playerState"`
	Resource    string `json:"resource,omitempty"`
	PlayerError string `json:"playerError,omitempty"`
	Frames      string `json:"frames,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// probeCode maps engine readiness to the probe status code.
func probeCode(ready bool) int {
	if ready {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// HealthCheck reports the widget and engine state. A video that failed to
// load is the widget working as intended, so only a lost engine degrades it.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	view := h.player.View()
	ready := h.ready()

	status := statusHealthy
	if !ready {
		status = statusDegraded
	}

	writeJSONCode(w, probeCode(ready), HealthResponse{
		Status:       status,
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Engine:       h.engineName,
		PlayerState:  view.State.String(),
		Resource:     view.ResourceName,
		PlayerError:  view.Error,
		Frames:       h.framesStatus(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// framesStatus is empty when frame extraction is switched off.
func (h *Handlers) framesStatus() string {
	switch {
	case h.frames == nil:
		return ""
	case h.frames.Available():
		return "enabled"
	default:
		return "unavailable"
	}
}

// LivenessCheck answers as long as the process serves HTTP.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONCode(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessCheck fails while the media engine is unusable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready()
	status := "ready"
	if !ready {
		status = "not_ready"
	}
	writeJSONCode(w, probeCode(ready), map[string]string{"status": status})
}
