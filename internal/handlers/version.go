package handlers

import (
	"net/http"

	"clip-viewer/internal/startup"
)

// VersionResponse is the build information plus the configured engine.
type VersionResponse struct {
	startup.BuildInfo
	Engine string `json:"engine,omitempty"`
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, VersionResponse{
		BuildInfo: startup.GetBuildInfo(),
		Engine:    h.engineName,
	})
}
