package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/media"
	"clip-viewer/internal/metrics"

	"github.com/gorilla/mux"
)

// maxBatchFrames caps the timestamps accepted by one GetFrames request.
const maxBatchFrames = 32

// FramesResponse is served by GetFrames. Frames maps each requested
// timestamp to the URL of its JPEG; timestamps that could not be extracted
// are listed in Failed.
type FramesResponse struct {
	Name   string            `json:"name"`
	Frames map[string]string `json:"frames"`
	Failed []string          `json:"failed,omitempty"`
}

// frameStatus maps an extraction error to a status code and metric label.
func frameStatus(err error) (int, string) {
	switch {
	case errors.Is(err, media.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, media.ErrInvalidName):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// GetFrame extracts the frame of ?name= at ?t= (default 00:00:01) and
// returns where it is served.
func (h *Handlers) GetFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	frame, err := h.frames.Extract(r.Context(), name, q.Get("t"))
	metrics.FrameExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		code, status := frameStatus(err)
		metrics.FrameExtractionsTotal.WithLabelValues(status).Inc()
		if code == http.StatusInternalServerError {
			log.Error("Frame: %s at %q failed: %v", name, q.Get("t"), err)
			writeJSONError(w, "Failed to extract frame", code)
			return
		}
		log.Debug("Frame: %s at %q rejected: %v", name, q.Get("t"), err)
		writeJSONError(w, err.Error(), code)
		return
	}

	if frame.Cached {
		metrics.FrameExtractionsTotal.WithLabelValues("cached").Inc()
	} else {
		metrics.FrameExtractionsTotal.WithLabelValues("ok").Inc()
	}
	writeJSON(w, frame)
}

// GetFrames extracts one frame per ?t= of ?name=. Timestamps that fail are
// reported in the response instead of failing the request.
func (h *Handlers) GetFrames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	timestamps := q["t"]
	switch {
	case name == "":
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	case len(timestamps) == 0:
		writeJSONError(w, "at least one t is required", http.StatusBadRequest)
		return
	case len(timestamps) > maxBatchFrames:
		writeJSONError(w, "too many timestamps", http.StatusBadRequest)
		return
	}

	start := time.Now()
	frames, err := h.frames.ExtractMany(r.Context(), name, timestamps)
	metrics.FrameExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil && frames == nil {
		code, status := frameStatus(err)
		metrics.FrameExtractionsTotal.WithLabelValues(status).Inc()
		if code == http.StatusInternalServerError {
			log.Error("Frames: %s failed: %v", name, err)
			writeJSONError(w, "Failed to extract frames", code)
			return
		}
		writeJSONError(w, err.Error(), code)
		return
	}

	resp := FramesResponse{Name: name, Frames: make(map[string]string, len(frames))}
	seen := make(map[string]bool, len(timestamps))
	for _, ts := range timestamps {
		if seen[ts] {
			continue
		}
		seen[ts] = true
		f, ok := frames[ts]
		if !ok {
			metrics.FrameExtractionsTotal.WithLabelValues("error").Inc()
			resp.Failed = append(resp.Failed, ts)
			continue
		}
		if f.Cached {
			metrics.FrameExtractionsTotal.WithLabelValues("cached").Inc()
		} else {
			metrics.FrameExtractionsTotal.WithLabelValues("ok").Inc()
		}
		resp.Frames[ts] = f.Path
	}
	writeJSON(w, resp)
}

// ServeFrame serves an extracted JPEG from the frame directory.
func (h *Handlers) ServeFrame(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]

	fullPath, err := h.frames.ResolveFile(file)
	if err != nil {
		log.Warn("Frame: rejected path %q", file)
		http.Error(w, "Invalid path", http.StatusForbidden)
		return
	}

	info, err := filesystem.StatWithRetry(fullPath, h.retry)
	if err != nil || info.IsDir() {
		if err == nil || os.IsNotExist(err) {
			http.Error(w, "Frame not found", http.StatusNotFound)
			return
		}
		log.Error("Frame: failed to stat %s: %v", fullPath, err)
		http.Error(w, "Failed to access frame", http.StatusInternalServerError)
		return
	}

	f, err := filesystem.OpenWithRetry(fullPath, h.retry)
	if err != nil {
		log.Error("Frame: failed to open %s: %v", fullPath, err)
		http.Error(w, "Failed to access frame", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
