package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/mediatypes"
	"clip-viewer/internal/metrics"
	"clip-viewer/internal/streaming"

	"github.com/gorilla/mux"
)

var errInvalidPath = errors.New("invalid path")

// ServeMedia serves a file from the media directory under the locator base
// path. Byte ranges are handled by http.ServeContent so the browser and mpv
// can seek without downloading the whole file.
func (h *Handlers) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	fullPath, err := h.resolveMediaPath(name)
	if err != nil {
		log.Warn("Media: rejected path %q", name)
		metrics.MediaServeTotal.WithLabelValues("forbidden").Inc()
		http.Error(w, "Invalid path", http.StatusForbidden)
		return
	}
	if !mediatypes.IsServable(name) {
		log.Warn("Media: unsupported file type %q", name)
		metrics.MediaServeTotal.WithLabelValues("forbidden").Inc()
		http.Error(w, "Unsupported file type", http.StatusForbidden)
		return
	}

	info, err := filesystem.StatWithRetry(fullPath, h.retry)
	if err != nil || info.IsDir() {
		if err == nil || os.IsNotExist(err) {
			log.Debug("Media: not found %s", fullPath)
			metrics.MediaServeTotal.WithLabelValues("not_found").Inc()
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		log.Error("Media: failed to stat %s: %v", fullPath, err)
		metrics.MediaServeTotal.WithLabelValues("error").Inc()
		http.Error(w, "Failed to access file", http.StatusInternalServerError)
		return
	}

	f, err := filesystem.OpenWithRetry(fullPath, h.retry)
	if err != nil {
		log.Error("Media: failed to open %s: %v", fullPath, err)
		metrics.MediaServeTotal.WithLabelValues("error").Inc()
		http.Error(w, "Failed to access file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	metrics.MediaServeTotal.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", mediatypes.GetMimeType(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	sw := streaming.NewWriter(w, h.stream)
	http.ServeContent(sw, r, info.Name(), info.ModTime(), f)
	if err := sw.Close(); err != nil {
		log.Debug("Media: clearing write deadline for %s: %v", name, err)
	}

	metrics.MediaBytesServed.Add(float64(sw.BytesWritten()))
	if sw.TimedOut() {
		metrics.MediaStreamTimeouts.Inc()
		log.Warn("Media: client stalled on %s after %d bytes in %v", name, sw.BytesWritten(), sw.Duration())
		return
	}
	log.Debug("Media: served %s (%d bytes in %v)", name, sw.BytesWritten(), sw.Duration())
}

// resolveMediaPath maps a resource name to a path inside the media
// directory. Names that escape it are rejected.
func (h *Handlers) resolveMediaPath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", errInvalidPath
	}

	fullPath := filepath.Join(h.mediaDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(h.mediaDir, fullPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errInvalidPath
	}
	return fullPath, nil
}
