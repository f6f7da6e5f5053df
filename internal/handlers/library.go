package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/mediatypes"
	"clip-viewer/internal/metrics"
)

// MediaEntry describes a servable file in the media directory.
type MediaEntry struct {
	Name     string              `json:"name"`
	Type     mediatypes.FileType `json:"type"`
	Size     int64               `json:"size"`
	Playable bool                `json:"playable"`
}

// scanMedia walks the media directory and returns every regular file with
// its slash-separated name relative to the directory. Hidden entries are
// skipped.
func (h *Handlers) scanMedia() ([]MediaEntry, error) {
	var entries []MediaEntry
	if err := h.scanDir("", &entries); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (h *Handlers) scanDir(rel string, out *[]MediaEntry) error {
	dirEntries, err := filesystem.ReadDirWithRetry(filepath.Join(h.mediaDir, filepath.FromSlash(rel)), h.retry)
	if err != nil {
		return err
	}

	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		name := path.Join(rel, de.Name())

		if de.IsDir() {
			if err := h.scanDir(name, out); err != nil {
				log.Warn("Skipping %s: %v", name, err)
			}
			continue
		}
		if !de.Type().IsRegular() {
			continue
		}

		info, err := de.Info()
		if err != nil {
			log.Debug("Skipping %s: %v", name, err)
			continue
		}
		*out = append(*out, MediaEntry{
			Name:     name,
			Type:     mediatypes.GetFileType(name),
			Size:     info.Size(),
			Playable: mediatypes.IsBrowserPlayable(name),
		})
	}
	return nil
}

// ListMedia returns the servable files in the media directory. Pass
// ?type=video to list only videos.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scanMedia()
	if err != nil {
		log.Error("Failed to list media directory: %v", err)
		writeJSONError(w, "Failed to list media directory", http.StatusInternalServerError)
		return
	}

	filter := mediatypes.FileType(r.URL.Query().Get("type"))
	result := make([]MediaEntry, 0, len(entries))
	for _, e := range entries {
		if e.Type == mediatypes.FileTypeOther {
			continue
		}
		if filter != "" && e.Type != filter {
			continue
		}
		result = append(result, e)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, result)
}

// GetStats summarizes the media directory for the metrics collector.
func (h *Handlers) GetStats() metrics.Stats {
	var stats metrics.Stats

	entries, err := h.scanMedia()
	if err != nil {
		log.Warn("Failed to collect media stats: %v", err)
		return stats
	}
	for _, e := range entries {
		if e.Type == mediatypes.FileTypeVideo {
			stats.VideoFiles++
			stats.VideoBytes += e.Size
		} else {
			stats.OtherFiles++
		}
	}
	return stats
}

// MediaStats returns the media directory statistics as JSON.
func (h *Handlers) MediaStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, h.GetStats())
}

var _ metrics.StatsProvider = (*Handlers)(nil)
