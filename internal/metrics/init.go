package metrics

import "clip-viewer/internal/seek"

var allStates = []seek.State{seek.Idle, seek.Attached, seek.Sought, seek.Failed}

// InitializeMetrics pre-populates the expected label combinations so every
// metric is exported from the first scrape. Call once at startup.
func InitializeMetrics() {
	for _, from := range allStates {
		for _, to := range allStates {
			SeekTransitionsTotal.WithLabelValues(from.String(), to.String())
		}
	}
	setPlayerState(seek.Idle)

	for _, status := range []string{"success", "error"} {
		SeeksTotal.WithLabelValues(status)
	}
	for _, ev := range []string{"loadeddata", "error"} {
		StaleSignalsTotal.WithLabelValues(ev)
	}
	for _, status := range []string{"ok", "not_found", "forbidden", "error"} {
		MediaServeTotal.WithLabelValues(status)
	}
	for _, status := range []string{"ok", "cached", "not_found", "invalid", "unavailable", "error"} {
		FrameExtractionsTotal.WithLabelValues(status)
	}
	for _, t := range []string{"video", "other"} {
		MediaFilesTotal.WithLabelValues(t)
	}

	volumes := []string{"media", "frames", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}

func setPlayerState(current seek.State) {
	for _, s := range allStates {
		v := 0.0
		if s == current {
			v = 1
		}
		PlayerState.WithLabelValues(s.String()).Set(v)
	}
}
