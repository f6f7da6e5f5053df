package metrics

import (
	"clip-viewer/internal/engine"
	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/seek"
)

// filesystemObserver implements filesystem.Observer.
type filesystemObserver struct{}

// NewFilesystemObserver returns an observer recording into the filesystem
// metrics declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveOperation(volume, operation string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(volume, operation).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(volume, operation).Inc()
	}
}

func (o *filesystemObserver) ObserveRetryAttempt(retryOp, volume string) {
	FilesystemRetryAttempts.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(retryOp, volume string) {
	FilesystemRetrySuccess.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(retryOp, volume string) {
	FilesystemRetryFailures.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(retryOp, volume string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(retryOp, volume).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(retryOp, volume string) {
	FilesystemStaleErrors.WithLabelValues(retryOp, volume).Inc()
}

// seekObserver implements seek.Observer.
type seekObserver struct{}

// NewSeekObserver returns an observer recording synchronizer activity.
func NewSeekObserver() seek.Observer {
	return &seekObserver{}
}

func (o *seekObserver) ObserveTransition(from, to seek.State) {
	SeekTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	setPlayerState(to)
}

func (o *seekObserver) ObserveSeek(offset float64, err error) {
	if err != nil {
		SeeksTotal.WithLabelValues("error").Inc()
		return
	}
	SeeksTotal.WithLabelValues("success").Inc()
	SeekOffsetSeconds.Observe(offset)
}

func (o *seekObserver) ObserveStaleSignal(ev engine.Event) {
	StaleSignalsTotal.WithLabelValues(string(ev)).Inc()
}
