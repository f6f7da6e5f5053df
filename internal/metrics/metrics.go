package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clip_viewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clip_viewer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Seek synchronizer metrics
var (
	SeekTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_seek_transitions_total",
			Help: "Total number of seek session state transitions",
		},
		[]string{"from", "to"},
	)

	SeeksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_seeks_total",
			Help: "Total number of playback position writes",
		},
		[]string{"status"},
	)

	SeekOffsetSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clip_viewer_seek_offset_seconds",
			Help:    "Requested seek offsets in seconds",
			Buckets: []float64{0, 1, 10, 30, 60, 300, 900, 1800, 3600, 7200},
		},
	)

	StaleSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_stale_signals_total",
			Help: "Engine signals dropped because their session had been replaced",
		},
		[]string{"event"},
	)

	PlayerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clip_viewer_player_state",
			Help: "Current seek session state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)
)

// Media serving metrics
var (
	MediaServeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_media_serve_total",
			Help: "Total number of media file requests by outcome",
		},
		[]string{"status"},
	)

	MediaFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clip_viewer_media_files_total",
			Help: "Number of files in the media directory by type",
		},
		[]string{"type"},
	)

	MediaBytesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clip_viewer_media_bytes_total",
			Help: "Total size of video files in the media directory",
		},
	)

	MediaBytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clip_viewer_media_bytes_served_total",
			Help: "Total bytes of media written to clients",
		},
	)

	MediaStreamTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clip_viewer_media_stream_timeouts_total",
			Help: "Total number of media responses aborted by a write timeout",
		},
	)
)

// Frame extraction metrics
var (
	FrameExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_frame_extractions_total",
			Help: "Total number of frame extraction requests by outcome",
		},
		[]string{"status"},
	)

	FrameExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clip_viewer_frame_extraction_duration_seconds",
			Help:    "Time to produce a frame, including cache hits",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clip_viewer_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds, retries included",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_filesystem_retry_attempts_total",
			Help: "Total number of retries after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_filesystem_retry_failures_total",
			Help: "Total number of operations that exhausted their retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clip_viewer_filesystem_retry_duration_seconds",
			Help:    "Time spent in retrying filesystem operations",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clip_viewer_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clip_viewer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version", "engine"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion, engine string) {
	AppInfo.WithLabelValues(version, commit, goVersion, engine).Set(1)
}
