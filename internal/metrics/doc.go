// Package metrics provides Prometheus instrumentation for clip-viewer.
//
// Metrics are registered with promauto on package load and prefixed with
// "clip_viewer_". They are served on the separate metrics port (METRICS_PORT)
// when METRICS_ENABLED is true.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being processed
//
// ## Seek Metrics
//
// Recorded through the seek.Observer returned by NewSeekObserver:
//   - SeekTransitionsTotal: session state transitions by from/to state
//   - SeeksTotal: playback position writes by status
//   - SeekOffsetSeconds: requested offsets
//   - StaleSignalsTotal: engine signals dropped for replaced sessions
//   - PlayerState: 1 for the current session state
//
// ## Media Metrics
//
//   - MediaServeTotal: media file requests by outcome
//   - MediaFilesTotal, MediaBytesTotal: media directory contents, refreshed by
//     a Collector
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver.
// Labelled by volume and operation (stat, open, readdir):
//   - FilesystemOperationDuration, FilesystemOperationErrors
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemRetryDuration, FilesystemStaleErrors
//
// # Usage
//
//	metrics.InitializeMetrics()
//	metrics.SetAppInfo(version, commit, runtime.Version(), cfg.Engine)
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	p := player.New(eng, player.Config{Observer: metrics.NewSeekObserver()})
package metrics
