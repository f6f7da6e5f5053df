package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"clip-viewer/internal/metrics"
)

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are path prefixes that are not recorded
	SkipPaths []string
	// MediaPrefix is the path media files are served under. Requests below it
	// are recorded as MediaPrefix + "/{name}".
	MediaPrefix string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig(mediaPrefix string) MetricsConfig {
	return MetricsConfig{
		SkipPaths:   []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
		MediaPrefix: strings.TrimRight(mediaPrefix, "/"),
	}
}

// Metrics returns a middleware that records Prometheus HTTP metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			rec := newStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(rec, r)

			path := config.normalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath collapses media file names and deep paths so the path label
// stays low-cardinality.
func (c MetricsConfig) normalizePath(path string) string {
	if c.MediaPrefix != "" && strings.HasPrefix(path, c.MediaPrefix+"/") {
		return c.MediaPrefix + "/{name}"
	}

	parts := strings.Split(path, "/")
	if len(parts) > 4 {
		return strings.Join(parts[:4], "/") + "/{path}"
	}
	return path
}
