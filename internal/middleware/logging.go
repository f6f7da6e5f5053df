package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clip-viewer/internal/logging"
)

// DefaultServiceName is reported when LoggingConfig.ServiceName is empty.
const DefaultServiceName = "ClipViewer/1.0"

// w3cFields is the #Fields directive. accessEntry.line writes the same order.
var w3cFields = []string{
	"date", "time", "c-ip", "cs-method", "cs-uri-stem", "cs-uri-query",
	"sc-status", "sc-bytes", "time-taken", "cs(Content-Encoding)", "cs(User-Agent)", "cs(Referer)",
}

var probePaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// LoggingConfig controls which requests reach the access log.
type LoggingConfig struct {
	SkipPaths      []string
	SkipExtensions []string
	LogStaticFiles bool
	// LogHealthChecks includes the liveness and readiness probes.
	LogHealthChecks bool
	// LogRangeRequests logs every byte-range request. Players issue many of
	// these while buffering a single video.
	LogRangeRequests bool
	ServiceName      string
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".woff", ".woff2", ".ttf", ".vtt", ".srt"},
		LogHealthChecks: true,
		ServiceName:     DefaultServiceName,
	}
}

// skips reports whether r is filtered out of the access log.
func (c LoggingConfig) skips(r *http.Request) bool {
	path := r.URL.Path
	for _, prefix := range c.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if probePaths[path] {
		return !c.LogHealthChecks
	}
	if !c.LogRangeRequests && isRangeFollowUp(r) {
		return true
	}
	if c.LogStaticFiles {
		return false
	}
	lower := strings.ToLower(path)
	for _, ext := range c.SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isRangeFollowUp reports whether r asks for a byte range past the start of
// the resource. The opening "bytes=0-" request is still logged.
func isRangeFollowUp(r *http.Request) bool {
	rng := r.Header.Get("Range")
	return rng != "" && !strings.HasPrefix(rng, "bytes=0-")
}

// W3CLogger writes one W3C Extended Log Format line per request.
type W3CLogger struct {
	config      LoggingConfig
	serviceName string
}

func NewW3CLogger(config LoggingConfig, serviceName string) *W3CLogger {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return &W3CLogger{config: config, serviceName: serviceName}
}

// Header returns the #Software and #Fields directives.
func (l *W3CLogger) Header() string {
	return "#Software: " + l.serviceName + "\n#Fields: " + strings.Join(w3cFields, " ")
}

// Logger returns the access log middleware.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	l := NewW3CLogger(config, config.ServiceName)
	logging.Debug("%s", l.Header())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skips(r) {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			l.write(newAccessEntry(r, rec, start))
		})
	}
}

// accessEntry holds one request's fields, already cleaned for the log.
type accessEntry struct {
	at       time.Time
	client   string
	method   string
	stem     string
	query    string
	status   int
	bytes    int64
	took     time.Duration
	encoding string
	agent    string
	referer  string
}

func newAccessEntry(r *http.Request, rec *statusRecorder, start time.Time) accessEntry {
	return accessEntry{
		at:       start.UTC(),
		client:   clean(getClientIP(r)),
		method:   clean(r.Method),
		stem:     clean(r.URL.Path),
		query:    clean(r.URL.RawQuery),
		status:   rec.status,
		bytes:    rec.written,
		took:     time.Since(start),
		encoding: rec.Header().Get("Content-Encoding"),
		agent:    quoteW3C(clean(r.Header.Get("User-Agent"))),
		referer:  clean(r.Header.Get("Referer")),
	}
}

func (e accessEntry) line() string {
	return strings.Join([]string{
		e.at.Format("2006-01-02"),
		e.at.Format("15:04:05"),
		orDash(e.client),
		e.method,
		e.stem,
		orDash(e.query),
		strconv.Itoa(e.status),
		strconv.FormatInt(e.bytes, 10),
		strconv.FormatInt(e.took.Milliseconds(), 10),
		orDash(e.encoding),
		orDash(e.agent),
		orDash(e.referer),
	}, " ")
}

func (l *W3CLogger) write(e accessEntry) {
	//nolint:gosec // every request-controlled field went through clean
	logging.Printf("%s", e.line())
}

// clean drops control characters so a header cannot forge extra log lines or
// emit terminal escapes. Line breaks become spaces and tabs are kept.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// quoteW3C wraps values containing whitespace or quotes, doubling any quotes.
func quoteW3C(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
