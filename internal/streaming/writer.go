package streaming

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

var (
	// ErrWriteTimeout means the client stopped reading for longer than
	// WriteTimeout.
	ErrWriteTimeout = errors.New("write timeout exceeded")
	// ErrMaxDuration means the response ran longer than MaxDuration.
	ErrMaxDuration = errors.New("maximum stream duration exceeded")
)

// Config configures a Writer.
type Config struct {
	// WriteTimeout bounds each individual write. Zero disables deadlines.
	WriteTimeout time.Duration
	// MaxDuration bounds the whole response. Zero means unlimited.
	MaxDuration time.Duration
}

// DefaultConfig returns the limits used for media responses.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
	}
}

// Writer is an http.ResponseWriter that refreshes the connection write
// deadline before every write.
type Writer struct {
	http.ResponseWriter

	rc        *http.ResponseController
	config    Config
	start     time.Time
	written   int64
	deadlines bool
	timedOut  bool
}

// NewWriter wraps w.
func NewWriter(w http.ResponseWriter, config Config) *Writer {
	return &Writer{
		ResponseWriter: w,
		rc:             http.NewResponseController(w),
		config:         config,
		start:          time.Now(),
		deadlines:      config.WriteTimeout > 0,
	}
}

// Write writes p under a fresh deadline.
func (sw *Writer) Write(p []byte) (int, error) {
	if sw.config.MaxDuration > 0 && time.Since(sw.start) > sw.config.MaxDuration {
		return 0, ErrMaxDuration
	}

	if sw.deadlines {
		if err := sw.rc.SetWriteDeadline(time.Now().Add(sw.config.WriteTimeout)); err != nil {
			// Not a network connection; write without a deadline.
			sw.deadlines = false
		}
	}

	n, err := sw.ResponseWriter.Write(p)
	sw.written += int64(n)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		sw.timedOut = true
		return n, fmt.Errorf("%w: %v", ErrWriteTimeout, err)
	}
	return n, err
}

// Flush implements http.Flusher.
func (sw *Writer) Flush() {
	if err := sw.rc.Flush(); errors.Is(err, os.ErrDeadlineExceeded) {
		sw.timedOut = true
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *Writer) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// BytesWritten returns the number of body bytes written so far.
func (sw *Writer) BytesWritten() int64 {
	return sw.written
}

// Duration returns the time since the writer was created.
func (sw *Writer) Duration() time.Duration {
	return time.Since(sw.start)
}

// TimedOut reports whether a write hit the deadline.
func (sw *Writer) TimedOut() bool {
	return sw.timedOut
}

// Close clears the write deadline so a kept-alive connection is not left with
// an expired one.
func (sw *Writer) Close() error {
	if !sw.deadlines {
		return nil
	}
	if err := sw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
