package handlers

import (
	"time"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/logging"
	"clip-viewer/internal/media"
	"clip-viewer/internal/player"
	"clip-viewer/internal/startup"
	"clip-viewer/internal/streaming"
)

var log = logging.Component("handlers")

// Dispatcher delivers engine signals to the listeners of an engine.
// engine.Recorder satisfies it.
type Dispatcher interface {
	Dispatch(sig engine.Signal)
}

// Handlers serves the widget, the media directory and the JSON API.
type Handlers struct {
	player     *player.Player
	mediaDir   string
	basePath   string
	engineName string
	ready      func() bool
	signals    Dispatcher
	frames     *media.Extractor
	startTime  time.Time
	retry      filesystem.RetryConfig
	stream     streaming.Config
}

// Option configures Handlers.
type Option func(*Handlers)

// WithReady sets the engine health probe used by the readiness endpoints.
func WithReady(ready func() bool) Option {
	return func(h *Handlers) {
		h.ready = ready
	}
}

// WithBrowserSignals accepts load signals reported by the page's <video>
// element and forwards them to d. Used when no server-side engine runs.
func WithBrowserSignals(d Dispatcher) Option {
	return func(h *Handlers) {
		h.signals = d
	}
}

// WithFrames serves frame extraction from x.
func WithFrames(x *media.Extractor) Option {
	return func(h *Handlers) {
		h.frames = x
	}
}

// New creates the handlers for p.
func New(p *player.Player, config *startup.Config, opts ...Option) *Handlers {
	h := &Handlers{
		player:     p,
		mediaDir:   config.MediaDir,
		basePath:   config.BasePath,
		engineName: config.Engine,
		ready:      func() bool { return true },
		startTime:  time.Now(),
		retry:      filesystem.DefaultRetryConfig(),
		stream:     streaming.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AcceptsBrowserSignals reports whether ReportSignal should be routed.
func (h *Handlers) AcceptsBrowserSignals() bool {
	return h.signals != nil
}

// ServesFrames reports whether the frame routes should be registered.
func (h *Handlers) ServesFrames() bool {
	return h.frames != nil
}

// FramePath is the route extracted frames are served under.
func (h *Handlers) FramePath() string {
	if h.frames == nil {
		return ""
	}
	return h.frames.URLPath()
}
