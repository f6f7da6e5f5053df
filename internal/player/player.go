package player

import (
	"fmt"
	"sync"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/logging"
	"clip-viewer/internal/seek"
	"clip-viewer/internal/timestamp"
)

var log = logging.Component("player")

// Config configures a Player.
type Config struct {
	// BasePath prefixes every locator. Defaults to DefaultBasePath.
	BasePath string
	// Observer records seek metrics. May be nil.
	Observer seek.Observer
	// Sink receives timestamp diagnostics. Defaults to a WARN logger.
	Sink timestamp.Sink
}

// View is a snapshot of the widget used for rendering.
type View struct {
	Options
	Configured    bool       `json:"configured"`
	Locator       string     `json:"locator,omitempty"`
	State         seek.State `json:"state"`
	Session       uint64     `json:"session"`
	Error         string     `json:"error,omitempty"`
	SeekRequested bool       `json:"seekRequested"`
	Offset        float64    `json:"offset"`
}

// Failed reports whether the view shows the diagnostic surface.
func (v View) Failed() bool {
	return v.Error != ""
}

// Player is the media widget. It owns the Resource Locator and Error State and
// drives a seek.Synchronizer against an engine.
type Player struct {
	basePath string
	sync     *seek.Synchronizer

	mu         sync.Mutex
	opts       Options
	locator    string
	errState   string
	configured bool
	closed     bool

	subMu sync.Mutex
	subs  []*Subscription
}

// New creates a Player driving eng.
func New(eng engine.Engine, cfg Config) *Player {
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if cfg.Sink == nil {
		cfg.Sink = log.Warn
	}

	p := &Player{basePath: cfg.BasePath}
	p.sync = seek.New(eng, seek.Config{
		Sink:         cfg.Sink,
		Observer:     cfg.Observer,
		OnTransition: p.publishTransition,
		OnFailure:    p.handleFailure,
	})
	return p
}

// Configure renders the widget with new inputs. A new resource name adopts a
// new locator and clears the Error State; a new timestamp rebinds the session
// against the current locator. Unchanged inputs leave the session alone.
func (p *Player) Configure(opts Options) error {
	opts = opts.withDefaults()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if opts.ResourceName == "" {
		return ErrResourceRequired
	}

	nameChanged := !p.configured || opts.ResourceName != p.opts.ResourceName
	tsChanged := opts.Timestamp != p.opts.Timestamp
	p.opts = opts
	p.configured = true

	if nameChanged {
		p.locator = BuildLocator(p.basePath, opts.ResourceName)
		p.errState = ""
	}
	if nameChanged || tsChanged {
		log.Debug("Binding %s (timestamp %q)", p.locator, opts.Timestamp)
		p.sync.Bind(p.locator, opts.Timestamp)
	}
	return nil
}

// Close tears the widget down: the session is released and subscriptions end.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.sync.Release()
	p.mu.Unlock()

	p.subMu.Lock()
	for _, s := range p.subs {
		s.close()
	}
	p.subs = nil
	p.subMu.Unlock()
}

// Reset releases the current session but keeps the widget usable; the next
// Configure starts from scratch.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sync.Release()
	p.opts = Options{}
	p.locator = ""
	p.errState = ""
	p.configured = false
}

// Subscribe returns a subscription to state changes and load failures.
func (p *Player) Subscribe() *Subscription {
	s := newSubscription()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	p.subMu.Lock()
	defer p.subMu.Unlock()
	if closed {
		s.close()
		return s
	}
	p.subs = append(p.subs, s)
	return s
}

// View returns a snapshot of the widget.
func (p *Player) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		Options:    p.opts,
		Configured: p.configured,
		Locator:    p.locator,
		State:      p.sync.State(),
		Session:    p.sync.Session(),
		Error:      p.errState,
	}
	if p.configured && timestamp.SeekRequested(p.opts.Timestamp) {
		v.SeekRequested = true
		v.Offset = timestamp.Parse(p.opts.Timestamp, nil)
	}
	return v
}

func (p *Player) handleFailure(f seek.Failure) {
	p.mu.Lock()
	current := f.Session == p.sync.Session()
	if current {
		p.errState = fmt.Sprintf("Could not load video: %s", p.opts.ResourceName)
	}
	p.mu.Unlock()

	if !current {
		return
	}
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, s := range p.subs {
		s.sendFailure(f)
	}
}

func (p *Player) publishTransition(t seek.Transition) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, s := range p.subs {
		s.sendState(t)
	}
}
