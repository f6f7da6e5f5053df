package seek

import (
	"sync"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/logging"
	"clip-viewer/internal/timestamp"
)

var log = logging.Component("seek")

// Observer records synchronizer activity. The metrics package provides the
// Prometheus implementation.
type Observer interface {
	ObserveTransition(from, to State)
	ObserveSeek(offset float64, err error)
	ObserveStaleSignal(ev engine.Event)
}

// Config holds optional hooks for a Synchronizer.
type Config struct {
	// Sink receives timestamp parse diagnostics. Defaults to a WARN logger.
	Sink timestamp.Sink
	// Observer records metrics. May be nil.
	Observer Observer
	// OnTransition is called after every state change, outside the lock.
	OnTransition func(Transition)
	// OnFailure is called when a session fails to load, outside the lock.
	OnFailure func(Failure)
}

// Synchronizer applies a timestamp's offset to an engine once per session.
type Synchronizer struct {
	eng engine.Engine
	cfg Config

	mu        sync.Mutex
	state     State
	session   uint64
	locator   string
	ts        string
	listeners []engine.ListenerID
}

// New creates a Synchronizer driving eng.
func New(eng engine.Engine, cfg Config) *Synchronizer {
	if cfg.Sink == nil {
		cfg.Sink = log.Warn
	}
	return &Synchronizer{eng: eng, cfg: cfg}
}

// Bind starts a new session for locator and ts, replacing the current one.
// The engine source is only reloaded when locator differs from the bound one.
// It returns the new session id.
func (s *Synchronizer) Bind(locator, ts string) uint64 {
	s.mu.Lock()

	var pending []func()
	s.detachLocked()
	s.session++
	sess := s.session

	reload := locator != s.locator
	s.locator = locator
	s.ts = ts
	pending = append(pending, s.setStateLocked(Idle))

	// Listeners go on before the source is set so a fast engine cannot
	// signal into an empty registry.
	s.listeners = []engine.ListenerID{
		s.eng.AddListener(engine.EventDataLoaded, func(sig engine.Signal) { s.handleLoaded(sess, sig) }),
		s.eng.AddListener(engine.EventLoadError, func(sig engine.Signal) { s.handleError(sess, sig) }),
	}

	if reload {
		if err := s.eng.SetSource(locator); err != nil {
			log.Warn("Failed to set source %s: %v", locator, err)
		}
	}
	pending = append(pending, s.setStateLocked(Attached))
	log.Debug("Session %d attached to %s (timestamp %q, reload=%v)", sess, locator, ts, reload)

	s.mu.Unlock()
	run(pending)
	return sess
}

// Release detaches the current session. No signal delivered afterwards is
// observed, and the next Bind reloads the source.
func (s *Synchronizer) Release() {
	s.mu.Lock()

	s.detachLocked()
	s.session++
	note := s.setStateLocked(Idle)
	s.locator = ""
	s.ts = ""

	s.mu.Unlock()
	run([]func(){note})
}

// State returns the current session's state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the current session id. It changes on every Bind and Release.
func (s *Synchronizer) Session() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Locator returns the locator of the current session.
func (s *Synchronizer) Locator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locator
}

func (s *Synchronizer) handleLoaded(sess uint64, sig engine.Signal) {
	s.mu.Lock()

	if !s.currentLocked(sess, sig) || s.state != Attached {
		s.staleLocked(sess, sig)
		s.mu.Unlock()
		return
	}

	note := s.setStateLocked(Sought)
	if timestamp.SeekRequested(s.ts) {
		offset := timestamp.Parse(s.ts, s.cfg.Sink)
		// The lock stays held so a concurrent Bind cannot slip a new source
		// in between the session check and the write.
		err := s.eng.SetPosition(offset)
		if err != nil {
			log.Warn("Seek to %s failed for %s: %v", timestamp.Format(offset), s.locator, err)
		} else {
			log.Debug("Session %d sought to %s", sess, timestamp.Format(offset))
		}
		if s.cfg.Observer != nil {
			s.cfg.Observer.ObserveSeek(offset, err)
		}
	}

	s.mu.Unlock()
	run([]func(){note})
}

func (s *Synchronizer) handleError(sess uint64, sig engine.Signal) {
	s.mu.Lock()

	if !s.currentLocked(sess, sig) || (s.state != Attached && s.state != Sought) {
		s.staleLocked(sess, sig)
		s.mu.Unlock()
		return
	}

	s.detachLocked()
	note := s.setStateLocked(Failed)
	failure := Failure{Session: sess, Locator: s.locator, Err: sig.Err}
	log.Warn("Session %d failed to load %s: %v", sess, s.locator, sig.Err)

	s.mu.Unlock()
	run([]func(){note})
	if s.cfg.OnFailure != nil {
		s.cfg.OnFailure(failure)
	}
}

// currentLocked reports whether a signal belongs to the live session. A
// signal tagged with a different locator is from an earlier source.
func (s *Synchronizer) currentLocked(sess uint64, sig engine.Signal) bool {
	if sess != s.session {
		return false
	}
	return sig.Locator == "" || sig.Locator == s.locator
}

func (s *Synchronizer) staleLocked(sess uint64, sig engine.Signal) {
	log.Debug("Ignoring %s for session %d (current %d, state %s)", sig, sess, s.session, s.state)
	if s.cfg.Observer != nil {
		s.cfg.Observer.ObserveStaleSignal(sig.Event)
	}
}

func (s *Synchronizer) detachLocked() {
	for _, id := range s.listeners {
		s.eng.RemoveListener(id)
	}
	s.listeners = nil
}

// setStateLocked changes state and returns the notification to run once the
// lock is released.
func (s *Synchronizer) setStateLocked(to State) func() {
	from := s.state
	s.state = to
	if s.cfg.Observer != nil {
		s.cfg.Observer.ObserveTransition(from, to)
	}
	t := Transition{Session: s.session, Locator: s.locator, From: from, To: to}
	return func() {
		if s.cfg.OnTransition != nil {
			s.cfg.OnTransition(t)
		}
	}
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
