package engine

import (
	"errors"
	"sync"
)

// Recorder is an in-memory Engine. It records every source and position write
// and delivers signals only when told to via Fire or FireError.
type Recorder struct {
	Listeners

	mu        sync.Mutex
	source    string
	sources   []string
	positions []float64

	// SourceErr and PositionErr, when set, are returned by the matching setter
	// after the write has been recorded.
	SourceErr   error
	PositionErr error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetSource records locator as the current source.
func (r *Recorder) SetSource(locator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = locator
	r.sources = append(r.sources, locator)
	return r.SourceErr
}

// SetPosition records a position write.
func (r *Recorder) SetPosition(seconds float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, seconds)
	return r.PositionErr
}

// Source returns the current source locator.
func (r *Recorder) Source() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

// Sources returns every locator passed to SetSource, oldest first.
func (r *Recorder) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sources...)
}

// Positions returns every position passed to SetPosition, oldest first.
func (r *Recorder) Positions() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.positions...)
}

// Fire delivers ev for the current source to the registered listeners.
func (r *Recorder) Fire(ev Event) {
	var err error
	if ev == EventLoadError {
		err = errors.New("media load failed")
	}
	r.Dispatch(Signal{Event: ev, Locator: r.Source(), Err: err})
}

// FireError delivers EventLoadError with the given cause.
func (r *Recorder) FireError(err error) {
	r.Dispatch(Signal{Event: EventLoadError, Locator: r.Source(), Err: err})
}

var _ Engine = (*Recorder)(nil)
