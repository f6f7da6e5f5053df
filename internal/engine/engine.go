package engine

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by engines that have been shut down.
var ErrClosed = errors.New("engine closed")

// Event names a lifecycle signal emitted by an Engine.
type Event string

const (
	// EventDataLoaded fires when the current source can be seeked.
	EventDataLoaded Event = "loadeddata"
	// EventLoadError fires when the current source failed to load.
	EventLoadError Event = "error"
)

// Signal is delivered to listeners.
type Signal struct {
	Event   Event
	Locator string
	Err     error
}

func (s Signal) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s(%s): %v", s.Event, s.Locator, s.Err)
	}
	return fmt.Sprintf("%s(%s)", s.Event, s.Locator)
}

// Listener handles a Signal.
type Listener func(Signal)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

// Engine is the platform media-playback primitive.
type Engine interface {
	// SetSource points the engine at a new locator and starts loading it.
	SetSource(locator string) error
	// SetPosition moves the playback position to seconds from the start.
	SetPosition(seconds float64) error
	// AddListener registers fn for ev and returns a handle for RemoveListener.
	AddListener(ev Event, fn Listener) ListenerID
	// RemoveListener detaches a listener. Unknown ids are ignored.
	RemoveListener(id ListenerID)
}
