package engine

import (
	"sort"
	"sync"
)

// Listeners is a goroutine-safe listener registry that engine implementations
// embed to satisfy AddListener and RemoveListener.
type Listeners struct {
	mu     sync.Mutex
	nextID ListenerID
	byID   map[ListenerID]registration
}

type registration struct {
	event Event
	fn    Listener
}

// AddListener registers fn for ev.
func (l *Listeners) AddListener(ev Event, fn Listener) ListenerID {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.byID == nil {
		l.byID = make(map[ListenerID]registration)
	}
	l.nextID++
	l.byID[l.nextID] = registration{event: ev, fn: fn}
	return l.nextID
}

// RemoveListener detaches the listener with the given id.
func (l *Listeners) RemoveListener(id ListenerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byID, id)
}

// Count returns the number of listeners registered for ev.
func (l *Listeners) Count(ev Event) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, r := range l.byID {
		if r.event == ev {
			n++
		}
	}
	return n
}

// Dispatch delivers sig to every listener registered for sig.Event, in
// registration order. The registry lock is not held while listeners run.
func (l *Listeners) Dispatch(sig Signal) {
	l.mu.Lock()
	ids := make([]ListenerID, 0, len(l.byID))
	for id, r := range l.byID {
		if r.event == sig.Event {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	l.mu.Unlock()

	for _, id := range ids {
		// A listener earlier in the batch may have detached this one.
		l.mu.Lock()
		r, ok := l.byID[id]
		l.mu.Unlock()
		if ok {
			r.fn(sig)
		}
	}
}
