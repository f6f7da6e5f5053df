package player

import "clip-viewer/internal/seek"

const eventBufferSize = 16

// Subscription delivers widget events. Sends never block; events are dropped
// when a buffer is full.
type Subscription struct {
	StateChanged <-chan seek.Transition
	Failed       <-chan seek.Failure
	Done         <-chan struct{}

	stateCh  chan seek.Transition
	failedCh chan seek.Failure
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan seek.Transition, eventBufferSize),
		failedCh: make(chan seek.Failure, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Failed = s.failedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(t seek.Transition) {
	select {
	case s.stateCh <- t:
	default:
	}
}

func (s *Subscription) sendFailure(f seek.Failure) {
	select {
	case s.failedCh <- f:
	default:
	}
}
