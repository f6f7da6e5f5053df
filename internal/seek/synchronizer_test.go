package seek

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"clip-viewer/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clipLocator    = "/content_understanding/videos/clip.mp4"
	missingLocator = "/content_understanding/videos/missing.mp4"
)

// laggyEngine keeps every listener it was ever given and delivers signals to
// all of them, modelling a signal that was already in flight when the
// listener was removed.
type laggyEngine struct {
	engine.Recorder
	mu  sync.Mutex
	all []laggyListener
	ops []string
}

type laggyListener struct {
	ev engine.Event
	fn engine.Listener
}

func (e *laggyEngine) AddListener(ev engine.Event, fn engine.Listener) engine.ListenerID {
	e.mu.Lock()
	e.all = append(e.all, laggyListener{ev, fn})
	e.ops = append(e.ops, "add:"+string(ev))
	e.mu.Unlock()
	return e.Recorder.AddListener(ev, fn)
}

func (e *laggyEngine) RemoveListener(id engine.ListenerID) {
	e.mu.Lock()
	e.ops = append(e.ops, fmt.Sprintf("remove:%d", id))
	e.mu.Unlock()
	e.Recorder.RemoveListener(id)
}

func (e *laggyEngine) deliverToAll(sig engine.Signal) {
	e.mu.Lock()
	all := append([]laggyListener(nil), e.all...)
	e.mu.Unlock()
	for _, l := range all {
		if l.ev == sig.Event {
			l.fn(sig)
		}
	}
}

type fakeObserver struct {
	transitions []string
	seeks       []float64
	seekErrs    int
	stale       int
}

func (o *fakeObserver) ObserveTransition(from, to State) {
	o.transitions = append(o.transitions, from.String()+"->"+to.String())
}

func (o *fakeObserver) ObserveSeek(offset float64, err error) {
	o.seeks = append(o.seeks, offset)
	if err != nil {
		o.seekErrs++
	}
}

func (o *fakeObserver) ObserveStaleSignal(engine.Event) {
	o.stale++
}

func TestBind_SeeksOnDataLoaded(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:01:30")

	assert.Equal(t, Attached, s.State())
	assert.Equal(t, clipLocator, eng.Source())
	assert.Empty(t, eng.Positions(), "no seek before data loaded")

	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, Sought, s.State())
	assert.Equal(t, []float64{90}, eng.Positions())
}

func TestBind_SentinelNeverSeeks(t *testing.T) {
	for _, ts := range []string{"00:00:00", ""} {
		t.Run(fmt.Sprintf("%q", ts), func(t *testing.T) {
			eng := engine.NewRecorder()
			s := New(eng, Config{})

			s.Bind(clipLocator, ts)
			eng.Fire(engine.EventDataLoaded)

			assert.Equal(t, Sought, s.State())
			assert.Empty(t, eng.Positions())
		})
	}
}

func TestBind_ExplicitZeroIsASeek(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:00:00.000")
	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, []float64{0}, eng.Positions())
}

func TestBind_SeeksExactlyOncePerSession(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "01:02:03.500")
	eng.Fire(engine.EventDataLoaded)
	eng.Fire(engine.EventDataLoaded)
	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, []float64{3723.5}, eng.Positions())
}

func TestBind_MalformedTimestampSeeksPartialOffset(t *testing.T) {
	eng := engine.NewRecorder()
	var diagnostics []string
	s := New(eng, Config{Sink: func(format string, args ...interface{}) {
		diagnostics = append(diagnostics, fmt.Sprintf(format, args...))
	}})

	s.Bind(clipLocator, "00:aa:10")
	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, []float64{10}, eng.Positions())
	assert.Len(t, diagnostics, 1)
}

func TestBind_DetachesBeforeAttaching(t *testing.T) {
	eng := &laggyEngine{}
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:01:30")
	s.Bind(missingLocator, "00:00:10")

	require.Len(t, eng.ops, 6)
	assert.Equal(t, []string{"add:loadeddata", "add:error"}, eng.ops[:2])
	assert.Equal(t, []string{"remove:1", "remove:2"}, eng.ops[2:4])
	assert.Equal(t, []string{"add:loadeddata", "add:error"}, eng.ops[4:])
	assert.Equal(t, 1, eng.Count(engine.EventDataLoaded))
	assert.Equal(t, 1, eng.Count(engine.EventLoadError))
}

func TestBind_StaleSessionNeverSeeks(t *testing.T) {
	eng := &laggyEngine{}
	obs := &fakeObserver{}
	s := New(eng, Config{Observer: obs})

	s.Bind(clipLocator, "00:01:30")
	s.Bind(missingLocator, "00:00:10")

	// Deliver a data-loaded signal to both the superseded and the live session.
	eng.deliverToAll(engine.Signal{Event: engine.EventDataLoaded})

	assert.Equal(t, []float64{10}, eng.Positions(), "only the live session seeks")
	assert.Equal(t, 1, obs.stale)
}

func TestBind_StaleErrorIgnored(t *testing.T) {
	eng := &laggyEngine{}
	var failures []Failure
	s := New(eng, Config{OnFailure: func(f Failure) { failures = append(failures, f) }})

	s.Bind(missingLocator, "")
	s.Bind(clipLocator, "")
	eng.Fire(engine.EventDataLoaded)

	eng.deliverToAll(engine.Signal{Event: engine.EventLoadError, Err: errors.New("late")})

	// The live session accepts a post-load error; the superseded one must not
	// report anything.
	require.Len(t, failures, 1)
	assert.Equal(t, clipLocator, failures[0].Locator)
}

func TestBind_SignalForOtherLocatorIgnored(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:01:30")
	eng.Dispatch(engine.Signal{Event: engine.EventDataLoaded, Locator: missingLocator})

	assert.Equal(t, Attached, s.State())
	assert.Empty(t, eng.Positions())
}

func TestBind_LoadErrorFailsSession(t *testing.T) {
	eng := engine.NewRecorder()
	var failures []Failure
	s := New(eng, Config{OnFailure: func(f Failure) { failures = append(failures, f) }})

	sess := s.Bind(missingLocator, "00:01:30")
	eng.FireError(errors.New("404 not found"))

	assert.Equal(t, Failed, s.State())
	require.Len(t, failures, 1)
	assert.Equal(t, sess, failures[0].Session)
	assert.Equal(t, missingLocator, failures[0].Locator)
	assert.EqualError(t, failures[0].Err, "404 not found")

	assert.Equal(t, 0, eng.Count(engine.EventDataLoaded), "listeners torn down")
	assert.Equal(t, 0, eng.Count(engine.EventLoadError), "listeners torn down")

	eng.Fire(engine.EventDataLoaded)
	assert.Empty(t, eng.Positions(), "no seek after failure")
	assert.Equal(t, Failed, s.State())
}

func TestBind_TimestampChangeKeepsSource(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	first := s.Bind(clipLocator, "00:01:30")
	second := s.Bind(clipLocator, "00:02:00")

	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{clipLocator}, eng.Sources(), "source set once")

	eng.Fire(engine.EventDataLoaded)
	assert.Equal(t, []float64{120}, eng.Positions())
}

func TestBind_LocatorChangeReloads(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "")
	s.Bind(missingLocator, "")

	assert.Equal(t, []string{clipLocator, missingLocator}, eng.Sources())
	assert.Equal(t, missingLocator, s.Locator())
}

func TestBind_SourceErrorStillAttaches(t *testing.T) {
	eng := engine.NewRecorder()
	eng.SourceErr = errors.New("engine offline")
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:01:30")

	assert.Equal(t, Attached, s.State())
}

func TestBind_SeekErrorObserved(t *testing.T) {
	eng := engine.NewRecorder()
	eng.PositionErr = errors.New("not seekable")
	obs := &fakeObserver{}
	s := New(eng, Config{Observer: obs})

	s.Bind(clipLocator, "00:01:30")
	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, Sought, s.State())
	assert.Equal(t, []float64{90}, obs.seeks)
	assert.Equal(t, 1, obs.seekErrs)
}

func TestRelease_StopsObservingSignals(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "00:01:30")
	s.Release()

	eng.Fire(engine.EventDataLoaded)
	eng.Fire(engine.EventLoadError)

	assert.Equal(t, Idle, s.State())
	assert.Empty(t, eng.Positions())
	assert.Equal(t, "", s.Locator())
}

func TestRelease_NextBindReloads(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	s.Bind(clipLocator, "")
	s.Release()
	s.Bind(clipLocator, "")

	assert.Equal(t, []string{clipLocator, clipLocator}, eng.Sources())
}

func TestTransitions(t *testing.T) {
	eng := engine.NewRecorder()
	obs := &fakeObserver{}
	var seen []Transition
	s := New(eng, Config{Observer: obs, OnTransition: func(tr Transition) { seen = append(seen, tr) }})

	s.Bind(clipLocator, "00:01:30")
	eng.Fire(engine.EventDataLoaded)

	assert.Equal(t, []string{"idle->idle", "idle->attached", "attached->sought"}, obs.transitions)
	require.Len(t, seen, 3)
	assert.Equal(t, Sought, seen[2].To)
	assert.Equal(t, clipLocator, seen[2].Locator)
}

func TestTransitions_CarryNewSessionLocator(t *testing.T) {
	eng := engine.NewRecorder()
	var seen []Transition
	s := New(eng, Config{OnTransition: func(tr Transition) { seen = append(seen, tr) }})

	first := s.Bind(clipLocator, "")
	second := s.Bind(missingLocator, "")

	require.Len(t, seen, 4)
	for _, tr := range seen[:2] {
		assert.Equal(t, first, tr.Session)
		assert.Equal(t, clipLocator, tr.Locator)
	}
	for _, tr := range seen[2:] {
		assert.Equal(t, second, tr.Session)
		assert.Equal(t, missingLocator, tr.Locator, "%s->%s", tr.From, tr.To)
	}
	assert.Equal(t, Idle, seen[2].To)
}

func TestTransitionCallbackMayReenter(t *testing.T) {
	eng := engine.NewRecorder()
	var s *Synchronizer
	var states []State
	s = New(eng, Config{OnTransition: func(Transition) { states = append(states, s.State()) }})

	assert.NotPanics(t, func() {
		s.Bind(clipLocator, "00:01:30")
		eng.Fire(engine.EventDataLoaded)
	})
	assert.Equal(t, Sought, states[len(states)-1])
}

func TestConcurrentBindAndSignals(t *testing.T) {
	eng := engine.NewRecorder()
	s := New(eng, Config{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Bind(fmt.Sprintf("/videos/%d.mp4", i%3), "00:00:01")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			eng.Fire(engine.EventDataLoaded)
		}
	}()
	wg.Wait()

	for _, p := range eng.Positions() {
		assert.Equal(t, 1.0, p)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "attached", Attached.String())
	assert.Equal(t, "sought", Sought.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown(9)", State(9).String())

	text, err := Failed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
}
