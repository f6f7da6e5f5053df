package seek

import "fmt"

// State is the lifecycle state of a Playback Session.
type State int

const (
	// Idle means no listeners are attached.
	Idle State = iota
	// Attached means the session waits for data-loaded or load-error.
	Attached
	// Sought means data loaded and the requested offset, if any, was applied.
	Sought
	// Failed means the source could not be loaded.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attached:
		return "attached"
	case Sought:
		return "sought"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalText lets State appear by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition describes a state change of one session.
type Transition struct {
	Session uint64
	Locator string
	From    State
	To      State
}

// Failure describes a session that could not load its source.
type Failure struct {
	Session uint64
	Locator string
	Err     error
}
