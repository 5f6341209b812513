package hand

import "time"

// DefaultMissingTimeout is how long a hand may go undetected before it is reset.
const DefaultMissingTimeout = 500 * time.Millisecond

// State is the debounced persistence state of a hand.
type State int

const (
	Missing State = iota
	Visible
	Pointing
	Pinching
	// Reset is transient and always collapses to Missing on the next update.
	Reset
)

var stateNames = [...]string{"MISSING", "VISIBLE", "POINTING", "PINCHING", "RESET"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Evaluate advances the persistence state machine by one update.
//
// raw is the single-frame classification (Missing when no landmarks arrived), prev the
// previous persistent state and unseen the time since landmarks were last present.
// The returned age is the updated pinch age.
func Evaluate(raw, prev State, unseen, timeout time.Duration, age int) (State, int) {
	next := raw
	if raw == Missing {
		next = prev
		if unseen > timeout && prev != Missing && prev != Reset {
			next = Reset
		}
	}

	switch prev {
	case Missing:
		if next != Missing {
			next = Visible
		}
		age = 0

	case Visible:
		if next == Pinching {
			age = 0
		}

	case Pointing:
		if next != Pointing && next != Reset {
			next = Visible
		}

	case Pinching:
		if next == Pinching {
			age++
		} else if next != Reset {
			next = Visible
		}

	case Reset:
		next = Missing
		age = 0
	}

	return next, age
}
