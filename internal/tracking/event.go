package tracking

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/body"
	"github.com/ayusman/pinchpoint/internal/hand"
)

// HandEvent is a tracked hand plus the screen point its side of the body maps to.
type HandEvent struct {
	hand.TrackedHand
	// ScreenPinch is in screen pixels. It holds its last value while the body is missing.
	ScreenPinch r3.Vector `json:"screen_pinch"`
}

// PersonEvent is one person's state for a tick.
type PersonEvent struct {
	Name      string       `json:"name"`
	Pose      body.Pose    `json:"pose"`
	Hands     [2]HandEvent `json:"hands"`
	UserState hand.State   `json:"user_state"`
}

// Event is the output of one Process call.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	People    []PersonEvent `json:"people"`
	// Active is the index of the person driving input, or -1.
	Active     int    `json:"active"`
	ActiveName string `json:"active_name,omitempty"`
	Awake      int    `json:"awake"`
	// NoActivePerson is set only on the tick the awake person is cleared.
	NoActivePerson bool `json:"no_active_person"`
	// Indicator has one status per person, in order.
	Indicator []PersonStatus `json:"indicator"`
}

// PersonStatus is a person's entry in the people indicator.
type PersonStatus string

const (
	StatusActive   PersonStatus = "ACTIVE"
	StatusVisible  PersonStatus = "VISIBLE"
	StatusInactive PersonStatus = "INACTIVE"
)

// indicator reports each person, in order, as active, visible or inactive.
func (e Event) indicator() []PersonStatus {
	out := make([]PersonStatus, len(e.People))
	for i, p := range e.People {
		switch {
		case i == e.Active:
			out[i] = StatusActive
		case p.Pose.State != body.Missing:
			out[i] = StatusVisible
		default:
			out[i] = StatusInactive
		}
	}
	return out
}

// ActivePerson returns the active person's entry.
func (e Event) ActivePerson() (PersonEvent, bool) {
	if e.Active < 0 || e.Active >= len(e.People) {
		return PersonEvent{}, false
	}
	return e.People[e.Active], true
}
