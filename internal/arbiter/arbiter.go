package arbiter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/body"
	"github.com/ayusman/pinchpoint/internal/gesture"
	"github.com/ayusman/pinchpoint/internal/logging"
)

// ErrUnknownWakeMode is returned when parsing an unrecognized wake mode.
var ErrUnknownWakeMode = errors.New("unknown wake mode")

// WakeMode selects the gesture a person makes to become the active person.
type WakeMode string

const (
	// TwoHandsIn wakes a person holding both wrists still inside the shoulder gate.
	TwoHandsIn WakeMode = "TWO_HANDS_IN"
	// Fist wakes a person holding one grabbing hand inside the gate.
	Fist WakeMode = "FIST"
	// NoGesture wakes any person with a hand inside the gate.
	NoGesture WakeMode = "NONE"
)

// wakeModes is indexed by the numeric form accepted by ParseWakeMode.
var wakeModes = [...]WakeMode{TwoHandsIn, Fist, NoGesture}

// ParseWakeMode parses a wake mode by name, case-insensitively, or by its index.
func ParseWakeMode(s string) (WakeMode, error) {
	s = strings.TrimSpace(s)
	for i, m := range wakeModes {
		if strings.EqualFold(s, string(m)) || s == fmt.Sprint(i) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWakeMode, s)
}

func (m WakeMode) String() string {
	return string(m)
}

// Arbitration defaults.
const (
	DefaultHoldTime        = 200 * time.Millisecond
	DefaultInactiveTimeout = 5000 * time.Millisecond
)

// Config holds configuration options for the arbiter.
type Config struct {
	Mode WakeMode
	// HoldTime is how long a candidate must keep attempting wake.
	HoldTime time.Duration
	// InactiveTimeout is how long the awake person may keep their hands out of the gate.
	InactiveTimeout time.Duration
	// RemoveInactive enables clearing the awake person after InactiveTimeout.
	RemoveInactive bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Mode:            TwoHandsIn,
		HoldTime:        DefaultHoldTime,
		InactiveTimeout: DefaultInactiveTimeout,
		RemoveInactive:  true,
	}
}

// Decision is the outcome of one arbitration tick. Indices refer to the people slice
// given to Update; -1 means none.
type Decision struct {
	// Active is the person driving input this tick.
	Active int `json:"active"`
	// Awake is the confirmed awake person, who may be temporarily inactive.
	Awake     int  `json:"awake"`
	Candidate int  `json:"candidate"`
	Cleared   bool `json:"cleared"`
}

// Arbiter promotes at most one person to awake and retires them after inactivity.
type Arbiter struct {
	config Config
	log    logrus.FieldLogger

	awake          int
	candidate      int
	candidateSince time.Time
	inactive       time.Duration
	lastUpdate     time.Time
}

// New creates an arbiter with nobody awake. A nil logger discards output.
func New(config Config, log logrus.FieldLogger) *Arbiter {
	if log == nil {
		log = logging.Discard()
	}
	return &Arbiter{
		config:    config,
		log:       log.WithField("component", "arbiter"),
		awake:     -1,
		candidate: -1,
	}
}

// Update evaluates this tick's people, whose bodies and hands must already be updated.
func (a *Arbiter) Update(people []*Person, now time.Time) Decision {
	var dt time.Duration
	if !a.lastUpdate.IsZero() {
		dt = now.Sub(a.lastUpdate)
	}
	a.lastUpdate = now

	if a.awake >= len(people) {
		a.awake = -1
	}
	present := a.awake >= 0 && people[a.awake].Body.Pose().InRect != body.NoHands

	if a.config.RemoveInactive {
		if present {
			a.inactive = 0
		} else if a.awake >= 0 {
			a.inactive += dt
			if a.inactive > a.config.InactiveTimeout {
				a.log.WithField("person", people[a.awake].Name).Info("hands inactive, clearing active person")
				a.awake = -1
				a.inactive = 0
				return Decision{Active: -1, Awake: -1, Candidate: a.candidate, Cleared: true}
			}
		}
	}

	active := -1
	for i, p := range people {
		if !a.attemptingWake(p) {
			if a.candidate == i {
				a.candidate = -1
			}
			continue
		}
		if a.candidate != i {
			a.candidate = i
			a.candidateSince = now
			continue
		}
		if now.Sub(a.candidateSince) >= a.config.HoldTime {
			active = i
		}
	}

	if present {
		active = a.awake
	} else if active >= 0 {
		if a.awake != active {
			a.log.WithFields(logrus.Fields{
				"person": people[active].Name,
				"mode":   a.config.Mode,
			}).Info("person awake")
		}
		a.awake = active
		a.inactive = 0
	}

	return Decision{Active: active, Awake: a.awake, Candidate: a.candidate}
}

// attemptingWake reports whether p is making the configured wake gesture inside the
// shoulder gate.
func (a *Arbiter) attemptingWake(p *Person) bool {
	pose := p.Body.Pose()
	if pose.State != body.InShoulderRect {
		return false
	}
	switch a.config.Mode {
	case TwoHandsIn:
		return pose.HandsInRect == 2 && pose.Movement == body.Static
	case Fist:
		return pose.HandsInRect == 1 && p.Hands.GrabState() == gesture.Grabbing
	default:
		return true
	}
}


// Awake returns the index of the awake person, or -1.
func (a *Arbiter) Awake() int {
	return a.awake
}

// Reset forgets the awake person and any candidate.
func (a *Arbiter) Reset() {
	a.awake = -1
	a.candidate = -1
	a.candidateSince = time.Time{}
	a.inactive = 0
}
