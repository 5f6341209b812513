// Package gesture provides hold-to-confirm pose detectors that turn per-frame finger
// classifications into debounced gesture states.
package gesture

import (
	"time"

	"github.com/ayusman/pinchpoint/internal/geom"
)

// DefaultHoldThreshold is how long a pose must be held before it is confirmed.
const DefaultHoldThreshold = 1500 * time.Millisecond

// State is the named state reported by a detector.
type State string

const (
	None     State = "NONE"
	One      State = "ONE"
	Two      State = "TWO"
	Three    State = "THREE"
	Four     State = "FOUR"
	Five     State = "FIVE"
	Grabbing State = "GRABBING"
	Confirm  State = "CONFIRM"
)

// countStates maps an extended-finger count to its named state.
var countStates = [...]State{None, One, Two, Three, Four, Five}

// HoldDetector accumulates how long a qualifying pose is held without change. Once the
// hold reaches the threshold the detector latches in Confirm until the pose breaks.
type HoldDetector struct {
	threshold time.Duration
	qualifies func(count int) bool
	label     func(count int) State

	held      time.Duration
	lastCount int
	completed bool
	progress  float64
	state     State
}

// NewFingerCountDetector returns a detector for holding up one to five fingers.
func NewFingerCountDetector(threshold time.Duration) *HoldDetector {
	return newHoldDetector(threshold,
		func(count int) bool { return count > 0 },
		func(count int) State {
			if count < 0 || count >= len(countStates) {
				return None
			}
			return countStates[count]
		})
}

// NewGrabDetector returns a detector for holding a closed fist toward the camera.
func NewGrabDetector(threshold time.Duration) *HoldDetector {
	return newHoldDetector(threshold,
		func(count int) bool { return count == 0 },
		func(int) State { return Grabbing })
}

func newHoldDetector(threshold time.Duration, qualifies func(int) bool, label func(int) State) *HoldDetector {
	if threshold <= 0 {
		threshold = DefaultHoldThreshold
	}
	return &HoldDetector{
		threshold: threshold,
		qualifies: qualifies,
		label:     label,
		state:     None,
	}
}

// Update advances the detector by delta given this frame's extended-finger count and
// palm orientation. The count must match the previous frame's for the hold to continue.
func (d *HoldDetector) Update(delta time.Duration, count int, palmForward bool) {
	if palmForward && d.qualifies(count) && count == d.lastCount {
		if !d.completed {
			d.held += delta
			d.progress = geom.Clamp01(float64(d.held) / float64(d.threshold))
			if d.progress >= 1 {
				d.state = Confirm
				d.completed = true
			} else {
				d.state = d.label(count)
			}
		}
	} else {
		d.Reset()
	}
	d.lastCount = count
}

// Reset clears the hold without forgetting the last observed count.
func (d *HoldDetector) Reset() {
	d.held = 0
	d.progress = 0
	d.completed = false
	d.state = None
}

// State returns the current named state.
func (d *HoldDetector) State() State { return d.state }

// Progress returns the hold progress in [0, 1].
func (d *HoldDetector) Progress() float64 { return d.progress }

// Completed reports whether the pose has been confirmed.
func (d *HoldDetector) Completed() bool { return d.completed }

// Held returns the accumulated hold duration.
func (d *HoldDetector) Held() time.Duration { return d.held }
