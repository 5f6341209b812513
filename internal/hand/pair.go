package hand

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/geom"
	"github.com/ayusman/pinchpoint/internal/gesture"
)

// Config holds configuration options for a hand pair.
type Config struct {
	// MissingTimeout is how long a hand may go undetected before it is reset.
	MissingTimeout time.Duration
	// PinchSmoothing is the fraction of the previous pinch position kept per frame.
	PinchSmoothing float64
	// PinchDeadzone is the jitter radius ignored in the reported pinch position.
	PinchDeadzone float64
	// CheckFingerPoses enables the finger-count detector.
	CheckFingerPoses bool
	// CheckGrab enables the grab detector.
	CheckGrab bool
	// PoseHoldThreshold is the hold time both detectors confirm at.
	PoseHoldThreshold time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MissingTimeout:    DefaultMissingTimeout,
		PinchSmoothing:    DefaultPinchSmoothing,
		PinchDeadzone:     DefaultPinchDeadzone,
		CheckFingerPoses:  true,
		CheckGrab:         true,
		PoseHoldThreshold: gesture.DefaultHoldThreshold,
	}
}

// TrackedHand is the per-frame output for one chirality slot.
type TrackedHand struct {
	Chirality detector.Chirality `json:"chirality"`
	State     State              `json:"state"`
	// Skeleton is nil while the hand is missing.
	Skeleton *Skeleton `json:"skeleton,omitempty"`
	// PinchPosition is the filtered anchor position in normalized image space.
	PinchPosition r3.Vector `json:"pinch_position"`
	PinchAge      int       `json:"pinch_age"`
	PinchID       int       `json:"pinch_id"`

	GestureState    gesture.State `json:"gesture_state"`
	GestureProgress float64       `json:"gesture_progress"`
	GrabState       gesture.State `json:"grab_state"`
	GrabProgress    float64       `json:"grab_progress"`

	LastSeen time.Time `json:"last_seen"`
}

// Pinching reports whether the current skeleton is pinching this frame.
func (h *TrackedHand) Pinching() bool {
	return h.Skeleton != nil && h.Skeleton.IsPinching()
}

// Pointing reports whether the current skeleton is pointing this frame.
func (h *TrackedHand) Pointing() bool {
	return h.Skeleton != nil && h.Skeleton.IsPointing()
}

// slotChirality maps slot indices to chirality.
var slotChirality = [2]detector.Chirality{detector.Left, detector.Right}

// Pair tracks the Left and Right hands of one person across frames. Slot 0 is Left and
// slot 1 is Right. Only the pair mutates its slots.
type Pair struct {
	config  Config
	hands   [2]TrackedHand
	filters [2]*PinchFilter
	user    State

	fingers *gesture.HoldDetector
	grab    *gesture.HoldDetector

	lastUpdate time.Time
}

// NewPair creates a hand pair with both slots missing.
func NewPair(config Config) *Pair {
	p := &Pair{config: config}
	for i := range p.hands {
		p.hands[i] = TrackedHand{
			Chirality:    slotChirality[i],
			PinchID:      -1,
			GestureState: gesture.None,
			GrabState:    gesture.None,
		}
		p.filters[i] = NewPinchFilter(config.PinchSmoothing)
	}
	if config.CheckFingerPoses {
		p.fingers = gesture.NewFingerCountDetector(config.PoseHoldThreshold)
	}
	if config.CheckGrab {
		p.grab = gesture.NewGrabDetector(config.PoseHoldThreshold)
	}
	return p
}

// Update consumes this frame's hand landmarks. Hands are matched to slots by
// handedness; the first hand of each chirality wins. active names the hand whose
// gesture detectors run this frame (empty for none). fresh is false when results are
// recycled from an earlier detection.
func (p *Pair) Update(results []detector.HandLandmarks, active detector.Chirality, fresh bool, now time.Time) [2]TrackedHand {
	var delta time.Duration
	if !p.lastUpdate.IsZero() {
		delta = now.Sub(p.lastUpdate)
	}
	p.lastUpdate = now

	var found [2]*detector.HandLandmarks
	for i := range results {
		slot := results[i].Handedness.Slot()
		if slot >= 0 && found[slot] == nil {
			found[slot] = &results[i]
		}
	}

	for slot := range p.hands {
		if found[slot] != nil {
			p.updatePresent(slot, *found[slot], active, fresh, delta, now)
		} else {
			p.updateAbsent(slot, now)
		}
	}

	p.updateUserState()
	return p.hands
}

func (p *Pair) updatePresent(slot int, lm detector.HandLandmarks, active detector.Chirality, fresh bool, delta time.Duration, now time.Time) {
	h := &p.hands[slot]
	skel := NewSkeleton(lm)
	firstSeen := h.State == Missing

	h.State, h.PinchAge = Evaluate(Classify(skel), h.State, 0, p.config.MissingTimeout, h.PinchAge)
	h.Skeleton = skel
	h.LastSeen = now

	h.GestureState, h.GestureProgress = gesture.None, 0
	h.GrabState, h.GrabProgress = gesture.None, 0
	if active == h.Chirality {
		count, palm := skel.Mask().Count(), skel.PalmForward()
		if p.fingers != nil {
			p.fingers.Update(delta, count, palm)
			h.GestureState, h.GestureProgress = p.fingers.State(), p.fingers.Progress()
		}
		if p.grab != nil {
			p.grab.Update(delta, count, palm)
			h.GrabState, h.GrabProgress = p.grab.State(), p.grab.Progress()
		}
	}

	filtered := p.filters[slot].Filter(skel.Anchor, fresh, now)
	if firstSeen {
		h.PinchPosition = filtered
		return
	}
	h.PinchPosition = geom.Deadzone(h.PinchPosition, filtered, p.config.PinchDeadzone)
}

func (p *Pair) updateAbsent(slot int, now time.Time) {
	h := &p.hands[slot]

	var unseen time.Duration
	if !h.LastSeen.IsZero() {
		unseen = now.Sub(h.LastSeen)
	}
	h.State, h.PinchAge = Evaluate(Missing, h.State, unseen, p.config.MissingTimeout, h.PinchAge)

	if h.State == Reset {
		h.Skeleton = nil
		h.PinchID = -1
		h.GestureState, h.GestureProgress = gesture.None, 0
		h.GrabState, h.GrabProgress = gesture.None, 0
		p.filters[slot].Reset()
		return
	}

	filtered := p.filters[slot].Filter(h.PinchPosition, false, now)
	h.PinchPosition = geom.Deadzone(h.PinchPosition, filtered, p.config.PinchDeadzone)
}

// visible reports whether slot holds a hand that is neither missing nor resetting.
func (p *Pair) visible(slot int) bool {
	s := p.hands[slot].State
	return s != Missing && s != Reset
}

func (p *Pair) updateUserState() {
	anyVisible := p.visible(0) || p.visible(1)
	anyPinching := p.hands[0].State == Pinching || p.hands[1].State == Pinching
	anyPointing := p.hands[0].State == Pointing || p.hands[1].State == Pointing

	if !anyVisible {
		p.user = Missing
		return
	}

	switch p.user {
	case Missing:
		if anyVisible {
			p.user = Visible
		}
	case Visible:
		if anyPinching {
			p.user = Pinching
			p.AssignPinchIDs()
		} else if anyPointing {
			p.user = Pointing
		}
	case Pointing:
		if !anyPointing {
			p.user = Visible
		}
	case Pinching:
		changed := p.AssignPinchIDs()
		if !anyPinching || changed {
			p.user = Visible
		}
	case Reset:
		p.user = Missing
	}
}

// AssignPinchIDs gives each pinching hand a distinct id. The longer-held pinch keeps
// id 0; when both started together the Left hand does. Hands not pinching get -1.
// It reports whether any id changed.
func (p *Pair) AssignPinchIDs() bool {
	ids := pinchIDs(p.hands[0].Pinching(), p.hands[1].Pinching(), p.hands[0].PinchAge, p.hands[1].PinchAge)

	changed := false
	for slot, id := range ids {
		if p.hands[slot].PinchID != id {
			p.hands[slot].PinchID = id
			changed = true
		}
	}
	return changed
}

func pinchIDs(pinch0, pinch1 bool, age0, age1 int) [2]int {
	ids := [2]int{-1, -1}
	switch {
	case pinch0 && pinch1:
		if age0 >= age1 {
			ids = [2]int{0, 1}
		} else {
			ids = [2]int{1, 0}
		}
	case pinch0:
		ids[0] = 0
	case pinch1:
		ids[1] = 0
	}
	return ids
}

// Hands returns the current state of both slots.
func (p *Pair) Hands() [2]TrackedHand {
	return p.hands
}

// UserState returns the combined state of both hands.
func (p *Pair) UserState() State {
	return p.user
}

// GrabState returns the grab detector's state, or None when grab detection is off.
func (p *Pair) GrabState() gesture.State {
	if p.grab == nil {
		return gesture.None
	}
	return p.grab.State()
}

// Filter returns the pinch filter for slot, for inspection.
func (p *Pair) Filter(slot int) *PinchFilter {
	return p.filters[slot]
}
