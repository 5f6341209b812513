package tracking

import (
	"time"

	"github.com/ayusman/pinchpoint/internal/detector"
)

// Frame is one tick of input for Process.
type Frame struct {
	Hands  []detector.HandLandmarks
	Bodies []detector.BodyLandmarks
	// HandsFresh is false when Hands were recycled from an earlier detection.
	HandsFresh bool
	Timestamp  time.Time

	ScreenWidth  float64
	ScreenHeight float64
}

// ResultCache keeps the latest hands and bodies so ticks that skip a model can reuse
// its last output.
type ResultCache struct {
	hands      []detector.HandLandmarks
	bodies     []detector.BodyLandmarks
	handsFresh bool
}

// Store records the parts of r that were produced by its detection call.
func (c *ResultCache) Store(r *detector.Result) {
	if r == nil {
		return
	}
	if r.Kind.Has(detector.KindHands) {
		c.hands = r.Hands
		c.handsFresh = true
	}
	if r.Kind.Has(detector.KindBodies) {
		c.bodies = r.Bodies
	}
}

// Frame builds the next frame from the cache. Hands are fresh only on the first frame
// after they were stored.
func (c *ResultCache) Frame(now time.Time, width, height float64) Frame {
	f := Frame{
		Hands:        c.hands,
		Bodies:       c.bodies,
		HandsFresh:   c.handsFresh,
		Timestamp:    now,
		ScreenWidth:  width,
		ScreenHeight: height,
	}
	c.handsFresh = false
	return f
}

// Reset drops all cached results.
func (c *ResultCache) Reset() {
	*c = ResultCache{}
}

// DutyCycle alternates detection between the body and hand models. Of every length
// ticks, the first bodyTicks run body detection and the rest run hand detection.
type DutyCycle struct {
	length    int
	bodyTicks int
	hands     bool
	counter   int
}

// NewDutyCycle creates a duty cycle. When trackHands is false every tick runs body
// detection.
func NewDutyCycle(length, bodyTicks int, trackHands bool) *DutyCycle {
	if length < 1 {
		length = 1
	}
	return &DutyCycle{length: length, bodyTicks: bodyTicks, hands: trackHands}
}

// Next returns the models to run this tick and advances the cycle.
func (d *DutyCycle) Next() detector.Kind {
	kind := detector.KindHands
	if d.counter < d.bodyTicks || !d.hands {
		kind = detector.KindBodies
	}
	d.counter = (d.counter + 1) % d.length
	return kind
}
