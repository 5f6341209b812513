package body

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/geom"
)

// Shoulder gate geometry, in fractions of the shoulder width.
const (
	// ShoulderDeadzoneRatio is the shoulder jitter radius.
	ShoulderDeadzoneRatio = 0.2
	// PaddingRatio sizes the gate padding around the shoulder rect.
	PaddingRatio = 0.4
	// OffsetRectScale enlarges the per-side rect a wrist is mapped through.
	OffsetRectScale = 1.6
	// RectRaise lifts the shoulder rect above the shoulder line.
	RectRaise = 0.25
	// MovementTolerance is the multiple of the screen deadzone still considered static.
	MovementTolerance = 1.1
)

// Config holds configuration options for a body tracker.
type Config struct {
	// WristVisibility is the minimum visibility score for a wrist to count.
	WristVisibility float64
	// WristLerp is how far each frame moves the smoothed wrist towards the raw one.
	WristLerp float64
	// ScreenDeadzone is the pinch point jitter radius in pixels.
	ScreenDeadzone float64
	// CheckHeadTurn enables head yaw estimation.
	CheckHeadTurn bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		WristVisibility: 0.8,
		WristLerp:       0.4,
		ScreenDeadzone:  50,
	}
}

// wristSides pairs each body wrist landmark with its slot and offset direction.
var wristSides = [2]struct {
	landmark int
	hands    RectHands
	sign     float64
}{
	{detector.LeftWrist, LeftHand, 1},
	{detector.RightWrist, RightHand, -1},
}

// Tracker follows one body across frames. It keeps deadzoned shoulders, smoothed
// wrists and the last pinch points; everything else is recomputed per frame.
type Tracker struct {
	config Config
	pose   Pose
	wrists [2]*r3.Vector
}

// NewTracker creates a tracker with no body seen yet.
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config: config,
		pose:   Pose{State: Missing, InRect: NoHands, Movement: Static},
	}
}

// Update consumes this frame's body landmarks, or nil when no body was detected,
// for a screen of width x height pixels.
func (t *Tracker) Update(points *detector.BodyLandmarks, width, height float64) Pose {
	p := &t.pose
	p.State = Missing
	p.Gate, p.LeftRect, p.RightRect = nil, nil, nil
	p.HandsInRect = 0
	p.InRect = NoHands
	p.HeadYaw, p.HasHeadYaw = 0, false
	p.Landmarks = points

	if points == nil {
		t.wrists = [2]*r3.Vector{}
		return t.Pose()
	}

	radius := math.Abs(p.RightShoulder.X-p.LeftShoulder.X) * ShoulderDeadzoneRatio
	p.LeftShoulder = geom.Deadzone2D(p.LeftShoulder, points.Points[detector.LeftShoulder].Vec(), radius)
	p.RightShoulder = geom.Deadzone2D(p.RightShoulder, points.Points[detector.RightShoulder].Vec(), radius)
	p.State = BodyVisible

	w := math.Abs(p.RightShoulder.X - p.LeftShoulder.X)
	shoulder := geom.Rect{X: p.RightShoulder.X, Y: p.RightShoulder.Y - w*RectRaise, Width: w, Height: w}
	padding := PaddingRatio * w
	gate := shoulder.Pad(padding)
	p.Gate = &gate

	prevPinch := p.PinchPoints
	inRect := NoHands

	for slot, side := range wristSides {
		wrist := points.Points[side.landmark]
		if wrist.Visibility <= t.config.WristVisibility {
			t.wrists[slot] = nil
			continue
		}
		p.State = max(p.State, HandVisible)

		raw := wrist.Vec()
		prev := raw
		if t.wrists[slot] != nil {
			prev = *t.wrists[slot]
		}
		smooth := geom.Lerp(prev, raw, t.config.WristLerp)
		t.wrists[slot] = &smooth

		if !gate.Contains(smooth) {
			continue
		}
		p.State = InShoulderRect
		p.HandsInRect++
		inRect = side.hands

		rect := shoulder.Offset(side.sign*padding/4, OffsetRectScale)
		screen := geom.BodyToScreen(smooth, rect, width, height)
		p.PinchPoints[slot] = geom.Deadzone2D(p.PinchPoints[slot], screen, t.config.ScreenDeadzone)
		if slot == 0 {
			p.LeftRect = &rect
		} else {
			p.RightRect = &rect
		}
	}

	if p.HandsInRect == 2 {
		inRect = BothHands
	}
	p.InRect = inRect

	limit := t.config.ScreenDeadzone * MovementTolerance
	dl := math.Abs(p.PinchPoints[0].Y - prevPinch[0].Y)
	dr := math.Abs(p.PinchPoints[1].Y - prevPinch[1].Y)
	if dl < limit && dr < limit {
		p.Movement = Static
	} else {
		p.Movement = Moving
	}

	if t.config.CheckHeadTurn {
		p.HeadYaw, p.HasHeadYaw = HeadYaw(points)
	}

	return t.Pose()
}

// Pose returns a copy of the latest snapshot.
func (t *Tracker) Pose() Pose {
	return t.pose
}

// SmoothedWrist returns the smoothed wrist on the side of slot, if it was visible last
// frame.
func (t *Tracker) SmoothedWrist(slot int) (r3.Vector, bool) {
	if slot < 0 || slot >= len(t.wrists) || t.wrists[slot] == nil {
		return r3.Vector{}, false
	}
	return *t.wrists[slot], true
}
