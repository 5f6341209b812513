package hand

import (
	"math"
	"strings"

	"github.com/ayusman/pinchpoint/internal/detector"
)

// PinchThreshold is the thumb-to-index distance, in skeleton units, below which a
// palm-forward hand is pinching.
const PinchThreshold = 10.0

// Mask is a finger extension bitmask. Bit i is set when FingerIndex i is extended.
type Mask uint8

const (
	// MaskPointing has only the index finger extended.
	MaskPointing Mask = 1 << Index
	// MaskOpen has every finger extended.
	MaskOpen Mask = 1<<NumFingers - 1
)

// Extended reports whether finger f is set.
func (m Mask) Extended(f FingerIndex) bool {
	return m&(1<<f) != 0
}

// Count returns the number of extended fingers.
func (m Mask) Count() int {
	n := 0
	for f := Thumb; f < NumFingers; f++ {
		if m.Extended(f) {
			n++
		}
	}
	return n
}

// String renders the mask thumb first, e.g. "[0,1,0,0,0]".
func (m Mask) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for f := Thumb; f < NumFingers; f++ {
		if f > 0 {
			b.WriteByte(',')
		}
		if m.Extended(f) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte(']')
	return b.String()
}

// PalmForward reports whether the palm faces the camera: the wrist/index/pinky
// triangle is taller than wide, flatter in depth than wide, and the index knuckle sits
// on the side that matches the chirality.
func PalmForward(points [detector.NumLandmarks]detector.Point3D, c detector.Chirality) bool {
	wrist := points[detector.Wrist]
	index := points[detector.IndexMCP]
	pinky := points[detector.PinkyMCP]

	width := math.Abs(pinky.X - index.X)
	height := math.Abs(wrist.Y - index.Y)
	depth := math.Max(math.Abs(wrist.Z-index.Z),
		math.Max(math.Abs(wrist.Z-pinky.Z), math.Abs(index.Z-pinky.Z)))

	var forward bool
	if c == detector.Left {
		forward = index.X < pinky.X
	} else {
		forward = index.X > pinky.X
	}

	return height > width && depth < width && forward
}

// ExtendedMask classifies each finger as extended or curled. The thumb compares the
// tip against the IP joint along x, mirrored by chirality; the other fingers are
// extended when the tip is above the PIP joint.
func ExtendedMask(points [detector.NumLandmarks]detector.Point3D, c detector.Chirality) Mask {
	var m Mask

	tip := points[detector.ThumbTip].X
	ip := points[detector.ThumbIP].X
	if (c == detector.Right && tip > ip) || (c != detector.Right && ip > tip) {
		m |= 1 << Thumb
	}

	for f := Index; f < NumFingers; f++ {
		tipIdx := fingerLandmarks[f][3]
		if points[tipIdx].Y < points[tipIdx-2].Y {
			m |= 1 << f
		}
	}

	return m
}

// PinchDistance is the distance between the index and thumb distal joints.
func PinchDistance(s *Skeleton) float64 {
	return s.IndexFinger().Distal().Distance(s.Thumb().Distal())
}

// PalmForward reports whether the skeleton's palm faces the camera.
func (s *Skeleton) PalmForward() bool {
	return PalmForward(s.points.Points, s.Chirality)
}

// IsPinching reports whether the palm faces forward and thumb and index touch.
func (s *Skeleton) IsPinching() bool {
	return s.PalmForward() && PinchDistance(s) < PinchThreshold
}

// IsPointing reports whether only the index finger is extended.
func (s *Skeleton) IsPointing() bool {
	return s.mask == MaskPointing
}

// Classify returns the raw single-frame state of s. A nil skeleton is Missing.
func Classify(s *Skeleton) State {
	switch {
	case s == nil:
		return Missing
	case s.IsPointing():
		return Pointing
	case s.IsPinching():
		return Pinching
	default:
		return Visible
	}
}
