// Package hand models a single tracked hand: a scale-normalized skeleton, the
// per-frame pose classifiers and the persistence state machine that debounces them.
package hand

import (
	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/detector"
)

// Skeleton scaling constants.
const (
	// KnuckleWidth is the width the index-to-pinky knuckle span is scaled to.
	KnuckleWidth = 300 * 0.05
	// MaxScale bounds the scale factor when the knuckle span collapses.
	MaxScale = 1e6
	// minKnuckleSpan is the span below which the scale is clamped to MaxScale.
	minKnuckleSpan = 1e-9
)

// FingerIndex identifies a finger. The order matches the extension mask.
type FingerIndex int

const (
	Thumb FingerIndex = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f FingerIndex) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// fingerLandmarks lists the four landmark indices of each finger, base to tip.
var fingerLandmarks = [NumFingers][4]int{
	{detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

// Finger holds the four scaled joints of one finger.
type Finger struct {
	Index  FingerIndex  `json:"index"`
	Joints [4]r3.Vector `json:"joints"`
}

func (f Finger) Metacarpal() r3.Vector   { return f.Joints[0] }
func (f Finger) Proximal() r3.Vector     { return f.Joints[1] }
func (f Finger) Intermediate() r3.Vector { return f.Joints[2] }
func (f Finger) Distal() r3.Vector       { return f.Joints[3] }

// IsExtended reports whether this finger is set in mask.
func (f Finger) IsExtended(mask Mask) bool {
	return mask.Extended(f.Index)
}

// Skeleton is a hand re-expressed relative to a stable anchor and scaled so the
// knuckle span has a constant width. It is rebuilt every frame and never mutated.
type Skeleton struct {
	Chirality detector.Chirality `json:"chirality"`
	Anchor    r3.Vector          `json:"anchor"`
	Scale     float64            `json:"scale"`
	Fingers   [NumFingers]Finger `json:"fingers"`

	points detector.HandLandmarks
	mask   Mask
}

// NewSkeleton builds a skeleton using the anchor and scale derived from lm.
func NewSkeleton(lm detector.HandLandmarks) *Skeleton {
	return NewSkeletonAt(lm, StableAnchor(lm), HandScale(lm))
}

// NewSkeletonAt builds a skeleton with a precomputed anchor and scale.
func NewSkeletonAt(lm detector.HandLandmarks, anchor r3.Vector, scale float64) *Skeleton {
	s := &Skeleton{
		Chirality: lm.Handedness,
		Anchor:    anchor,
		Scale:     scale,
		points:    lm,
		mask:      ExtendedMask(lm.Points, lm.Handedness),
	}

	for f := Thumb; f < NumFingers; f++ {
		finger := Finger{Index: f}
		for j, idx := range fingerLandmarks[f] {
			finger.Joints[j] = lm.Points[idx].Vec().Sub(anchor).Mul(scale)
		}
		s.Fingers[f] = finger
	}

	return s
}

// StableAnchor returns a point half a knuckle span beyond the index knuckle, roughly
// where thumb and index meet. It moves with the palm, not with the fingertips.
func StableAnchor(lm detector.HandLandmarks) r3.Vector {
	index := lm.Points[detector.IndexMCP].Vec()
	pinky := lm.Points[detector.PinkyMCP].Vec()
	return index.Add(index.Sub(pinky).Mul(0.5))
}

// HandScale returns the factor that maps the knuckle span to KnuckleWidth.
func HandScale(lm detector.HandLandmarks) float64 {
	span := lm.Points[detector.IndexMCP].Vec().Distance(lm.Points[detector.PinkyMCP].Vec())
	if span < minKnuckleSpan {
		return MaxScale
	}
	return KnuckleWidth / span
}

// Landmarks returns the raw landmarks the skeleton was built from.
func (s *Skeleton) Landmarks() detector.HandLandmarks {
	return s.points
}

// Mask returns the finger extension mask.
func (s *Skeleton) Mask() Mask {
	return s.mask
}

// IsExtended reports whether finger f is extended.
func (s *Skeleton) IsExtended(f FingerIndex) bool {
	return s.Fingers[f].IsExtended(s.mask)
}

// Thumb returns the thumb joints.
func (s *Skeleton) Thumb() Finger { return s.Fingers[Thumb] }

// IndexFinger returns the index finger joints.
func (s *Skeleton) IndexFinger() Finger { return s.Fingers[Index] }
