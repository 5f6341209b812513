// Package detector defines the landmark types produced by the external pose provider
// and the adapters that obtain them.
package detector

import "github.com/golang/geo/r3"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Body pose landmark indices following MediaPipe convention.
// Only the points the trackers read are named.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose             = 0
	LeftEye          = 2
	RightEye         = 5
	LeftShoulder     = 11
	RightShoulder    = 12
	LeftWrist        = 15
	RightWrist       = 16
	NumBodyLandmarks = 33
)

// Chirality is the handedness label reported by the provider.
type Chirality string

const (
	Left  Chirality = "Left"
	Right Chirality = "Right"
)

// Slot returns the fixed tracking slot for c: 0 for Left, 1 for Right, -1 otherwise.
func (c Chirality) Slot() int {
	switch c {
	case Left:
		return 0
	case Right:
		return 1
	default:
		return -1
	}
}

// Point3D is a landmark in normalized image space. Visibility is only populated for
// body landmarks.
type Point3D struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Vec returns the point as a vector.
func (p Point3D) Vec() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	World      []Point3D             `json:"world,omitempty"`
	Handedness Chirality             `json:"handedness"`
	Score      float64               `json:"score"`
}

// BodyLandmarks represents the 33 body pose landmarks detected by MediaPipe.
type BodyLandmarks struct {
	Points [NumBodyLandmarks]Point3D `json:"points"`
}

// Scaled returns a copy of h with every image coordinate multiplied by k.
func (h HandLandmarks) Scaled(k float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X *= k
		out.Points[i].Y *= k
		out.Points[i].Z *= k
	}
	return out
}

// Translated returns a copy of h shifted by (dx, dy) in image space.
func (h HandLandmarks) Translated(dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// Mirrored returns a copy of h reflected about x=0.5 with the opposite handedness.
func (h HandLandmarks) Mirrored() HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	if h.Handedness == Left {
		out.Handedness = Right
	} else {
		out.Handedness = Left
	}
	return out
}
