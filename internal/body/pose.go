// Package body tracks a single person's shoulders and wrists and derives the
// shoulder-relative gate that decides when a hand is interacting.
package body

import (
	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/geom"
)

// PoseState is the most advanced body condition met in a frame.
type PoseState int

const (
	Missing PoseState = iota
	BodyVisible
	HandVisible
	InShoulderRect
)

var poseStateNames = [...]string{"MISSING", "BODY_VISIBLE", "HAND_VISIBLE", "IN_SHOULDER_RECT"}

func (s PoseState) String() string {
	if s < 0 || int(s) >= len(poseStateNames) {
		return "UNKNOWN"
	}
	return poseStateNames[s]
}

// MarshalText encodes the state by name.
func (s PoseState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Movement classifies how much the pinch points moved since the previous frame.
type Movement string

const (
	Static Movement = "STATIC"
	Moving Movement = "MOVING"
)

// RectHands names which wrists are inside the shoulder gate.
type RectHands string

const (
	NoHands   RectHands = "None"
	LeftHand  RectHands = "Left"
	RightHand RectHands = "Right"
	BothHands RectHands = "Both"
)

// Chirality returns the single in-rect hand, or "" when none or both are in.
func (r RectHands) Chirality() detector.Chirality {
	switch r {
	case LeftHand:
		return detector.Left
	case RightHand:
		return detector.Right
	default:
		return ""
	}
}

// Pose is a snapshot of a body tracker after an update. Rect pointers are nil when
// the corresponding rect was not produced this frame.
type Pose struct {
	State         PoseState `json:"state"`
	LeftShoulder  r3.Vector `json:"left_shoulder"`
	RightShoulder r3.Vector `json:"right_shoulder"`

	Gate      *geom.Rect `json:"gate,omitempty"`
	LeftRect  *geom.Rect `json:"left_rect,omitempty"`
	RightRect *geom.Rect `json:"right_rect,omitempty"`

	// PinchPoints are the per-side screen positions in pixels, Left first.
	PinchPoints [2]r3.Vector `json:"pinch_points"`
	HandsInRect int          `json:"hands_in_rect"`
	InRect      RectHands    `json:"in_rect"`
	Movement    Movement     `json:"movement"`

	HeadYaw    float64 `json:"head_yaw"`
	HasHeadYaw bool    `json:"has_head_yaw"`

	Landmarks *detector.BodyLandmarks `json:"-"`
}

// Visible reports whether a body was present this frame.
func (p Pose) Visible() bool {
	return p.State != Missing
}

// PinchPoint returns the screen pinch point on the side of c.
func (p Pose) PinchPoint(c detector.Chirality) (r3.Vector, bool) {
	slot := c.Slot()
	if slot < 0 {
		return r3.Vector{}, false
	}
	return p.PinchPoints[slot], true
}

// Wrist returns the raw wrist landmark on the side of c, if the body is present.
func (p Pose) Wrist(c detector.Chirality) (detector.Point3D, bool) {
	if p.Landmarks == nil {
		return detector.Point3D{}, false
	}
	switch c {
	case detector.Left:
		return p.Landmarks.Points[detector.LeftWrist], true
	case detector.Right:
		return p.Landmarks.Points[detector.RightWrist], true
	}
	return detector.Point3D{}, false
}
