package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	bodies []BodyLandmarks
	err    error
	calls  []Kind
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetBodies sets the body poses that will be returned by Detect.
func (m *MockDetector) SetBodies(bodies []BodyLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = bodies
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the kinds requested so far, in order.
func (m *MockDetector) Calls() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Kind(nil), m.calls...)
}

// Detect returns the pre-configured landmarks for the requested kind, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat, kind Kind) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, kind)
	if m.err != nil {
		return nil, m.err
	}

	result := &Result{Kind: kind}
	if kind.Has(KindHands) {
		result.Hands = m.hands
	}
	if kind.Has(KindBodies) {
		result.Bodies = m.bodies
	}
	return result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Right-hand fixture geometry. Knuckle span is |IndexMCP-PinkyMCP| ~= 0.1217, palm
// height 0.18, all depths zero, so the palm faces the camera.
var (
	fixtureWrist = Point3D{X: 0.50, Y: 0.80}
	fixtureMCP   = [5]Point3D{
		{X: 0.56, Y: 0.76}, // thumb CMC
		{X: 0.55, Y: 0.62},
		{X: 0.51, Y: 0.61},
		{X: 0.47, Y: 0.62},
		{X: 0.43, Y: 0.64},
	}
)

func buildHand(c Chirality, extended [5]bool) HandLandmarks {
	lm := HandLandmarks{Handedness: Right, Score: 0.95}
	lm.Points[Wrist] = fixtureWrist

	if extended[0] {
		lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
		lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
		lm.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.68}
		lm.Points[ThumbTip] = Point3D{X: 0.67, Y: 0.65}
	} else {
		lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
		lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.73}
		lm.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.72}
		lm.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.74}
	}

	for f := 1; f < 5; f++ {
		base := IndexMCP + (f-1)*4
		mcp := fixtureMCP[f]
		lm.Points[base] = mcp
		if extended[f] {
			lm.Points[base+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.10}
			lm.Points[base+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.16}
			lm.Points[base+3] = Point3D{X: mcp.X, Y: mcp.Y - 0.21}
		} else {
			lm.Points[base+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.06}
			lm.Points[base+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.03}
			lm.Points[base+3] = Point3D{X: mcp.X, Y: mcp.Y - 0.02}
		}
	}

	if c == Left {
		return lm.Mirrored()
	}
	return lm
}

// OpenHandLandmarks returns a palm-forward hand with all five fingers extended.
func OpenHandLandmarks(c Chirality) HandLandmarks {
	return buildHand(c, [5]bool{true, true, true, true, true})
}

// PointingLandmarks returns a palm-forward hand with only the index finger extended.
func PointingLandmarks(c Chirality) HandLandmarks {
	return buildHand(c, [5]bool{false, true, false, false, false})
}

// FistLandmarks returns a palm-forward hand with every finger curled and the thumb
// tucked away from the index tip.
func FistLandmarks(c Chirality) HandLandmarks {
	return buildHand(c, [5]bool{})
}

// FingerCountLandmarks returns a palm-forward hand with the first n non-thumb fingers
// extended, plus the thumb when n is 5.
func FingerCountLandmarks(c Chirality, n int) HandLandmarks {
	var extended [5]bool
	for f := 1; f <= n && f < 5; f++ {
		extended[f] = true
	}
	if n >= 5 {
		extended[0] = true
	}
	return buildHand(c, extended)
}

// PinchLandmarks returns a palm-forward hand with the thumb and index tips touching.
func PinchLandmarks(c Chirality) HandLandmarks {
	lm := buildHand(Right, [5]bool{})

	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
	lm.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.64}
	lm.Points[ThumbTip] = Point3D{X: 0.61, Y: 0.57}

	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.54}
	lm.Points[IndexDIP] = Point3D{X: 0.59, Y: 0.55}
	lm.Points[IndexTip] = Point3D{X: 0.60, Y: 0.565}

	if c == Left {
		return lm.Mirrored()
	}
	return lm
}

// StandingBody returns a body facing the camera with its shoulders centred on cx.
// Each wrist is raised inside the shoulder gate when the matching flag is set and
// lowered by the hips otherwise. Both wrists are visible.
func StandingBody(cx float64, leftIn, rightIn bool) BodyLandmarks {
	var b BodyLandmarks

	b.Points[Nose] = Point3D{X: cx, Y: 0.30, Visibility: 0.99}
	b.Points[LeftEye] = Point3D{X: cx + 0.03, Y: 0.28, Visibility: 0.99}
	b.Points[RightEye] = Point3D{X: cx - 0.03, Y: 0.28, Visibility: 0.99}
	b.Points[LeftShoulder] = Point3D{X: cx + 0.10, Y: 0.50, Visibility: 0.99}
	b.Points[RightShoulder] = Point3D{X: cx - 0.10, Y: 0.50, Visibility: 0.99}

	if leftIn {
		b.Points[LeftWrist] = Point3D{X: cx + 0.05, Y: 0.55, Visibility: 0.95}
	} else {
		b.Points[LeftWrist] = Point3D{X: cx + 0.15, Y: 0.90, Visibility: 0.95}
	}
	if rightIn {
		b.Points[RightWrist] = Point3D{X: cx - 0.05, Y: 0.55, Visibility: 0.95}
	} else {
		b.Points[RightWrist] = Point3D{X: cx - 0.15, Y: 0.90, Visibility: 0.95}
	}

	return b
}
