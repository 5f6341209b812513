package detector

import "gocv.io/x/gocv"

// Kind selects which landmark models a detection call runs.
type Kind uint8

const (
	KindHands Kind = 1 << iota
	KindBodies

	KindAll = KindHands | KindBodies
)

// Has reports whether k includes other.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

// String returns a short label for logging.
func (k Kind) String() string {
	switch k {
	case KindHands:
		return "hands"
	case KindBodies:
		return "bodies"
	case KindAll:
		return "all"
	default:
		return "none"
	}
}

// Result holds the landmarks produced by one detection call. Only the models requested
// by Kind are populated.
type Result struct {
	Kind   Kind            `json:"-"`
	Hands  []HandLandmarks `json:"hands"`
	Bodies []BodyLandmarks `json:"bodies"`
}

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame with the models selected by kind.
	// Returns empty slices if nothing is detected.
	Detect(frame *gocv.Mat, kind Kind) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 4, two per person).
	MaxHands int

	// MaxBodies is the maximum number of body poses to detect (default: 2).
	MaxBodies int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        4,
		MaxBodies:       2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
