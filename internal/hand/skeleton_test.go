package hand

import (
	"math"
	"testing"

	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/geom"
)

const epsilon = 1e-9

func TestNewSkeleton_AnchorAndScale(t *testing.T) {
	lm := detector.OpenHandLandmarks(detector.Right)
	s := NewSkeleton(lm)

	span := lm.Points[detector.IndexMCP].Vec().Distance(lm.Points[detector.PinkyMCP].Vec())
	if math.Abs(s.Scale-KnuckleWidth/span) > epsilon {
		t.Errorf("expected scale %f, got %f", KnuckleWidth/span, s.Scale)
	}

	if math.Abs(s.Anchor.X-0.61) > epsilon || math.Abs(s.Anchor.Y-0.61) > epsilon {
		t.Errorf("expected anchor (0.61,0.61), got %v", s.Anchor)
	}

	t.Run("knuckle span maps to constant width", func(t *testing.T) {
		index := s.IndexFinger().Metacarpal()
		pinky := s.Fingers[Pinky].Metacarpal()

		if d := index.Distance(pinky); math.Abs(d-KnuckleWidth) > 1e-6 {
			t.Errorf("expected knuckle span %f, got %f", KnuckleWidth, d)
		}
		if n := index.Norm(); math.Abs(n-KnuckleWidth/2) > 1e-6 {
			t.Errorf("expected index knuckle %f from anchor, got %f", KnuckleWidth/2, n)
		}
	})

	t.Run("joints are ordered base to tip", func(t *testing.T) {
		f := s.IndexFinger()
		if !(f.Metacarpal().Y > f.Proximal().Y && f.Proximal().Y > f.Intermediate().Y && f.Intermediate().Y > f.Distal().Y) {
			t.Errorf("expected extended index joints to rise toward the tip, got %v", f.Joints)
		}
	})

	t.Run("keeps chirality and raw landmarks", func(t *testing.T) {
		if s.Chirality != detector.Right {
			t.Errorf("expected Right, got %s", s.Chirality)
		}
		if s.Landmarks().Points != lm.Points {
			t.Error("expected raw landmarks to be preserved")
		}
	})
}

func TestNewSkeleton_TranslationAndScaleInvariant(t *testing.T) {
	base := NewSkeleton(detector.OpenHandLandmarks(detector.Right))
	moved := NewSkeleton(detector.OpenHandLandmarks(detector.Right).Translated(0.2, -0.1).Scaled(2.5))

	for f := Thumb; f < NumFingers; f++ {
		for j := 0; j < 4; j++ {
			a, b := base.Fingers[f].Joints[j], moved.Fingers[f].Joints[j]
			if a.Distance(b) > 1e-6 {
				t.Errorf("%s joint %d: expected %v, got %v", f, j, a, b)
			}
		}
	}
}

func TestNewSkeleton_DegenerateSpan(t *testing.T) {
	var lm detector.HandLandmarks
	lm.Handedness = detector.Left

	s := NewSkeleton(lm)
	if s.Scale != MaxScale {
		t.Errorf("expected scale clamped to %f, got %f", MaxScale, s.Scale)
	}

	for f := Thumb; f < NumFingers; f++ {
		for _, j := range s.Fingers[f].Joints {
			if !geom.IsFinite(j) {
				t.Fatalf("expected finite joints, got %v", j)
			}
		}
	}

	if Classify(s) != Visible {
		t.Errorf("expected collapsed hand to classify as Visible, got %s", Classify(s))
	}
}

func TestNewSkeletonAt_UsesGivenAnchor(t *testing.T) {
	lm := detector.OpenHandLandmarks(detector.Right)
	anchor := lm.Points[detector.Wrist].Vec()

	s := NewSkeletonAt(lm, anchor, 1)
	got := s.IndexFinger().Distal()
	want := lm.Points[detector.IndexTip].Vec().Sub(anchor)
	if got.Distance(want) > epsilon {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFingerIndex_String(t *testing.T) {
	if Middle.String() != "middle" {
		t.Errorf("expected middle, got %s", Middle)
	}
	if FingerIndex(9).String() != "unknown" {
		t.Errorf("expected unknown, got %s", FingerIndex(9))
	}
}
