package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestChirality_Slot(t *testing.T) {
	tests := []struct {
		c    Chirality
		want int
	}{
		{Left, 0},
		{Right, 1},
		{"", -1},
		{"Both", -1},
	}

	for _, tt := range tests {
		if got := tt.c.Slot(); got != tt.want {
			t.Errorf("Chirality(%q).Slot() = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestKind(t *testing.T) {
	if !KindAll.Has(KindHands) || !KindAll.Has(KindBodies) {
		t.Error("expected KindAll to include hands and bodies")
	}
	if KindHands.Has(KindBodies) {
		t.Error("expected KindHands to exclude bodies")
	}
	if got := KindBodies.String(); got != "bodies" {
		t.Errorf("expected %q, got %q", "bodies", got)
	}
}

func TestHandLandmarks_Transforms(t *testing.T) {
	hand := OpenHandLandmarks(Right)

	t.Run("mirrored flips x and handedness", func(t *testing.T) {
		m := hand.Mirrored()
		if m.Handedness != Left {
			t.Errorf("expected Left, got %s", m.Handedness)
		}
		for i := range hand.Points {
			if math.Abs(m.Points[i].X-(1-hand.Points[i].X)) > epsilon {
				t.Fatalf("point %d: expected x %f, got %f", i, 1-hand.Points[i].X, m.Points[i].X)
			}
		}
		if back := m.Mirrored(); back.Handedness != Right {
			t.Errorf("expected round trip to Right, got %s", back.Handedness)
		}
	})

	t.Run("scaled multiplies coordinates", func(t *testing.T) {
		s := hand.Scaled(3)
		if math.Abs(s.Points[IndexTip].Y-hand.Points[IndexTip].Y*3) > epsilon {
			t.Errorf("expected y %f, got %f", hand.Points[IndexTip].Y*3, s.Points[IndexTip].Y)
		}
		if hand.Points[IndexTip].Y == s.Points[IndexTip].Y {
			t.Error("expected the original to be left untouched")
		}
	})

	t.Run("translated shifts image plane only", func(t *testing.T) {
		moved := hand.Translated(0.1, -0.2)
		if math.Abs(moved.Points[Wrist].X-0.6) > epsilon || math.Abs(moved.Points[Wrist].Y-0.6) > epsilon {
			t.Errorf("expected wrist at (0.6,0.6), got (%f,%f)", moved.Points[Wrist].X, moved.Points[Wrist].Y)
		}
	})
}

func TestFixtures_PalmFacesCamera(t *testing.T) {
	fixtures := map[string]HandLandmarks{
		"open":     OpenHandLandmarks(Right),
		"pointing": PointingLandmarks(Right),
		"fist":     FistLandmarks(Right),
		"pinch":    PinchLandmarks(Right),
	}

	for name, lm := range fixtures {
		t.Run(name, func(t *testing.T) {
			width := math.Abs(lm.Points[PinkyMCP].X - lm.Points[IndexMCP].X)
			height := math.Abs(lm.Points[Wrist].Y - lm.Points[IndexMCP].Y)
			if height <= width {
				t.Errorf("expected palm taller than wide, got height %f width %f", height, width)
			}
			if lm.Points[IndexMCP].X <= lm.Points[PinkyMCP].X {
				t.Error("expected index knuckle right of pinky knuckle for a right hand")
			}
		})
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("filters by kind", func(t *testing.T) {
		m := NewMockDetector()
		m.SetHands([]HandLandmarks{OpenHandLandmarks(Right)})
		m.SetBodies([]BodyLandmarks{StandingBody(0.5, true, true)})

		res, err := m.Detect(nil, KindHands)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Hands) != 1 || len(res.Bodies) != 0 {
			t.Errorf("expected 1 hand and 0 bodies, got %d and %d", len(res.Hands), len(res.Bodies))
		}

		res, _ = m.Detect(nil, KindBodies)
		if len(res.Hands) != 0 || len(res.Bodies) != 1 {
			t.Errorf("expected 0 hands and 1 body, got %d and %d", len(res.Hands), len(res.Bodies))
		}

		calls := m.Calls()
		if len(calls) != 2 || calls[0] != KindHands || calls[1] != KindBodies {
			t.Errorf("unexpected call log %v", calls)
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		m := NewMockDetector()
		want := errors.New("provider offline")
		m.SetError(want)

		if _, err := m.Detect(nil, KindAll); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes hands and bodies", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[` + repeatPoint(NumLandmarks) + `],"handedness":"Left","score":0.9}],` +
			`"bodies":[{"points":[` + repeatPoint(NumBodyLandmarks) + `]}]}` + "\n")

		res, err := parseResponse(line, KindAll)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Hands) != 1 || res.Hands[0].Handedness != Left {
			t.Fatalf("expected one Left hand, got %+v", res.Hands)
		}
		if res.Hands[0].Points[PinkyTip].X != 0.5 {
			t.Errorf("expected x 0.5, got %f", res.Hands[0].Points[PinkyTip].X)
		}
		if len(res.Bodies) != 1 || res.Bodies[0].Points[RightWrist].Visibility != 0.9 {
			t.Errorf("expected one body with visibility 0.9, got %+v", res.Bodies)
		}
	})

	t.Run("skips truncated landmark sets", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[` + repeatPoint(5) + `],"handedness":"Right"}]}`)
		res, err := parseResponse(line, KindHands)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Hands) != 0 {
			t.Errorf("expected truncated hand to be dropped, got %d", len(res.Hands))
		}
	})

	t.Run("reports service errors", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model missing"}`), KindHands); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{`), KindHands); err == nil {
			t.Error("expected error")
		}
	})
}

func repeatPoint(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += `{"x":0.5,"y":0.5,"z":0,"visibility":0.9}`
	}
	return s
}
