package arbiter

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ayusman/pinchpoint/internal/detector"
)

func updateBodies(people []*Person, bodies ...*detector.BodyLandmarks) {
	for i, p := range people {
		p.Body.Update(bodies[i], screenW, screenH)
	}
}

// handAt returns an open hand whose wrist sits at x.
func handAt(c detector.Chirality, x float64) detector.HandLandmarks {
	lm := detector.OpenHandLandmarks(c)
	return lm.Translated(x-lm.Points[detector.Wrist].X, 0)
}

func TestAssociate_NearestBody(t *testing.T) {
	people := newPeople(2)
	updateBodies(people, standing(0.3, true, true), standing(0.7, true, true))

	hands := []detector.HandLandmarks{
		handAt(detector.Right, 0.3),
		handAt(detector.Left, 0.72),
		handAt(detector.Left, 0.98),
	}
	got := Associate(people, hands, DefaultAssociationDistance, nil)

	if len(got) != 2 {
		t.Fatalf("expected one entry per person, got %d", len(got))
	}
	if len(got[0]) != 1 || got[0][0].Handedness != detector.Right {
		t.Errorf("expected person 0 to get the right hand, got %v", got[0])
	}
	if len(got[1]) != 1 || got[1][0].Handedness != detector.Left {
		t.Errorf("expected person 1 to get one left hand, got %d hands", len(got[1]))
	}
	if got[1][0].Points[detector.Wrist].X > 0.8 {
		t.Error("expected the distant hand to be left unassigned")
	}
}

func TestAssociate_OrdersLeftFirst(t *testing.T) {
	people := newPeople(1)
	updateBodies(people, standing(0.5, true, true))

	got := Associate(people, []detector.HandLandmarks{
		handAt(detector.Right, 0.45),
		handAt(detector.Left, 0.55),
	}, DefaultAssociationDistance, nil)

	if len(got[0]) != 2 || got[0][0].Handedness != detector.Left || got[0][1].Handedness != detector.Right {
		t.Errorf("expected Left then Right, got %v", got[0])
	}
}

func TestAssociate_MissingBodyGetsNothing(t *testing.T) {
	people := newPeople(2)
	updateBodies(people, standing(0.5, true, true), nil)

	got := Associate(people, []detector.HandLandmarks{handAt(detector.Left, 0.55)}, DefaultAssociationDistance, nil)
	if len(got[0]) != 1 || len(got[1]) != 0 {
		t.Errorf("expected the hand on the visible body only, got %d/%d", len(got[0]), len(got[1]))
	}
}

func TestAssociate_DuplicateChiralityClosestWins(t *testing.T) {
	people := newPeople(1)
	updateBodies(people, standing(0.5, true, true))
	logger, hook := test.NewNullLogger()

	got := Associate(people, []detector.HandLandmarks{
		handAt(detector.Right, 0.62),
		handAt(detector.Right, 0.56),
	}, DefaultAssociationDistance, logger)

	if len(got[0]) != 1 {
		t.Fatalf("expected a single right hand, got %d", len(got[0]))
	}
	if x := got[0][0].Points[detector.Wrist].X; x > 0.57 {
		t.Errorf("expected the closer hand to win, got wrist x %f", x)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %v", entry)
	}
	if entry.Data["person"] != "pete" {
		t.Errorf("expected person field pete, got %v", entry.Data["person"])
	}
}

func TestAssociate_NilLoggerDiscardsWarnings(t *testing.T) {
	people := newPeople(1)
	updateBodies(people, standing(0.5, true, true))

	got := Associate(people, []detector.HandLandmarks{
		handAt(detector.Left, 0.55),
		handAt(detector.Left, 0.58),
	}, DefaultAssociationDistance, nil)

	if len(got[0]) != 1 {
		t.Errorf("expected the duplicate dropped without a logger, got %d hands", len(got[0]))
	}
	if a := New(DefaultConfig(), nil); a.Awake() != -1 {
		t.Errorf("expected a nil-logger arbiter with nobody awake, got %d", a.Awake())
	}
}
