package arbiter

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/body"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/logging"
)

// DefaultAssociationDistance is the largest horizontal distance, in normalized image
// units, between a hand's wrist and a body wrist for the hand to belong to that body.
const DefaultAssociationDistance = 0.2

type match struct {
	hand     detector.HandLandmarks
	distance float64
}

// Associate distributes detected hands over people using each body's current wrist
// positions, so bodies must already be updated for this frame. Each hand goes to the
// nearest visible body within maxDistance. A person receives at most one hand per
// chirality; when two compete, the closer one is kept and a warning is logged.
//
// The result has one entry per person, Left before Right.
func Associate(people []*Person, hands []detector.HandLandmarks, maxDistance float64, log logrus.FieldLogger) [][]detector.HandLandmarks {
	if log == nil {
		log = logging.Discard()
	}
	poses := make([]body.Pose, len(people))
	for i, p := range people {
		poses[i] = p.Body.Pose()
	}

	slots := make([][2]*match, len(people))
	for _, h := range hands {
		slot := h.Handedness.Slot()
		if slot < 0 {
			continue
		}

		best, bestDist := -1, math.Inf(1)
		for i, pose := range poses {
			d, ok := wristDistance(pose, h)
			if ok && d < maxDistance && d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			continue
		}

		current := slots[best][slot]
		if current != nil {
			log.WithFields(logrus.Fields{
				"person":    people[best].Name,
				"chirality": h.Handedness,
			}).Warn("more than one hand of the same chirality, keeping the closest")
			if current.distance <= bestDist {
				continue
			}
		}
		slots[best][slot] = &match{hand: h, distance: bestDist}
	}

	out := make([][]detector.HandLandmarks, len(people))
	for i, s := range slots {
		for _, m := range s {
			if m != nil {
				out[i] = append(out[i], m.hand)
			}
		}
	}
	return out
}

// wristDistance is the horizontal distance from the hand's wrist to the closer of the
// body's two wrists.
func wristDistance(pose body.Pose, h detector.HandLandmarks) (float64, bool) {
	if !pose.Visible() {
		return 0, false
	}
	left, _ := pose.Wrist(detector.Left)
	right, _ := pose.Wrist(detector.Right)
	x := h.Points[detector.Wrist].X
	return math.Min(math.Abs(left.X-x), math.Abs(right.X-x)), true
}
