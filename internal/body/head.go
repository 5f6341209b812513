package body

import (
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/geom"
)

// HeadYaw estimates how far the head is turned from the camera, in degrees. Facing the
// camera gives 0. The angle is taken at the midpoint between the eyes, between the ray to
// the left eye and the ray to the nose. ok is false when the face points coincide.
func HeadYaw(points *detector.BodyLandmarks) (yaw float64, ok bool) {
	if points == nil {
		return 0, false
	}
	nose := points.Points[detector.Nose].Vec()
	left := points.Points[detector.LeftEye].Vec()
	right := points.Points[detector.RightEye].Vec()

	deg, ok := geom.AngleBetween(geom.Midpoint(right, left), left, nose)
	if !ok {
		return 0, false
	}
	return deg - 90, true
}
