// Package geom provides the vector, rectangle and filtering helpers shared by the
// hand and body trackers.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Lerp linearly interpolates from a towards b by t.
func Lerp(a, b r3.Vector, t float64) r3.Vector {
	return a.Add(b.Sub(a).Mul(t))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Mul(0.5)
}

// Flat drops the z component.
func Flat(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y}
}

// IsFinite reports whether every component of v is neither NaN nor infinite.
func IsFinite(v r3.Vector) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// AngleBetween returns the angle in degrees at origin between the rays towards a and b,
// measured in the image plane. ok is false when either ray has zero length.
func AngleBetween(origin, a, b r3.Vector) (deg float64, ok bool) {
	v1 := Flat(a.Sub(origin))
	v2 := Flat(b.Sub(origin))

	n := v1.Norm() * v2.Norm()
	if n < 1e-12 {
		return 0, false
	}

	cos := Clamp(v1.Dot(v2)/n, -1, 1)
	return math.Acos(cos) * 180 / math.Pi, true
}
