package geom

import "github.com/golang/geo/r3"

// Deadzone suppresses movement smaller than radius. When next lies within radius of
// prev, prev is returned unchanged; otherwise the result trails next by exactly radius
// along the direction of travel.
func Deadzone(prev, next r3.Vector, radius float64) r3.Vector {
	delta := next.Sub(prev)
	dist := delta.Norm()
	if dist <= radius {
		return prev
	}
	return next.Sub(delta.Mul(radius / dist))
}

// Deadzone2D is Deadzone restricted to the x/y plane. The returned z is always 0.
func Deadzone2D(prev, next r3.Vector, radius float64) r3.Vector {
	return Deadzone(Flat(prev), Flat(next), radius)
}

// Smooth moves last towards raw, keeping a fraction alpha of the previous value.
func Smooth(last, raw r3.Vector, alpha float64) r3.Vector {
	return last.Add(raw.Sub(last).Mul(1 - alpha))
}
