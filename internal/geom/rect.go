package geom

import "github.com/golang/geo/r3"

// Rect is an axis-aligned rectangle in normalized image space. Y grows downward.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies strictly inside r. Points on the border are outside.
func (r Rect) Contains(p r3.Vector) bool {
	return p.X > r.X && p.X < r.X+r.Width &&
		p.Y > r.Y && p.Y < r.Y+r.Height
}

// Pad grows r by padding: 1.5x on each horizontal side and 1x vertically.
func (r Rect) Pad(padding float64) Rect {
	return Rect{
		X:      r.X - 1.5*padding,
		Y:      r.Y - padding,
		Width:  r.Width + 3*padding,
		Height: r.Height + 2*padding,
	}
}

// Offset scales r about its center by scale (vertical extent further reduced to 80%)
// and shifts it horizontally by offset.
func (r Rect) Offset(offset, scale float64) Rect {
	return Rect{
		X:      r.X + offset - r.Width*(scale-1)/2,
		Y:      r.Y - r.Height*(scale-1)/2,
		Width:  r.Width * scale,
		Height: r.Height * scale * 0.8,
	}
}

// BodyToView maps p into the [0,1] view space of rect. The x axis is mirrored so a
// wrist moving to the subject's right moves the cursor right on screen.
func BodyToView(p r3.Vector, rect Rect) r3.Vector {
	return r3.Vector{
		X: 1 - Clamp01((p.X-rect.X)/rect.Width),
		Y: Clamp01((p.Y - rect.Y) / rect.Height),
	}
}

// BodyToScreen maps p through BodyToView and scales the result to a screen of
// width x height pixels.
func BodyToScreen(p r3.Vector, rect Rect, width, height float64) r3.Vector {
	v := BodyToView(p, rect)
	return r3.Vector{X: v.X * width, Y: v.Y * height}
}
