package hand

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/ayusman/pinchpoint/internal/geom"
)

// Pinch filter defaults.
const (
	// PinchCacheSize is the number of timestamped positions kept for extrapolation.
	PinchCacheSize = 3
	// DefaultPinchSmoothing is the fraction of the previous position kept per fresh frame.
	DefaultPinchSmoothing = 0.2
	// DefaultPinchDeadzone is the radius, in normalized image units, of jitter ignored
	// in the reported pinch position.
	DefaultPinchDeadzone = 0.01
)

type pinchSample struct {
	at  time.Time
	pos r3.Vector
}

// PinchFilter smooths pinch positions on fresh frames and extrapolates them on
// recycled ones. Its cache is a fixed ring of PinchCacheSize samples.
type PinchFilter struct {
	alpha float64
	ring  [PinchCacheSize]pinchSample
	head  int // index of the oldest sample once full
	n     int
}

// NewPinchFilter returns a filter that keeps alpha of the previous value per frame.
func NewPinchFilter(alpha float64) *PinchFilter {
	return &PinchFilter{alpha: alpha}
}

// Len returns the number of cached samples.
func (f *PinchFilter) Len() int {
	return f.n
}

// Reset empties the cache.
func (f *PinchFilter) Reset() {
	f.ring = [PinchCacheSize]pinchSample{}
	f.head = 0
	f.n = 0
}

// Filter returns the filtered position for raw at time now. Fresh frames are
// smoothed against the newest cached sample and cached; recycled frames are
// extrapolated from the cache without modifying it.
func (f *PinchFilter) Filter(raw r3.Vector, fresh bool, now time.Time) r3.Vector {
	if fresh {
		pos := raw
		if f.n > 0 {
			pos = geom.Smooth(f.newest().pos, raw, f.alpha)
		}
		f.push(pinchSample{at: now, pos: pos})
		return pos
	}

	switch {
	case f.n == 0:
		return raw
	case f.n < PinchCacheSize:
		return f.newest().pos
	default:
		return f.extrapolate(now)
	}
}

// extrapolate projects the newest sample forward along the cache's average velocity,
// never further ahead than the span the cache covers.
func (f *PinchFilter) extrapolate(now time.Time) r3.Vector {
	oldest, newest := f.oldest(), f.newest()

	span := newest.at.Sub(oldest.at)
	ahead := now.Sub(newest.at)
	if ahead > span {
		ahead = span
	}
	if span <= 0 || ahead < 0 {
		return newest.pos
	}

	velocity := newest.pos.Sub(oldest.pos).Mul(1 / span.Seconds())
	pos := newest.pos.Add(velocity.Mul(ahead.Seconds()))
	if !geom.IsFinite(pos) {
		return newest.pos
	}
	return pos
}

func (f *PinchFilter) push(s pinchSample) {
	if f.n < PinchCacheSize {
		f.ring[(f.head+f.n)%PinchCacheSize] = s
		f.n++
		return
	}
	f.ring[f.head] = s
	f.head = (f.head + 1) % PinchCacheSize
}

func (f *PinchFilter) oldest() pinchSample {
	return f.ring[f.head]
}

func (f *PinchFilter) newest() pinchSample {
	return f.ring[(f.head+f.n-1)%PinchCacheSize]
}

// Samples returns the cached positions oldest first.
func (f *PinchFilter) Samples() []r3.Vector {
	out := make([]r3.Vector, f.n)
	for i := 0; i < f.n; i++ {
		out[i] = f.ring[(f.head+i)%PinchCacheSize].pos
	}
	return out
}
