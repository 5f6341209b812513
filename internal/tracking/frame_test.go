package tracking

import (
	"testing"

	"github.com/ayusman/pinchpoint/internal/detector"
)

func TestResultCache(t *testing.T) {
	var c ResultCache

	hands := []detector.HandLandmarks{detector.OpenHandLandmarks(detector.Right)}
	bodies := []detector.BodyLandmarks{detector.StandingBody(0.5, true, true)}

	c.Store(&detector.Result{Kind: detector.KindBodies, Bodies: bodies})
	f := c.Frame(at(0), screenW, screenH)
	if f.HandsFresh || len(f.Hands) != 0 || len(f.Bodies) != 1 {
		t.Fatalf("expected bodies only, got %+v", f)
	}

	c.Store(&detector.Result{Kind: detector.KindHands, Hands: hands})
	f = c.Frame(at(33), screenW, screenH)
	if !f.HandsFresh || len(f.Hands) != 1 || len(f.Bodies) != 1 {
		t.Fatalf("expected fresh hands and recycled bodies, got %+v", f)
	}
	if f.ScreenWidth != screenW || !f.Timestamp.Equal(at(33)) {
		t.Errorf("expected frame metadata to be set, got %+v", f)
	}

	f = c.Frame(at(66), screenW, screenH)
	if f.HandsFresh || len(f.Hands) != 1 {
		t.Errorf("expected recycled hands to be stale, got fresh=%v with %d hands", f.HandsFresh, len(f.Hands))
	}

	c.Store(&detector.Result{Kind: detector.KindBodies})
	if f = c.Frame(at(99), screenW, screenH); len(f.Bodies) != 0 || len(f.Hands) != 1 {
		t.Errorf("expected an empty body result to replace bodies only, got %+v", f)
	}

	c.Store(nil)
	c.Reset()
	if f = c.Frame(at(132), screenW, screenH); len(f.Hands) != 0 || len(f.Bodies) != 0 {
		t.Errorf("expected reset to drop everything, got %+v", f)
	}
}

func TestDutyCycle(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		bodyTicks  int
		trackHands bool
		want       []detector.Kind
	}{
		{
			name: "default", length: 3, bodyTicks: 1, trackHands: true,
			want: []detector.Kind{detector.KindBodies, detector.KindHands, detector.KindHands, detector.KindBodies},
		},
		{
			name: "hands off", length: 3, bodyTicks: 1, trackHands: false,
			want: []detector.Kind{detector.KindBodies, detector.KindBodies, detector.KindBodies},
		},
		{
			name: "no body ticks", length: 2, bodyTicks: 0, trackHands: true,
			want: []detector.Kind{detector.KindHands, detector.KindHands},
		},
		{
			name: "zero length", length: 0, bodyTicks: 1, trackHands: true,
			want: []detector.Kind{detector.KindBodies, detector.KindBodies},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDutyCycle(tt.length, tt.bodyTicks, tt.trackHands)
			for i, want := range tt.want {
				if got := d.Next(); got != want {
					t.Errorf("tick %d: expected %s, got %s", i, want, got)
				}
			}
		})
	}
}
