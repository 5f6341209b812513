package app

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchpoint/internal/arbiter"
	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/hook"
	"github.com/ayusman/pinchpoint/internal/store"
	"github.com/ayusman/pinchpoint/internal/tracking"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []tracking.Event
}

func (r *recorder) Publish(v any) error {
	ev, ok := v.(tracking.Event)
	if !ok {
		return errors.New("unexpected payload")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type notifications struct {
	mu   sync.Mutex
	reqs []hook.Request
}

func (n *notifications) Notify(req hook.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
}

func (n *notifications) kinds() []hook.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]hook.Kind, len(n.reqs))
	for i, r := range n.reqs {
		out[i] = r.Event
	}
	return out
}

type fixture struct {
	app      *App
	store    *store.Store
	detector *detector.MockDetector
	camera   *capture.MockCamera
	pub      *recorder
	notes    *notifications
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })

	f := &fixture{
		store:    s,
		detector: detector.NewMockDetector(),
		camera:   capture.NewMockCamera([]*gocv.Mat{&mat}, true),
		pub:      &recorder{},
		notes:    &notifications{},
	}
	f.app, err = New(Config{
		Config:    config.Default(),
		Store:     s,
		Camera:    f.camera,
		Detector:  f.detector,
		Publisher: f.pub,
		Notifier:  f.notes,
		Preview:   &capture.Preview{},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := f.camera.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return f
}

func handAt(c detector.Chirality, x float64) detector.HandLandmarks {
	lm := detector.OpenHandLandmarks(c)
	return lm.Translated(x-lm.Points[detector.Wrist].X, 0)
}

func (f *fixture) raise() {
	f.detector.SetBodies([]detector.BodyLandmarks{detector.StandingBody(0.5, true, true)})
	f.detector.SetHands([]detector.HandLandmarks{handAt(detector.Left, 0.55), handAt(detector.Right, 0.45)})
}

func (f *fixture) lower() {
	b := detector.StandingBody(0.5, false, false)
	b.Points[detector.LeftWrist].Visibility = 0.1
	b.Points[detector.RightWrist].Visibility = 0.1
	f.detector.SetBodies([]detector.BodyLandmarks{b})
	f.detector.SetHands(nil)
}

// stepUntil steps every 50ms from *ms until cond holds or limit is reached.
func (f *fixture) stepUntil(t *testing.T, ms *int, limit int, cond func(tracking.Event) bool) bool {
	t.Helper()
	for ; *ms <= limit; *ms += 50 {
		ev, err := f.app.Step(t0.Add(time.Duration(*ms) * time.Millisecond))
		if err != nil {
			t.Fatalf("Step failed at %dms: %v", *ms, err)
		}
		if cond(ev) {
			return true
		}
	}
	return false
}

func TestNew_Defaults(t *testing.T) {
	f := newFixture(t)

	if got := f.app.Tracking(); got != config.DefaultTracking() {
		t.Errorf("expected default tracking, got %+v", got)
	}
	if !f.app.IsEnabled() {
		t.Error("expected a new app to be enabled")
	}
}

func TestNew_LoadsSavedTracking(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	saved := config.DefaultTracking()
	saved.WakeMode = arbiter.Fist
	saved.NumBodies = 2
	if err := s.Settings().SaveTracking(saved); err != nil {
		t.Fatalf("SaveTracking failed: %v", err)
	}

	a, err := New(Config{
		Config:   config.Default(),
		Store:    s,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := a.Tracking(); got != saved {
		t.Errorf("expected saved tracking, got %+v", got)
	}
}

func TestStep_DutyCycle(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 6; i++ {
		if _, err := f.app.Step(t0.Add(time.Duration(i) * 50 * time.Millisecond)); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	want := []detector.Kind{
		detector.KindBodies, detector.KindHands, detector.KindHands,
		detector.KindBodies, detector.KindHands, detector.KindHands,
	}
	got := f.detector.Calls()
	if len(got) != len(want) {
		t.Fatalf("expected %d detections, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tick %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if f.pub.count() != 6 {
		t.Errorf("expected 6 published events, got %d", f.pub.count())
	}
}

func TestStep_DetectionErrorKeepsTicking(t *testing.T) {
	f := newFixture(t)
	f.detector.SetError(errors.New("service crashed"))

	ev, err := f.app.Step(t0)
	if err != nil {
		t.Fatalf("expected the tick to survive a detection error, got %v", err)
	}
	if len(ev.People) != 1 || ev.Awake != -1 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestStep_CameraError(t *testing.T) {
	f := newFixture(t)
	f.camera.Close()

	if _, err := f.app.Step(t0); !errors.Is(err, capture.ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
	if f.pub.count() != 0 {
		t.Error("expected nothing published without a frame")
	}
}

func TestActivationHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline test in short mode")
	}

	f := newFixture(t)
	f.raise()

	ms := 0
	if !f.stepUntil(t, &ms, 2000, func(ev tracking.Event) bool { return ev.Awake == 0 }) {
		t.Fatal("expected pete to wake with both hands raised")
	}

	list, err := f.store.Activations().List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one activation, got %d", len(list))
	}
	if list[0].Person != "pete" || list[0].WakeMode != arbiter.TwoHandsIn || list[0].EndedAt != nil {
		t.Errorf("unexpected open activation %+v", list[0])
	}

	f.lower()
	if !f.stepUntil(t, &ms, 10000, func(ev tracking.Event) bool { return ev.NoActivePerson }) {
		t.Fatal("expected the awake person to be cleared")
	}

	got, err := f.store.Activations().GetByID(list[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.EndedAt == nil || got.EndReason != store.EndTimeout {
		t.Errorf("expected the activation ended by timeout, got %+v", got)
	}

	if last := f.app.LastEvent(); !last.NoActivePerson {
		t.Error("expected LastEvent to be the clearing event")
	}

	kinds := f.notes.kinds()
	if len(kinds) != 2 || kinds[0] != hook.KindWake || kinds[1] != hook.KindClear {
		t.Fatalf("expected wake then clear notifications, got %v", kinds)
	}
	if r := f.notes.reqs[1]; r.Person != "pete" || r.Reason != store.EndTimeout || r.ActivationID != list[0].ID {
		t.Errorf("unexpected clear notification %+v", r)
	}
}

func TestApplyTracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline test in short mode")
	}

	f := newFixture(t)
	f.raise()

	ms := 0
	if !f.stepUntil(t, &ms, 2000, func(ev tracking.Event) bool { return ev.Awake == 0 }) {
		t.Fatal("expected pete to wake")
	}

	next := config.DefaultTracking()
	next.NumBodies = 2
	if err := f.app.ApplyTracking(next); err != nil {
		t.Fatalf("ApplyTracking failed: %v", err)
	}
	if f.app.Tracking() != next {
		t.Error("expected the new tracking options in effect")
	}

	list, err := f.store.Activations().List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].EndReason != store.EndReconfigured {
		t.Errorf("expected the open activation ended as reconfigured, got %+v", list)
	}

	ev, err := f.app.Step(t0.Add(time.Duration(ms+50) * time.Millisecond))
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if len(ev.People) != 2 || ev.Awake != -1 {
		t.Errorf("expected two fresh people nobody awake, got %d people awake %d", len(ev.People), ev.Awake)
	}

	bad := next
	bad.NumBodies = 5
	if err := f.app.ApplyTracking(bad); err == nil {
		t.Error("expected invalid tracking to be rejected")
	}
	if f.app.Tracking() != next {
		t.Error("expected a rejected update to leave tracking unchanged")
	}
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	f.camera.Close()

	if err := f.app.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := f.app.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.pub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if f.pub.count() == 0 {
		t.Fatal("expected the loop to publish events")
	}

	f.app.SetEnabled(false)
	if f.app.IsEnabled() {
		t.Error("expected the app disabled")
	}

	f.app.Stop()
	if f.camera.IsOpen() {
		t.Error("expected Stop to close the camera")
	}
}
