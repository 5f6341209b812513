// Package app runs the pinchpoint pipeline: capture, detection, tracking and
// publication of each tick's event.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/logging"
	"github.com/ayusman/pinchpoint/internal/store"
	"github.com/ayusman/pinchpoint/internal/tracking"
)

// Publisher receives every tick's event.
type Publisher interface {
	Publish(v any) error
}

// Config holds configuration options for the application.
type Config struct {
	Config config.Config
	// Store persists settings and the activation history. Optional.
	Store *store.Store
	// Camera defaults to the device in Config.Camera.
	Camera capture.Camera
	// Detector defaults to MediaPipe, falling back to the mock detector.
	Detector  detector.Detector
	Publisher Publisher
	// Notifier receives wake and clear transitions. Optional.
	Notifier Notifier
	Preview  *capture.Preview
	Log      logrus.FieldLogger
}

// App is the main application that orchestrates capture and tracking.
type App struct {
	config   config.Config
	store    *store.Store
	camera   capture.Camera
	motion   *capture.MotionDetector
	gate     *capture.ActivityGate
	detector detector.Detector
	pub      Publisher
	preview  *capture.Preview
	log      logrus.FieldLogger

	mu       sync.RWMutex
	tracking config.Tracking
	tracker  *tracking.Tracker
	duty     *tracking.DutyCycle
	cache    tracking.ResultCache
	history  *history
	last     tracking.Event
	enabled  bool
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates an App. Tracking options persisted in the store take precedence over
// cfg.Config.Tracking.
func New(cfg Config) (*App, error) {
	log := cfg.Log
	if log == nil {
		log = logging.Discard()
	}

	a := &App{
		config:   cfg.Config,
		store:    cfg.Store,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		pub:      cfg.Publisher,
		preview:  cfg.Preview,
		log:      log.WithField("component", "app"),
		enabled:  true,
	}

	c := cfg.Config.Camera
	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Options{
			DeviceID: c.DeviceID,
			Width:    capture.DefaultWidth,
			Height:   capture.DefaultHeight,
			FPS:      c.IdleFPS,
		})
	}
	a.motion = capture.NewMotionDetector(c.MotionThreshold)
	a.gate = capture.NewActivityGate(c.ActiveFPS, c.IdleFPS, c.IdleTimeout)

	t := a.loadTracking(cfg.Config.Tracking)
	if a.detector == nil {
		a.detector = defaultDetector(t, a.log)
	}
	if err := a.build(t); err != nil {
		return nil, err
	}
	var repo *store.ActivationRepository
	if a.store != nil {
		repo = a.store.Activations()
	}
	a.history = newHistory(repo, cfg.Notifier, a.log)
	return a, nil
}

func (a *App) loadTracking(base config.Tracking) config.Tracking {
	if a.store == nil {
		return base
	}
	t, err := a.store.Settings().Tracking(base)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return base
	case err != nil:
		a.log.WithError(err).Warn("ignoring unreadable saved settings")
		return base
	}
	if err := t.Validate(); err != nil {
		a.log.WithError(err).Warn("ignoring invalid saved settings")
		return base
	}
	a.log.Info("loaded saved tracking settings")
	return t
}

func defaultDetector(t config.Tracking, log logrus.FieldLogger) detector.Detector {
	dc := detector.DefaultConfig()
	dc.MaxBodies = t.NumBodies
	dc.MaxHands = 2 * t.NumBodies

	mp, err := detector.NewMediaPipeDetector(dc)
	if err != nil {
		log.WithError(err).Warn("MediaPipe not available, using mock detector")
		return detector.NewMockDetector()
	}
	log.Info("using MediaPipe landmark detection")
	return mp
}

// build replaces the tracker and duty cycle with ones for t. a.mu must be held or
// the app not yet shared.
func (a *App) build(t config.Tracking) error {
	tr, err := tracking.New(t, a.log)
	if err != nil {
		return fmt.Errorf("build tracker: %w", err)
	}
	a.tracking = t
	a.tracker = tr
	a.duty = tracking.NewDutyCycle(t.DutyCycleLength, t.BodyDutyTicks, t.TrackHands)
	a.cache.Reset()
	return nil
}

// Tracking returns the tracking options in effect.
func (a *App) Tracking() config.Tracking {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracking
}

// ApplyTracking rebuilds the tracker with t. Tracked state and any open activation
// are dropped.
func (a *App) ApplyTracking(t config.Tracking) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.build(t); err != nil {
		return err
	}
	a.history.close(time.Now(), store.EndReconfigured)
	a.log.WithField("wake_mode", t.WakeMode).Info("tracking settings applied")
	return nil
}

// SetEnabled pauses or resumes tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// LastEvent returns the most recent event.
func (a *App) LastEvent() tracking.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.gate.FPS())

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	a.log.Info("capture loop started")
	return nil
}

// Stop halts the capture loop and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("closing camera")
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		a.log.WithError(err).Warn("closing detector")
	}

	a.mu.Lock()
	a.history.close(time.Now(), store.EndShutdown)
	a.mu.Unlock()

	a.log.Info("capture loop stopped")
}
