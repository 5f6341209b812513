package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/tracking"
)

// run reads frames until stopCh closes. The frame interval follows the activity
// gate: active FPS while the scene moves, idle FPS after it has been still.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := a.gate.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if _, err := a.Step(now); err != nil {
				a.log.WithError(err).Warn("reading frame")
				continue
			}
			if next := a.gate.Interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// Step runs one tick at now: read and gate a frame, run this tick's detection,
// track and publish. A detection failure is logged and the tick proceeds on the
// cached results.
func (a *App) Step(now time.Time) (tracking.Event, error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return tracking.Event{}, err
	}
	defer frame.Close()

	moving, changed := a.motion.Detect(frame)
	if a.gate.Observe(moving, now) {
		a.camera.SetFPS(a.gate.FPS())
		a.log.WithFields(logrus.Fields{
			"active":      a.gate.Active(),
			"fps":         a.gate.FPS(),
			"changed_pct": changed,
		}).Info("activity mode changed")
	}

	if a.preview != nil {
		if err := a.preview.Update(frame); err != nil {
			a.log.WithError(err).Debug("preview frame")
		}
	}

	a.mu.Lock()
	kind := a.duty.Next()
	a.mu.Unlock()

	// Detection runs outside the lock; it may block on the landmark service.
	result, err := a.detector.Detect(frame, kind)

	a.mu.Lock()
	if err != nil {
		a.log.WithFields(logrus.Fields{"kind": kind, "err": err}).Warn("detection failed")
	} else {
		a.cache.Store(result)
	}
	ev := a.process(now)
	a.mu.Unlock()

	if a.pub != nil {
		if err := a.pub.Publish(ev); err != nil {
			a.log.WithError(err).Warn("publishing event")
		}
	}
	return ev, nil
}

// process runs the tracker on the cached results. a.mu must be held.
func (a *App) process(now time.Time) tracking.Event {
	screen := a.config.Screen
	ev := a.tracker.Process(a.cache.Frame(now, screen.Width, screen.Height))
	a.history.observe(ev, a.tracking.WakeMode)
	a.last = ev
	return ev
}

// ProcessResult feeds an externally produced detection result through the tracker,
// bypassing the camera. Used when frames come from another source.
func (a *App) ProcessResult(result *detector.Result, now time.Time) tracking.Event {
	a.mu.Lock()
	a.cache.Store(result)
	ev := a.process(now)
	a.mu.Unlock()

	if a.pub != nil {
		if err := a.pub.Publish(ev); err != nil {
			a.log.WithError(err).Warn("publishing event")
		}
	}
	return ev
}
