// Package tracking runs the per-tick gesture pipeline: body trackers, hand
// association, hand pairs and wake arbitration.
package tracking

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/arbiter"
	"github.com/ayusman/pinchpoint/internal/body"
	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/hand"
	"github.com/ayusman/pinchpoint/internal/logging"
)

// Tracker owns the tracked people and the arbiter. It is not safe for concurrent use.
type Tracker struct {
	config  config.Tracking
	log     logrus.FieldLogger
	people  []*arbiter.Person
	arbiter *arbiter.Arbiter
}

// New validates cfg and builds a tracker with cfg.NumBodies people. A nil logger
// discards output.
func New(cfg config.Tracking, log logrus.FieldLogger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}

	t := &Tracker{
		config:  cfg,
		log:     log,
		arbiter: arbiter.New(arbiterConfig(cfg), log),
	}
	t.people = make([]*arbiter.Person, cfg.NumBodies)
	for i := range t.people {
		t.people[i] = arbiter.NewPerson(arbiter.DefaultNames[i], bodyConfig(cfg), handConfig(cfg))
	}
	return t, nil
}

func bodyConfig(cfg config.Tracking) body.Config {
	return body.Config{
		WristVisibility: cfg.WristVisibility,
		WristLerp:       cfg.WristLerp,
		ScreenDeadzone:  cfg.ScreenDeadzone,
		CheckHeadTurn:   cfg.CheckHeadTurn,
	}
}

func handConfig(cfg config.Tracking) hand.Config {
	return hand.Config{
		MissingTimeout:    cfg.MissingHandTimeout,
		PinchSmoothing:    cfg.PinchSmoothing,
		PinchDeadzone:     cfg.PinchDeadzone,
		CheckFingerPoses:  cfg.CheckFingerPoses,
		CheckGrab:         cfg.WakeMode == arbiter.Fist,
		PoseHoldThreshold: cfg.PoseHoldThreshold,
	}
}

func arbiterConfig(cfg config.Tracking) arbiter.Config {
	return arbiter.Config{
		Mode:            cfg.WakeMode,
		HoldTime:        cfg.WakeHoldTime,
		InactiveTimeout: cfg.InactiveTimeout,
		RemoveInactive:  cfg.RemoveInactive,
	}
}

// Process runs one tick. Bodies are updated first, since association reads their
// wrists. Missing bodies in f leave the corresponding people absent.
func (t *Tracker) Process(f Frame) Event {
	for i, p := range t.people {
		var b *detector.BodyLandmarks
		if i < len(f.Bodies) {
			b = &f.Bodies[i]
		}
		p.Body.Update(b, f.ScreenWidth, f.ScreenHeight)
	}

	var assoc [][]detector.HandLandmarks
	if t.config.TrackHands {
		assoc = arbiter.Associate(t.people, f.Hands, t.config.AssociationDistance, t.log)
	}
	for i, p := range t.people {
		var hands []detector.HandLandmarks
		if assoc != nil {
			hands = assoc[i]
		}
		p.Hands.Update(hands, p.Body.Pose().InRect.Chirality(), f.HandsFresh, f.Timestamp)
	}

	d := t.arbiter.Update(t.people, f.Timestamp)

	ev := Event{
		Timestamp:      f.Timestamp,
		People:         make([]PersonEvent, len(t.people)),
		Active:         d.Active,
		Awake:          d.Awake,
		NoActivePerson: d.Cleared,
	}
	for i, p := range t.people {
		ev.People[i] = personEvent(p)
	}
	if d.Active >= 0 {
		ev.ActiveName = t.people[d.Active].Name
	}
	ev.Indicator = ev.indicator()
	return ev
}

func personEvent(p *arbiter.Person) PersonEvent {
	pose := p.Body.Pose()
	pe := PersonEvent{
		Name:      p.Name,
		Pose:      pose,
		UserState: p.Hands.UserState(),
	}
	for slot, h := range p.Hands.Hands() {
		pt, _ := pose.PinchPoint(h.Chirality)
		pe.Hands[slot] = HandEvent{TrackedHand: h, ScreenPinch: pt}
	}
	return pe
}

// Config returns the options the tracker was built with.
func (t *Tracker) Config() config.Tracking {
	return t.config
}

// People returns the tracked people in slot order.
func (t *Tracker) People() []*arbiter.Person {
	return t.people
}

// Reset forgets every person's state and the awake person.
func (t *Tracker) Reset() {
	for i, p := range t.people {
		t.people[i] = arbiter.NewPerson(p.Name, bodyConfig(t.config), handConfig(t.config))
	}
	t.arbiter.Reset()
}
