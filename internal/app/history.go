package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/arbiter"
	"github.com/ayusman/pinchpoint/internal/hook"
	"github.com/ayusman/pinchpoint/internal/store"
	"github.com/ayusman/pinchpoint/internal/tracking"
)

// Notifier is told about every wake and clear.
type Notifier interface {
	Notify(req hook.Request)
}

// history records wake and clear transitions as activations and forwards them to
// the notifier. Either side may be nil.
type history struct {
	repo     *store.ActivationRepository
	notifier Notifier
	log      logrus.FieldLogger

	open   string
	awake  int
	person string
}

func newHistory(repo *store.ActivationRepository, notifier Notifier, log logrus.FieldLogger) *history {
	return &history{repo: repo, notifier: notifier, log: log, awake: -1}
}

func (h *history) observe(ev tracking.Event, mode arbiter.WakeMode) {
	if ev.NoActivePerson {
		h.close(ev.Timestamp, store.EndTimeout)
		return
	}
	if ev.Awake < 0 || ev.Awake >= len(ev.People) || ev.Awake == h.awake {
		return
	}

	h.close(ev.Timestamp, store.EndReplaced)

	name := ev.People[ev.Awake].Name
	h.awake, h.person = ev.Awake, name
	if h.repo != nil {
		a, err := h.repo.Start(name, ev.Awake, mode, ev.Timestamp)
		if err != nil {
			h.log.WithError(err).WithField("person", name).Warn("recording activation")
		} else {
			h.open = a.ID
		}
	}

	h.notify(hook.Request{
		Event:        hook.KindWake,
		ActivationID: h.open,
		Person:       name,
		PersonIndex:  ev.Awake,
		WakeMode:     string(mode),
		At:           ev.Timestamp,
	})
}

// close ends the current activation, if any, with reason.
func (h *history) close(at time.Time, reason string) {
	if h.awake < 0 {
		return
	}
	if h.repo != nil && h.open != "" {
		if err := h.repo.End(h.open, at, reason); err != nil {
			h.log.WithError(err).Warn("closing activation")
		}
	}

	h.notify(hook.Request{
		Event:        hook.KindClear,
		ActivationID: h.open,
		Person:       h.person,
		PersonIndex:  h.awake,
		Reason:       reason,
		At:           at,
	})
	h.open, h.awake, h.person = "", -1, ""
}

func (h *history) notify(req hook.Request) {
	if h.notifier != nil {
		h.notifier.Notify(req)
	}
}
