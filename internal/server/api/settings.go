package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/logging"
	"github.com/ayusman/pinchpoint/internal/store"
)

// TrackingController exposes the running pipeline's options.
type TrackingController interface {
	// Tracking returns the options in effect.
	Tracking() config.Tracking
	// ApplyTracking rebuilds the pipeline with t, which has been validated.
	ApplyTracking(t config.Tracking) error
}

// SettingsHandler serves GET, PUT and DELETE on /api/settings.
type SettingsHandler struct {
	store   *store.Store
	control TrackingController
	log     logrus.FieldLogger
}

// NewSettingsHandler creates a SettingsHandler. control may be nil, in which case
// settings are persisted but not applied. A nil logger discards output.
func NewSettingsHandler(s *store.Store, control TrackingController, log logrus.FieldLogger) *SettingsHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &SettingsHandler{store: s, control: control, log: log}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.reset(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// current returns the options in effect, falling back to persisted then default values.
func (h *SettingsHandler) current() (config.Tracking, error) {
	if h.control != nil {
		return h.control.Tracking(), nil
	}
	t, err := h.store.Settings().Tracking(config.DefaultTracking())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return t, err
	}
	return t, nil
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// update decodes a full or partial document over the current options.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	t, err := h.current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SaveTracking(t); err != nil {
		h.log.WithError(err).Error("saving settings")
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	if !h.apply(w, t) {
		return
	}

	h.log.WithField("settings", t).Info("settings updated")
	writeJSON(w, http.StatusOK, t)
}

// reset drops persisted overrides and returns to the defaults.
func (h *SettingsHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Settings().ResetTracking(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset settings")
		return
	}

	t := config.DefaultTracking()
	if !h.apply(w, t) {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *SettingsHandler) apply(w http.ResponseWriter, t config.Tracking) bool {
	if h.control == nil {
		return true
	}
	if err := h.control.ApplyTracking(t); err != nil {
		h.log.WithError(err).Error("applying settings")
		writeError(w, http.StatusInternalServerError, "failed to apply settings")
		return false
	}
	return true
}
