package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/pinchpoint/internal/store"
)

// ActivationsHandler serves the activation history.
type ActivationsHandler struct {
	store *store.Store
}

// NewActivationsHandler creates a new ActivationsHandler with the given store.
func NewActivationsHandler(s *store.Store) *ActivationsHandler {
	return &ActivationsHandler{store: s}
}

type listActivationsResponse struct {
	Activations []*store.Activation `json:"activations"`
}

// ServeHTTP handles GET /api/activations and GET /api/activations/{id}.
func (h *ActivationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/activations"), "/")
	if id != "" {
		h.get(w, id)
		return
	}
	h.list(w, r)
}

func (h *ActivationsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	activations, err := h.store.Activations().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list activations")
		return
	}
	if activations == nil {
		activations = []*store.Activation{}
	}
	writeJSON(w, http.StatusOK, listActivationsResponse{Activations: activations})
}

func (h *ActivationsHandler) get(w http.ResponseWriter, id string) {
	a, err := h.store.Activations().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "activation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get activation")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
