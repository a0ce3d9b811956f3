package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// BindingHandler serves /api/bindings: which classifier category triggers
// each interaction role.
type BindingHandler struct {
	store    *store.Store
	reloader Reloader
}

// NewBindingHandler creates a new BindingHandler.
func NewBindingHandler(s *store.Store, r Reloader) *BindingHandler {
	return &BindingHandler{store: s, reloader: r}
}

type bindingsResponse struct {
	Bindings gesture.Bindings `json:"bindings"`
	Roles    []gesture.Role   `json:"roles"`
}

// ServeHTTP implements the http.Handler interface.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// effective returns the stored bindings applied over the defaults.
func (h *BindingHandler) effective() (gesture.Bindings, error) {
	stored, err := h.store.Bindings().All()
	if err != nil {
		return nil, err
	}
	overrides := make(gesture.Bindings, len(stored))
	for role, category := range stored {
		overrides[gesture.Role(role)] = category
	}
	return gesture.DefaultBindings().Merge(overrides), nil
}

// get handles GET /api/bindings.
func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load bindings")
		return
	}
	writeJSON(w, http.StatusOK, bindingsResponse{Bindings: bindings, Roles: gesture.Roles})
}

// put handles PUT /api/bindings. The body may name any subset of roles; the
// result must still bind every role and keep the select phases apart.
func (h *BindingHandler) put(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	known := make(map[gesture.Role]bool, len(gesture.Roles))
	for _, role := range gesture.Roles {
		known[role] = true
	}

	update := make(gesture.Bindings, len(req))
	for role, category := range req {
		if !known[gesture.Role(role)] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown role %q", role))
			return
		}
		update[gesture.Role(role)] = category
	}

	current, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load bindings")
		return
	}

	merged := current.Merge(update)
	if err := merged.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := make(map[string]string, len(merged))
	for role, category := range merged {
		rows[string(role)] = category
	}
	if err := h.store.Bindings().SetAll(rows); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save bindings")
		return
	}

	if h.reloader != nil {
		reload("settings", h.reloader.LoadSettings)
	}

	writeJSON(w, http.StatusOK, bindingsResponse{Bindings: merged, Roles: gesture.Roles})
}
