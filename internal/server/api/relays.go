package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/store"
)

// RelayHandler handles HTTP requests for relay resources. A relay forwards
// one interaction event type to a plugin action.
type RelayHandler struct {
	store    *store.Store
	reloader Reloader
}

// NewRelayHandler creates a new RelayHandler with the given store.
func NewRelayHandler(s *store.Store, r Reloader) *RelayHandler {
	return &RelayHandler{store: s, reloader: r}
}

// ServeHTTP routes /api/relays and /api/relays/{id}.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/relays"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createRelayRequest struct {
	EventType  string          `json:"event_type"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
}

type updateRelayRequest struct {
	EventType  string          `json:"event_type"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type relayResponse struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listRelaysResponse struct {
	Relays []relayResponse `json:"relays"`
}

func toRelayResponse(a *store.Relay) relayResponse {
	return relayResponse{
		ID:         a.ID,
		EventType:  a.EventType,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     a.Config,
		Enabled:    a.Enabled,
		CreatedAt:  a.CreatedAt.Format(timeFormat),
	}
}

func validEventType(s string) error {
	if !interaction.Type(s).Valid() {
		return fmt.Errorf("unknown event type %q", s)
	}
	return nil
}

func (h *RelayHandler) reload() {
	if h.reloader != nil {
		reload("relays", h.reloader.LoadRelays)
	}
}

// list handles GET /api/relays.
func (h *RelayHandler) list(w http.ResponseWriter, r *http.Request) {
	relays, err := h.store.Relays().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list relays")
		return
	}

	response := listRelaysResponse{Relays: make([]relayResponse, 0, len(relays))}
	for _, a := range relays {
		response.Relays = append(response.Relays, toRelayResponse(a))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/relays/{id}.
func (h *RelayHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Relays().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Relay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get relay")
		return
	}
	writeJSON(w, http.StatusOK, toRelayResponse(a))
}

// create handles POST /api/relays.
func (h *RelayHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventType == "" || req.PluginName == "" || req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "event_type, plugin_name and action_name are required")
		return
	}
	if err := validEventType(req.EventType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := &store.Relay{
		ID:         uuid.New().String(),
		EventType:  req.EventType,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}
	if err := h.store.Relays().Create(a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create relay")
		return
	}
	if a.Config == nil {
		a.Config = json.RawMessage("{}")
	}

	h.reload()
	writeJSON(w, http.StatusCreated, toRelayResponse(a))
}

// update handles PUT /api/relays/{id}. Empty fields keep their value.
func (h *RelayHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Relays().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Relay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get relay")
		return
	}

	var req updateRelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventType != "" {
		if err := validEventType(req.EventType); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.EventType = req.EventType
	}
	if req.PluginName != "" {
		a.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		a.ActionName = req.ActionName
	}
	if req.Config != nil {
		a.Config = req.Config
	}
	if req.Enabled != nil {
		a.Enabled = *req.Enabled
	}

	if err := h.store.Relays().Update(a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update relay")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, toRelayResponse(a))
}

// delete handles DELETE /api/relays/{id}.
func (h *RelayHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Relays().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Relay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete relay")
		return
	}

	h.reload()
	w.WriteHeader(http.StatusNoContent)
}
