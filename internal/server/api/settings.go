package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/pipeline"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler serves /api/settings: the pipeline tunables.
type SettingsHandler struct {
	store    *store.Store
	reloader Reloader
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(s *store.Store, r Reloader) *SettingsHandler {
	return &SettingsHandler{store: s, reloader: r}
}

type settingsBody struct {
	ConfirmWindow   *int     `json:"select_confirm_window,omitempty"`
	MinGestureScore *float64 `json:"min_gesture_score,omitempty"`
	SwapHandedness  *bool    `json:"swap_handedness,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) current() settingsBody {
	def := pipeline.DefaultConfig()
	settings := h.store.Settings()

	window := settings.Int(store.SettingConfirmWindow, def.Gesture.ConfirmWindow)
	score := settings.Float(store.SettingMinGestureScore, def.MinGestureScore)
	swap := settings.Bool(store.SettingSwapHandedness, def.SwapHandedness)
	return settingsBody{ConfirmWindow: &window, MinGestureScore: &score, SwapHandedness: &swap}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

// put handles PUT /api/settings. Omitted fields keep their value.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConfirmWindow != nil && *req.ConfirmWindow < 1 {
		writeError(w, http.StatusBadRequest, "select_confirm_window must be at least 1")
		return
	}
	if req.MinGestureScore != nil && (*req.MinGestureScore < 0 || *req.MinGestureScore > 1) {
		writeError(w, http.StatusBadRequest, "min_gesture_score must be between 0 and 1")
		return
	}

	settings := h.store.Settings()
	var err error
	if req.ConfirmWindow != nil && err == nil {
		err = settings.Set(store.SettingConfirmWindow, strconv.Itoa(*req.ConfirmWindow))
	}
	if req.MinGestureScore != nil && err == nil {
		err = settings.Set(store.SettingMinGestureScore, strconv.FormatFloat(*req.MinGestureScore, 'f', -1, 64))
	}
	if req.SwapHandedness != nil && err == nil {
		err = settings.Set(store.SettingSwapHandedness, strconv.FormatBool(*req.SwapHandedness))
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	if h.reloader != nil {
		reload("settings", h.reloader.LoadSettings)
	}

	writeJSON(w, http.StatusOK, h.current())
}
