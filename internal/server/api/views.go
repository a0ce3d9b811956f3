package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// ViewHandler serves the saved pan/zoom of each surface.
type ViewHandler struct {
	store *store.Store
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(s *store.Store) *ViewHandler {
	return &ViewHandler{store: s}
}

type listViewsResponse struct {
	Views []*store.View `json:"views"`
}

// ServeHTTP routes GET /api/views and DELETE /api/views/{name}.
func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/views"), "/")

	switch {
	case name == "" && r.Method == http.MethodGet:
		views, err := h.store.Views().List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list views")
			return
		}
		if views == nil {
			views = []*store.View{}
		}
		writeJSON(w, http.StatusOK, listViewsResponse{Views: views})
	case name != "" && r.Method == http.MethodGet:
		v, err := h.store.Views().GetByName(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "View not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get view")
			return
		}
		writeJSON(w, http.StatusOK, v)
	case name != "" && r.Method == http.MethodDelete:
		if err := h.store.Views().Delete(name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "View not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to delete view")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
