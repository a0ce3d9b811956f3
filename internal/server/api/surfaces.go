package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/surface"
)

// SurfaceHandler exposes the live state of every surface.
type SurfaceHandler struct {
	surfaces SurfaceLister
}

// NewSurfaceHandler creates a new SurfaceHandler.
func NewSurfaceHandler(l SurfaceLister) *SurfaceHandler {
	return &SurfaceHandler{surfaces: l}
}

type listSurfacesResponse struct {
	Surfaces []surface.Snapshot `json:"surfaces"`
}

// ServeHTTP routes:
//
//	GET  /api/surfaces
//	GET  /api/surfaces/{name}
//	POST /api/surfaces/{name}/reset
func (h *SurfaceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/surfaces"), "/")
	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	name, action, _ := strings.Cut(path, "/")
	s := h.find(name)
	if s == nil {
		writeError(w, http.StatusNotFound, "Surface not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.Snapshot())
	case action == "reset" && r.Method == http.MethodPost:
		s.Reset()
		writeJSON(w, http.StatusOK, s.Snapshot())
	case action == "" || action == "reset":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SurfaceHandler) find(name string) *surface.Surface {
	for _, s := range h.surfaces.Surfaces() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// list handles GET /api/surfaces.
func (h *SurfaceHandler) list(w http.ResponseWriter, r *http.Request) {
	surfaces := h.surfaces.Surfaces()
	response := listSurfacesResponse{Surfaces: make([]surface.Snapshot, 0, len(surfaces))}
	for _, s := range surfaces {
		response.Surfaces = append(response.Surfaces, s.Snapshot())
	}
	writeJSON(w, http.StatusOK, response)
}
