// Package api provides the HTTP handlers for templates, bindings, settings,
// relays, views and surfaces.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/surface"
)

// Reloader applies stored configuration to the running pipelines. Handlers
// call it after every successful write; a nil Reloader is allowed.
type Reloader interface {
	LoadSettings() error
	LoadTemplates() error
	LoadRelays() error
}

// SurfaceLister exposes the live surfaces.
type SurfaceLister interface {
	Surfaces() []*surface.Surface
}

const timeFormat = time.RFC3339

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// reload runs one reload step and logs a failure. The write that triggered
// it already succeeded, so the request still does.
func reload(what string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("Failed to reload %s: %v", what, err)
	}
}
