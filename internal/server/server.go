// Package server provides the HTTP server for the Mudra interaction layer.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventHub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	var reloader api.Reloader
	if s.config.App != nil {
		reloader = s.config.App
	}

	if st := s.config.Store; st != nil {
		templateHandler := api.NewTemplateHandler(st, reloader)
		samplesHandler := api.NewSamplesHandler(st, reloader)

		// Use a wrapper to route between templates and samples handlers
		templateRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/samples") {
				samplesHandler.ServeHTTP(w, r)
				return
			}
			templateHandler.ServeHTTP(w, r)
		})
		s.mux.Handle("/api/templates", templateRouter)
		s.mux.Handle("/api/templates/", templateRouter)

		s.mux.Handle("/api/bindings", api.NewBindingHandler(st, reloader))
		s.mux.Handle("/api/settings", api.NewSettingsHandler(st, reloader))

		relayHandler := api.NewRelayHandler(st, reloader)
		s.mux.Handle("/api/relays", relayHandler)
		s.mux.Handle("/api/relays/", relayHandler)

		viewHandler := api.NewViewHandler(st)
		s.mux.Handle("/api/views", viewHandler)
		s.mux.Handle("/api/views/", viewHandler)
	}

	if a := s.config.App; a != nil {
		surfaceHandler := api.NewSurfaceHandler(a)
		s.mux.Handle("/api/surfaces", surfaceHandler)
		s.mux.Handle("/api/surfaces/", surfaceHandler)

		s.mux.HandleFunc("/api/enabled", s.handleEnabled)
		s.mux.HandleFunc("/api/plugins", s.handlePlugins)
		s.mux.Handle("/api/stream", NewStreamHandler(a))

		s.events = NewEventHub(a)
		s.mux.Handle("/api/events", s.events)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Events returns the websocket event hub, or nil without an App.
func (s *Server) Events() *EventHub {
	return s.events
}

type healthResponse struct {
	Status    string     `json:"status"`
	Uptime    string     `json:"uptime"`
	Started   string     `json:"started"`
	Stats     *app.Stats `json:"stats,omitempty"`
	Events    string     `json:"events,omitempty"`
	LastEvent string     `json:"last_event,omitempty"`
	Clients   int        `json:"clients"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.start).Round(time.Second).String(),
		Started: humanize.Time(s.start),
	}

	if a := s.config.App; a != nil {
		stats := a.Stats()
		response.Stats = &stats
		response.Events = humanize.Comma(int64(stats.Dispatched))
		if _, at, ok := a.LastEvent(); ok {
			response.LastEvent = humanize.Time(at)
		}
	}
	if s.events != nil {
		response.Clients = s.events.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type enabledBody struct {
	Enabled bool `json:"enabled"`
}

// handleEnabled reads or toggles gesture processing.
func (s *Server) handleEnabled(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req enabledBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		s.config.App.SetEnabled(req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(enabledBody{Enabled: s.config.App.IsEnabled()})
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// handlePlugins lists the discovered plugins and their actions.
func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := s.config.App.PluginManager().List()
	response := make([]pluginResponse, 0, len(plugins))
	for _, p := range plugins {
		response = append(response, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     p.Manifest.Actions,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"plugins": response})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
