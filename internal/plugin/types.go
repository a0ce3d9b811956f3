// Package plugin discovers external plugins and relays interaction events to
// them.
package plugin

import (
	"encoding/json"

	"github.com/ayusman/mudra/internal/interaction"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action  string            `json:"action"`
	Surface string            `json:"surface,omitempty"`
	Event   interaction.Event `json:"event"`
	Config  json.RawMessage   `json:"config"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// HasAction reports whether the plugin declares an action.
func (p *Plugin) HasAction(name string) bool {
	for _, a := range p.Manifest.Actions {
		if a == name {
			return true
		}
	}
	return false
}
