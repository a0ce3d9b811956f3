// Package main is a keyboard plugin for macOS. It turns relayed interaction
// events into keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Event mirrors the fields of a relayed interaction event this plugin reads.
type Event struct {
	Type      string `json:"type"`
	Element   string `json:"element,omitempty"`
	Transform *struct {
		K float64 `json:"scale"`
	} `json:"transform,omitempty"`
}

// Request represents the input from the relay.
type Request struct {
	Action  string          `json:"action"`
	Surface string          `json:"surface,omitempty"`
	Event   Event           `json:"event"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the relay.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeConfig is the per-route configuration for keystroke.
// Elements overrides Key for events on specific elements.
type KeystrokeConfig struct {
	Key       string            `json:"key"`
	Modifiers []string          `json:"modifiers"`
	Elements  map[string]string `json:"elements,omitempty"`
}

// ZoomConfig is the per-route configuration for zoom-keys. Scales above
// Threshold send In, the rest send Out.
type ZoomConfig struct {
	In        string   `json:"in"`
	Out       string   `json:"out"`
	Modifiers []string `json:"modifiers"`
	Threshold float64  `json:"threshold"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	resp := handle(os.Stdin, runAppleScript)
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handle(r io.Reader, run func(string) error) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}

	script, err := scriptFor(req)
	if err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}
	if err := run(script); err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}

	data, _ := json.Marshal(map[string]string{"script": script})
	return Response{Success: true, Data: data}
}

// scriptFor builds the AppleScript for a request.
func scriptFor(req Request) (string, error) {
	config := req.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}

	switch req.Action {
	case "keystroke":
		var c KeystrokeConfig
		if err := json.Unmarshal(config, &c); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
		key := c.Key
		if k, ok := c.Elements[req.Event.Element]; ok {
			key = k
		}
		if key == "" {
			return "", errors.New("key is required")
		}
		return buildKeystrokeScript(key, c.Modifiers), nil

	case "zoom-keys":
		c := ZoomConfig{In: "=", Out: "-", Modifiers: []string{"command"}, Threshold: 1}
		if err := json.Unmarshal(config, &c); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
		if req.Event.Transform == nil {
			return "", errors.New("event has no transform")
		}
		key := c.Out
		if req.Event.Transform.K > c.Threshold {
			key = c.In
		}
		return buildKeystrokeScript(key, c.Modifiers), nil
	}

	return "", fmt.Errorf("unknown action: %s", req.Action)
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(appleModifiers, ", "))
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
