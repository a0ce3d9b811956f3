package main

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildKeystrokeScript(t *testing.T) {
	tests := []struct {
		key       string
		modifiers []string
		expected  string
	}{
		{"a", nil, `tell application "System Events" to keystroke "a"`},
		{"=", []string{"cmd"}, `tell application "System Events" to keystroke "=" using {command down}`},
		{"z", []string{"Command", "SHIFT"}, `tell application "System Events" to keystroke "z" using {command down, shift down}`},
		{"x", []string{"hyper"}, `tell application "System Events" to keystroke "x"`},
	}

	for _, tt := range tests {
		if got := buildKeystrokeScript(tt.key, tt.modifiers); got != tt.expected {
			t.Errorf("buildKeystrokeScript(%q, %v) = %q, expected %q", tt.key, tt.modifiers, got, tt.expected)
		}
	}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		success bool
		script  string
	}{
		{
			name:    "keystroke",
			input:   `{"action":"keystroke","event":{"type":"pointerselect","element":"a"},"config":{"key":"k"}}`,
			success: true,
			script:  `keystroke "k"`,
		},
		{
			name:    "keystroke per element",
			input:   `{"action":"keystroke","event":{"type":"pointerselect","element":"b"},"config":{"key":"k","elements":{"b":"2"}}}`,
			success: true,
			script:  `keystroke "2"`,
		},
		{
			name:    "zoom in",
			input:   `{"action":"zoom-keys","event":{"type":"zoom","transform":{"x":0,"y":0,"scale":1.5}},"config":{}}`,
			success: true,
			script:  `keystroke "=" using {command down}`,
		},
		{
			name:    "zoom out",
			input:   `{"action":"zoom-keys","event":{"type":"zoom","transform":{"x":0,"y":0,"scale":0.5}}}`,
			success: true,
			script:  `keystroke "-" using {command down}`,
		},
		{"missing key", `{"action":"keystroke","event":{"type":"pointerselect"},"config":{"key":""}}`, false, ""},
		{"zoom without transform", `{"action":"zoom-keys","event":{"type":"pointerselect"}}`, false, ""},
		{"unknown action", `{"action":"explode","event":{"type":"zoom"}}`, false, ""},
		{"bad request", `not json`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran string
			resp := handle(strings.NewReader(tt.input), func(s string) error {
				ran = s
				return nil
			})

			if resp.Success != tt.success {
				t.Fatalf("expected success=%v, got %v (%s)", tt.success, resp.Success, resp.Error)
			}
			if !strings.Contains(ran, tt.script) {
				t.Errorf("expected script containing %q, got %q", tt.script, ran)
			}
		})
	}
}

func TestHandle_RunError(t *testing.T) {
	resp := handle(strings.NewReader(`{"action":"keystroke","event":{"type":"pointerselect"},"config":{"key":"k"}}`),
		func(string) error { return errors.New("not authorized") })

	if resp.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(resp.Error, "not authorized") {
		t.Errorf("expected run error in response, got %q", resp.Error)
	}
}
