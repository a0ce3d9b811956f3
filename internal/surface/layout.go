package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ayusman/mudra/internal/geometry"
)

// Box is a screen rectangle as written in a layout file.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect converts the box to a geometry.Rect.
func (b Box) Rect() geometry.Rect {
	return geometry.NewRect(b.Left, b.Top, b.Width, b.Height)
}

// Layout describes a surface and its elements.
type Layout struct {
	Name           string    `json:"name"`
	Viewport       *Box      `json:"viewport,omitempty"`
	RemovalRegions []Box     `json:"removalRegions,omitempty"`
	StrokeWidth    float64   `json:"strokeWidth,omitempty"`
	LabelSize      float64   `json:"labelSize,omitempty"`
	Elements       []Element `json:"elements"`
}

// DecodeLayout reads a JSON layout.
func DecodeLayout(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("failed to decode layout: %w", err)
	}
	if l.Name == "" {
		return Layout{}, fmt.Errorf("layout has no name")
	}

	seen := make(map[string]bool, len(l.Elements))
	for i, e := range l.Elements {
		if e.ID == "" {
			return Layout{}, fmt.Errorf("element %d has no id", i)
		}
		if seen[string(e.ID)] {
			return Layout{}, fmt.Errorf("duplicate element id %q", e.ID)
		}
		if e.Radius <= 0 {
			return Layout{}, fmt.Errorf("element %q has non-positive radius", e.ID)
		}
		seen[string(e.ID)] = true
	}
	return l, nil
}

// LoadLayout reads a JSON layout file.
func LoadLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()
	return DecodeLayout(f)
}

// Config returns the surface configuration the layout describes.
func (l Layout) Config() Config {
	c := DefaultConfig()
	c.Name = l.Name
	if l.Viewport != nil {
		c.Viewport = l.Viewport.Rect()
	}
	for _, b := range l.RemovalRegions {
		c.RemovalRegions = append(c.RemovalRegions, b.Rect())
	}
	if l.StrokeWidth > 0 {
		c.BaseStrokeWidth = l.StrokeWidth
	}
	if l.LabelSize > 0 {
		c.BaseLabelSize = l.LabelSize
	}
	return c
}

// FromLayout creates a surface from a layout.
func FromLayout(l Layout) *Surface {
	return New(l.Config(), l.Elements)
}
