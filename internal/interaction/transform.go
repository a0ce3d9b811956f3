package interaction

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/geometry"
)

// Transform is the pan/zoom of a visualization's coordinate space.
// A world point w is drawn at screen position w*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"scale"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(w geometry.Point) geometry.Point {
	return r2.Add(r2.Scale(t.K, w), geometry.Pt(t.X, t.Y))
}

// Invert maps a screen point back to world coordinates.
func (t Transform) Invert(p geometry.Point) geometry.Point {
	k := t.K
	if k == 0 {
		k = 1
	}
	return r2.Scale(1/k, r2.Sub(p, geometry.Pt(t.X, t.Y)))
}

// Translate returns t shifted by d screen pixels.
func (t Transform) Translate(d geometry.Point) Transform {
	return Transform{X: t.X + d.X, Y: t.Y + d.Y, K: t.K}
}
