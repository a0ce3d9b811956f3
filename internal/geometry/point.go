// Package geometry provides the coordinate and shape helpers used to turn
// hand landmarks into screen-space interaction regions.
package geometry

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point or vector in pixel space.
type Point = r2.Vec

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return r2.Scale(0.5, r2.Add(a, b))
}

// Size is the pixel size of a canvas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
