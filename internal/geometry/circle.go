package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// containTolerance absorbs floating point error when testing whether a point
// lies on a circle's boundary.
const containTolerance = 1e-9

// Circle is a circular region in screen pixels.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center, p) <= c.Radius+containTolerance*math.Max(1, c.Radius)
}

// MinEnclosingCircle returns the smallest circle containing every point.
// It reports false when fewer than two points are given.
//
// The search is exhaustive: the minimal circle is always either the circle
// on the diameter of two points or the circumcircle of three, so every pair
// and triple is tried and the smallest candidate that encloses all points
// wins. Ties keep the first candidate in enumeration order, which makes the
// result deterministic for the handful of fingertips it is used with.
func MinEnclosingCircle(points []Point) (Circle, bool) {
	if len(points) < 2 {
		return Circle{}, false
	}

	var best Circle
	found := false

	consider := func(c Circle) {
		if found && c.Radius >= best.Radius {
			return
		}
		for _, p := range points {
			if !c.Contains(p) {
				return
			}
		}
		best = c
		found = true
	}

	n := len(points)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			consider(diameterCircle(points[i], points[j]))
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if c, ok := circumcircle(points[i], points[j], points[k]); ok {
					consider(c)
				}
			}
		}
	}

	return best, found
}

// diameterCircle returns the circle whose diameter is the segment ab.
func diameterCircle(a, b Point) Circle {
	return Circle{Center: Midpoint(a, b), Radius: Distance(a, b) / 2}
}

// circumcircle returns the circle through a, b and c.
// It reports false for collinear points.
func circumcircle(a, b, c Point) (Circle, bool) {
	ab := r2.Sub(b, a)
	ac := r2.Sub(c, a)

	d := 2 * r2.Cross(ab, ac)
	if math.Abs(d) < 1e-12 {
		return Circle{}, false
	}

	abSq := r2.Dot(ab, ab)
	acSq := r2.Dot(ac, ac)

	// Center relative to a.
	ux := (ac.Y*abSq - ab.Y*acSq) / d
	uy := (ab.X*acSq - ac.X*abSq) / d

	center := r2.Add(a, Point{X: ux, Y: uy})
	return Circle{Center: center, Radius: math.Hypot(ux, uy)}, true
}
