package geometry

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Rect is an axis-aligned rectangle in screen pixels, such as the bounding
// client rect of a canvas or a removal region on a surface.
type Rect struct {
	r r2.Rect
}

// NewRect creates a Rect from its top-left corner and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{r: r2.Rect{
		X: r1.Interval{Lo: left, Hi: left + width},
		Y: r1.Interval{Lo: top, Hi: top + height},
	}}
}

// Left returns the x coordinate of the left edge.
func (r Rect) Left() float64 { return r.r.X.Lo }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.r.Y.Lo }

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.r.X.Length() }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.r.Y.Length() }

// IsZero reports whether the rectangle has no area.
func (r Rect) IsZero() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	return r.r.ContainsPoint(r2.Point{X: p.X, Y: p.Y})
}
