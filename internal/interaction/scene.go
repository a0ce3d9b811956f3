package interaction

import "github.com/ayusman/mudra/internal/geometry"

// Scene is the query capability a rendering backend exposes to the gesture
// handlers. All points are client screen coordinates.
type Scene interface {
	// HitTest returns the topmost interactive element under p.
	HitTest(p geometry.Point) (ElementID, bool)

	// RegionQuery returns every interactive element inside c, in a stable order.
	RegionQuery(c geometry.Circle) []ElementID

	// ScreenPosition returns where the element's anchor is currently drawn.
	ScreenPosition(id ElementID) (geometry.Point, bool)

	// Draggable reports whether the element may be grabbed.
	Draggable(id ElementID) bool

	// Transform returns the scene's current pan/zoom.
	Transform() Transform
}

// Viewport is implemented by scenes that occupy a bounded part of the screen.
// Pan and zoom only start when their anchors lie inside it.
type Viewport interface {
	Contains(p geometry.Point) bool
}

// InViewport reports whether every point lies inside the scene's viewport.
// Scenes without a viewport accept any point.
func InViewport(s Scene, pts ...geometry.Point) bool {
	vp, ok := s.(Viewport)
	if !ok {
		return true
	}
	for _, p := range pts {
		if !vp.Contains(p) {
			return false
		}
	}
	return true
}
