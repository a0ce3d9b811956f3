package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// minZoomBaseline is the smallest inter-hand distance, in pixels, that can
// anchor a zoom session.
const minZoomBaseline = 1.0

// panState tracks a single-hand pan.
type panState struct {
	active    bool
	anchor    geometry.Point
	transform interaction.Transform
}

// pan captures an anchor at onset and afterwards emits the previous
// transform translated by how far the anchor moved.
func pan(h interaction.Handedness, in Hand, prev panState, scene interaction.Scene, b Bindings) ([]interaction.Event, panState) {
	if !in.Present || !b.Is(RolePan, in.Category) {
		return nil, panState{}
	}

	p := in.client()
	if !prev.active {
		if !interaction.InViewport(scene, p) {
			return nil, panState{}
		}
		return nil, panState{active: true, anchor: p, transform: scene.Transform()}
	}

	t := prev.transform.Translate(r2.Sub(p, prev.anchor))
	return []interaction.Event{interaction.DragTo(h, t)}, panState{active: true, anchor: p, transform: t}
}

// zoomState is the baseline captured at the onset of a two-hand zoom.
type zoomState struct {
	active   bool
	distance float64
	scale    float64
	world    geometry.Point
}

// zoom scales by the ratio of the current to the baseline inter-hand
// distance. The transform is rebuilt from the baseline every frame so that
// identical hand positions always give an identical transform; the world
// point that was under the hands' midpoint at onset stays under the current
// midpoint.
func zoom(left, right Hand, prev zoomState, scene interaction.Scene, b Bindings) ([]interaction.Event, zoomState) {
	if !left.Present || !right.Present || !b.Is(RoleZoom, left.Category) || !b.Is(RoleZoom, right.Category) {
		return nil, zoomState{}
	}

	lp, rp := left.client(), right.client()
	d := geometry.Distance(lp, rp)
	mid := geometry.Midpoint(lp, rp)

	if !prev.active {
		if d < minZoomBaseline || !interaction.InViewport(scene, lp, rp) {
			return nil, zoomState{}
		}
		base := scene.Transform()
		k := base.K
		if k == 0 {
			k = 1
			base.K = 1
		}
		return nil, zoomState{
			active:   true,
			distance: d,
			scale:    k,
			world:    base.Invert(mid),
		}
	}

	k := d / prev.distance * prev.scale
	origin := r2.Sub(mid, r2.Scale(k, prev.world))
	t := interaction.Transform{X: origin.X, Y: origin.Y, K: k}

	return []interaction.Event{interaction.ZoomTo(t)}, prev
}
