package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// dragState is Idle, or Dragging{target, offset} when target is set.
// The offset is captured once at onset and never recomputed.
type dragState struct {
	target interaction.ElementID
	offset geometry.Point
	last   interaction.Point
}

func (s dragState) dragging() bool { return s.target != "" }

// drag grabs the draggable element under the pointer, follows the pointer
// while the pose holds and releases with exactly one pointerup on any other
// pose or when the hand is lost.
func drag(h interaction.Handedness, in Hand, prev dragState, scene interaction.Scene, b Bindings) ([]interaction.Event, dragState) {
	holding := in.Present && b.Is(RoleDrag, in.Category)

	if prev.dragging() {
		if !holding {
			at := prev.last
			if in.Present {
				at = in.Pointer
			}
			return []interaction.Event{interaction.Up(h, prev.target, at)}, dragState{}
		}
		next := prev
		next.last = in.Pointer
		return []interaction.Event{interaction.Move(h, prev.target, in.Pointer)}, next
	}

	if !holding {
		return nil, dragState{}
	}

	hit, ok := scene.HitTest(in.client())
	if !ok || !scene.Draggable(hit) {
		return nil, dragState{}
	}
	pos, ok := scene.ScreenPosition(hit)
	if !ok {
		return nil, dragState{}
	}

	next := dragState{
		target: hit,
		offset: r2.Sub(pos, in.client()),
		last:   in.Pointer,
	}
	return []interaction.Event{interaction.Down(h, hit, in.Pointer)}, next
}

// Position returns where the grabbed element belongs for a pointer at p.
func (s dragState) position(p geometry.Point) geometry.Point {
	return r2.Add(p, s.offset)
}
