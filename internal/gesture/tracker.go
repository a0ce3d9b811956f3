// Package gesture turns per-frame hand classifications into canonical
// interaction events.
//
// Every handler is a pure function of this frame's hand input and that
// hand's previous state. The Tracker owns the per-hand state table and runs
// the handlers in a fixed order once per frame.
package gesture

import (
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// handState is everything the tracker remembers about one hand between frames.
type handState struct {
	point pointHoverState
	area  areaHoverState
	sel   selectState
	drag  dragState
	pan   panState

	lastPointer geometry.Point
	seen        bool
}

// Tracker holds the per-hand gesture state of one pipeline.
// It is not safe for concurrent use; one frame loop drives it.
type Tracker struct {
	config Config
	hands  map[interaction.Handedness]*handState
	zoom   zoomState
}

// NewTracker creates a Tracker with the given configuration.
func NewTracker(config Config) *Tracker {
	if config.Bindings == nil {
		config.Bindings = DefaultBindings()
	}
	if config.ConfirmWindow < 1 {
		config.ConfirmWindow = 1
	}

	t := &Tracker{
		config: config,
		hands:  make(map[interaction.Handedness]*handState, len(interaction.Hands)),
	}
	for _, h := range interaction.Hands {
		t.hands[h] = &handState{}
	}
	return t
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() Config {
	return t.config
}

// Step evaluates one frame. Hands missing from input are treated as lost,
// which releases whatever gesture they were holding.
func (t *Tracker) Step(input map[interaction.Handedness]Hand, scene interaction.Scene) []interaction.Event {
	left, right := input[interaction.Left], input[interaction.Right]
	b := t.config.Bindings

	// Zoom decides first because an active zoom suspends pan on both hands.
	zoomEvents, zs := zoom(left, right, t.zoom, scene, b)
	t.zoom = zs

	var events []interaction.Event
	for _, h := range interaction.Hands {
		in := input[h]
		st := t.hands[h]

		var ev []interaction.Event

		ev, st.point = pointHover(h, in, st.point, scene, b)
		events = append(events, ev...)

		ev, st.area = areaHover(h, in, st.area, scene, b)
		events = append(events, ev...)

		ev, st.sel = twoPhaseSelect(h, in, st.sel, scene, t.config)
		events = append(events, ev...)

		ev, st.drag = drag(h, in, st.drag, scene, b)
		events = append(events, ev...)

		if t.zoom.active {
			st.pan = panState{}
		} else {
			ev, st.pan = pan(h, in, st.pan, scene, b)
			events = append(events, ev...)
		}

		if in.Present {
			st.lastPointer = in.client()
			st.seen = true
		}
	}

	return append(events, zoomEvents...)
}

// Release ends every gesture as if both hands had been lost and returns the
// terminal events.
func (t *Tracker) Release(scene interaction.Scene) []interaction.Event {
	return t.Step(nil, scene)
}

// Active reports whether any gesture session is in progress.
func (t *Tracker) Active() bool {
	if t.zoom.active {
		return true
	}
	for _, st := range t.hands {
		if st.point.active() || len(st.area.hovered) > 0 || st.sel.phase == selectArmed ||
			st.drag.dragging() || st.pan.active {
			return true
		}
	}
	return false
}

// LastPointer returns the last client position seen for a hand.
func (t *Tracker) LastPointer(h interaction.Handedness) (geometry.Point, bool) {
	st, ok := t.hands[h]
	if !ok || !st.seen {
		return geometry.Point{}, false
	}
	return st.lastPointer, true
}

// Grip returns the element a hand is dragging and the offset captured when
// it was grabbed.
func (t *Tracker) Grip(h interaction.Handedness) (interaction.ElementID, geometry.Point, bool) {
	st, ok := t.hands[h]
	if !ok || !st.drag.dragging() {
		return "", geometry.Point{}, false
	}
	return st.drag.target, st.drag.offset, true
}

// Armed returns the candidate of a hand's pending two-phase select.
func (t *Tracker) Armed(h interaction.Handedness) (interaction.ElementID, bool) {
	st, ok := t.hands[h]
	if !ok || st.sel.phase != selectArmed {
		return "", false
	}
	return st.sel.candidate, true
}

// Hovered returns the elements a hand currently hovers, point hover first.
func (t *Tracker) Hovered(h interaction.Handedness) []interaction.ElementID {
	st, ok := t.hands[h]
	if !ok {
		return nil
	}
	var ids []interaction.ElementID
	if st.point.active() {
		ids = append(ids, st.point.element)
	}
	return append(ids, st.area.hovered...)
}

// Zooming reports whether a two-hand zoom session is active.
func (t *Tracker) Zooming() bool {
	return t.zoom.active
}
