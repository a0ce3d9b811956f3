package gesture

import (
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// pointHoverState holds the single element a hand is pointing at.
type pointHoverState struct {
	element interaction.ElementID
	last    interaction.Point
}

func (s pointHoverState) active() bool { return s.element != "" }

// pointHover hit-tests the pointer. At most one element is hovered per hand;
// leaving the pose or losing the hand releases it.
func pointHover(h interaction.Handedness, in Hand, prev pointHoverState, scene interaction.Scene, b Bindings) ([]interaction.Event, pointHoverState) {
	if !in.Present || !b.Is(RolePointHover, in.Category) {
		if prev.active() {
			return []interaction.Event{interaction.Out(h, prev.element, prev.last)}, pointHoverState{}
		}
		return nil, pointHoverState{}
	}

	hit, ok := scene.HitTest(in.client())
	if !ok {
		hit = ""
	}

	var events []interaction.Event
	if hit != prev.element {
		if prev.active() {
			events = append(events, interaction.Out(h, prev.element, in.Pointer))
		}
		if hit != "" {
			events = append(events, interaction.Over(h, hit, in.Pointer))
		}
	}

	return events, pointHoverState{element: hit, last: in.Pointer}
}

// areaHoverState holds every element inside a hand's fingertip circle, in
// the order they were entered.
type areaHoverState struct {
	hovered []interaction.ElementID
	last    interaction.Point
}

// areaHover encloses the five fingertips in their minimal circle and hovers
// every element inside it. Elements that left the circle are released before
// new ones are entered.
func areaHover(h interaction.Handedness, in Hand, prev areaHoverState, scene interaction.Scene, b Bindings) ([]interaction.Event, areaHoverState) {
	if !in.Present || !b.Is(RoleAreaHover, in.Category) {
		return releaseArea(h, prev, prev.last), areaHoverState{}
	}

	circle, ok := geometry.MinEnclosingCircle(in.Fingertips)
	if !ok {
		// No region this frame: drop everything the hand was covering.
		return releaseArea(h, prev, in.Pointer), areaHoverState{last: in.Pointer}
	}

	inside := scene.RegionQuery(circle)
	now := make(map[interaction.ElementID]bool, len(inside))
	for _, id := range inside {
		now[id] = true
	}
	before := make(map[interaction.ElementID]bool, len(prev.hovered))
	for _, id := range prev.hovered {
		before[id] = true
	}

	var events []interaction.Event
	next := make([]interaction.ElementID, 0, len(inside))

	for _, id := range prev.hovered {
		if now[id] {
			next = append(next, id)
			continue
		}
		events = append(events, interaction.Out(h, id, in.Pointer))
	}
	for _, id := range inside {
		if before[id] {
			continue
		}
		before[id] = true
		events = append(events, interaction.Over(h, id, in.Pointer))
		next = append(next, id)
	}

	return events, areaHoverState{hovered: next, last: in.Pointer}
}

func releaseArea(h interaction.Handedness, prev areaHoverState, at interaction.Point) []interaction.Event {
	if len(prev.hovered) == 0 {
		return nil
	}
	events := make([]interaction.Event, 0, len(prev.hovered))
	for _, id := range prev.hovered {
		events = append(events, interaction.Out(h, id, at))
	}
	return events
}
