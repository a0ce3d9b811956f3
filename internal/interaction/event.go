// Package interaction defines the canonical interaction vocabulary shared by
// the gesture pipeline and every visualization that consumes it.
package interaction

import (
	"github.com/ayusman/mudra/internal/geometry"
)

// Handedness labels a tracked hand.
type Handedness string

const (
	Left  Handedness = "left"
	Right Handedness = "right"
)

// Hands lists both hands in the fixed order they are evaluated each frame.
var Hands = [2]Handedness{Left, Right}

// Opposite returns the other hand.
func (h Handedness) Opposite() Handedness {
	if h == Left {
		return Right
	}
	return Left
}

// Type discriminates interaction events.
type Type string

const (
	PointerOver   Type = "pointerover"
	PointerOut    Type = "pointerout"
	PointerSelect Type = "pointerselect"
	PointerDown   Type = "pointerdown"
	PointerMove   Type = "pointermove"
	PointerUp     Type = "pointerup"
	Drag          Type = "drag"
	Zoom          Type = "zoom"
)

// Types lists every event type.
var Types = []Type{PointerOver, PointerOut, PointerSelect, PointerDown, PointerMove, PointerUp, Drag, Zoom}

// Valid reports whether t is one of Types.
func (t Type) Valid() bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// ElementID references an interactive element owned by a visualization.
type ElementID string

// Point is an interaction point in canvas pixels and in mirrored client
// screen pixels.
type Point struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// NewPoint combines a canvas point and a client point.
func NewPoint(canvas, client geometry.Point) Point {
	return Point{X: canvas.X, Y: canvas.Y, ClientX: client.X, ClientY: client.Y}
}

// Client returns the client screen position.
func (p Point) Client() geometry.Point {
	return geometry.Pt(p.ClientX, p.ClientY)
}

// Event is one canonical interaction event. Events are values; a consumer
// receiving one can never mutate what another consumer sees.
type Event struct {
	Type       Type       `json:"type"`
	Element    ElementID  `json:"element,omitempty"`
	Handedness Handedness `json:"handedness,omitempty"`
	Point      *Point     `json:"point,omitempty"`
	Transform  *Transform `json:"transform,omitempty"`
}

func pointerEvent(typ Type, h Handedness, el ElementID, p Point) Event {
	return Event{Type: typ, Element: el, Handedness: h, Point: &p}
}

// Over reports that hand h started hovering el.
func Over(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerOver, h, el, p)
}

// Out reports that hand h stopped hovering el.
func Out(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerOut, h, el, p)
}

// Select reports a confirmed selection of el by hand h.
func Select(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerSelect, h, el, p)
}

// Down reports that hand h grabbed el.
func Down(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerDown, h, el, p)
}

// Move reports that the element grabbed by hand h follows p.
func Move(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerMove, h, el, p)
}

// Up reports that hand h released el at p.
func Up(h Handedness, el ElementID, p Point) Event {
	return pointerEvent(PointerUp, h, el, p)
}

// DragTo reports a pan by hand h to the absolute transform t.
func DragTo(h Handedness, t Transform) Event {
	return Event{Type: Drag, Handedness: h, Transform: &t}
}

// ZoomTo reports a two-handed zoom to the absolute transform t.
func ZoomTo(t Transform) Event {
	return Event{Type: Zoom, Transform: &t}
}
