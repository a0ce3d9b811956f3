// Package surface is the reference consumer of interaction events: a set of
// circular elements under a pan/zoom transform that keeps per-hand hover,
// selection and drag state.
package surface

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// Element is one interactive element. Position and radius are in world
// units; the transform maps them to the screen.
type Element struct {
	ID     interaction.ElementID `json:"id"`
	X      float64               `json:"x"`
	Y      float64               `json:"y"`
	Radius float64               `json:"radius"`
	Label  string                `json:"label,omitempty"`
	Fixed  bool                  `json:"fixed,omitempty"`
}

// RenderParams are the rendering values that depend on the zoom level.
type RenderParams struct {
	StrokeWidth float64 `json:"strokeWidth"`
	LabelSize   float64 `json:"labelSize"`
}

// Config holds the static configuration of a surface.
type Config struct {
	Name string

	// Viewport is the screen area the surface occupies. A zero rect accepts
	// every point.
	Viewport geometry.Rect

	// RemovalRegions are screen areas that delete an element dropped in them.
	RemovalRegions []geometry.Rect

	BaseStrokeWidth float64
	BaseLabelSize   float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Name:            "default",
		BaseStrokeWidth: 1.5,
		BaseLabelSize:   12,
	}
}

type grip struct {
	element interaction.ElementID
	offset  geometry.Point
}

type idSet map[interaction.ElementID]bool

// Surface applies interaction events to its elements. The frame loop is the
// only writer; the lock lets HTTP handlers read snapshots concurrently.
type Surface struct {
	mu     sync.RWMutex
	config Config

	order    []interaction.ElementID
	elements map[interaction.ElementID]*Element

	transform interaction.Transform
	render    RenderParams

	hovered  map[interaction.Handedness]idSet
	selected map[interaction.Handedness]idSet
	grips    map[interaction.Handedness]grip

	removed []interaction.ElementID
}

// New creates a surface holding elements in drawing order; later elements
// are drawn on top.
func New(config Config, elements []Element) *Surface {
	if config.BaseStrokeWidth == 0 {
		config.BaseStrokeWidth = DefaultConfig().BaseStrokeWidth
	}
	if config.BaseLabelSize == 0 {
		config.BaseLabelSize = DefaultConfig().BaseLabelSize
	}

	s := &Surface{
		config:   config,
		elements: make(map[interaction.ElementID]*Element, len(elements)),
	}
	for _, e := range elements {
		if e.ID == "" {
			continue
		}
		el := e
		if _, dup := s.elements[el.ID]; !dup {
			s.order = append(s.order, el.ID)
		}
		s.elements[el.ID] = &el
	}
	s.resetLocked()
	s.setTransformLocked(interaction.Identity)
	return s
}

// Name returns the surface name.
func (s *Surface) Name() string {
	return s.config.Name
}

func (s *Surface) resetLocked() {
	s.hovered = make(map[interaction.Handedness]idSet, len(interaction.Hands))
	s.selected = make(map[interaction.Handedness]idSet, len(interaction.Hands))
	s.grips = make(map[interaction.Handedness]grip, len(interaction.Hands))
	for _, h := range interaction.Hands {
		s.hovered[h] = make(idSet)
		s.selected[h] = make(idSet)
	}
}

// Reset clears all per-hand state, as when the surface is unmounted.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// SetTransform replaces the transform, as when a saved view is restored.
func (s *Surface) SetTransform(t interaction.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTransformLocked(t)
}

func (s *Surface) setTransformLocked(t interaction.Transform) {
	if t.K <= 0 {
		t.K = 1
	}
	s.transform = t
	s.render = RenderParams{
		StrokeWidth: s.config.BaseStrokeWidth / t.K,
		LabelSize:   s.config.BaseLabelSize / t.K,
	}
}

// HandleEvent applies one interaction event. Events that reference an
// element the surface does not hold are ignored.
func (s *Surface) HandleEvent(e interaction.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Type {
	case interaction.Drag, interaction.Zoom:
		if e.Transform != nil {
			s.setTransformLocked(*e.Transform)
		}
		return
	}

	if _, ok := s.elements[e.Element]; !ok || e.Point == nil {
		return
	}
	h := e.Handedness
	if _, ok := s.hovered[h]; !ok {
		return
	}
	p := e.Point.Client()

	switch e.Type {
	case interaction.PointerOver:
		s.hovered[h][e.Element] = true

	case interaction.PointerOut:
		delete(s.hovered[h], e.Element)

	case interaction.PointerSelect:
		if s.selected[h][e.Element] {
			delete(s.selected[h], e.Element)
		} else {
			s.selected[h][e.Element] = true
		}
		delete(s.hovered[h], e.Element)

	case interaction.PointerDown:
		at := s.transform.Apply(s.worldLocked(e.Element))
		s.grips[h] = grip{element: e.Element, offset: r2.Sub(at, p)}

	case interaction.PointerMove:
		g, ok := s.grips[h]
		if !ok || g.element != e.Element {
			return
		}
		s.moveLocked(e.Element, r2.Add(p, g.offset))

	case interaction.PointerUp:
		g, ok := s.grips[h]
		if !ok || g.element != e.Element {
			return
		}
		delete(s.grips, h)
		at := r2.Add(p, g.offset)
		if s.inRemovalRegion(at) {
			s.removeLocked(e.Element)
			return
		}
		s.moveLocked(e.Element, at)
	}
}

func (s *Surface) worldLocked(id interaction.ElementID) geometry.Point {
	el := s.elements[id]
	return geometry.Pt(el.X, el.Y)
}

func (s *Surface) moveLocked(id interaction.ElementID, screen geometry.Point) {
	w := s.transform.Invert(screen)
	el := s.elements[id]
	el.X, el.Y = w.X, w.Y
}

func (s *Surface) inRemovalRegion(p geometry.Point) bool {
	for _, r := range s.config.RemovalRegions {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

func (s *Surface) removeLocked(id interaction.ElementID) {
	delete(s.elements, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	for _, h := range interaction.Hands {
		delete(s.hovered[h], id)
		delete(s.selected[h], id)
		if g, ok := s.grips[h]; ok && g.element == id {
			delete(s.grips, h)
		}
	}
	s.removed = append(s.removed, id)
}

// HitTest returns the topmost element whose drawn circle contains p.
func (s *Surface) HitTest(p geometry.Point) (interaction.ElementID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		el := s.elements[id]
		at := s.transform.Apply(geometry.Pt(el.X, el.Y))
		if geometry.Distance(at, p) <= el.Radius*s.transform.K {
			return id, true
		}
	}
	return "", false
}

// RegionQuery returns the elements whose drawn center lies inside c, in
// drawing order.
func (s *Surface) RegionQuery(c geometry.Circle) []interaction.ElementID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []interaction.ElementID
	for _, id := range s.order {
		el := s.elements[id]
		if c.Contains(s.transform.Apply(geometry.Pt(el.X, el.Y))) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ScreenPosition returns where an element's center is drawn.
func (s *Surface) ScreenPosition(id interaction.ElementID) (geometry.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.elements[id]; !ok {
		return geometry.Point{}, false
	}
	return s.transform.Apply(s.worldLocked(id)), true
}

// Draggable reports whether an element exists and is not fixed in place.
func (s *Surface) Draggable(id interaction.ElementID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.elements[id]
	return ok && !el.Fixed
}

// Transform returns the current pan/zoom.
func (s *Surface) Transform() interaction.Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform
}

// Contains reports whether p lies inside the surface's viewport.
func (s *Surface) Contains(p geometry.Point) bool {
	if s.config.Viewport.IsZero() {
		return true
	}
	return s.config.Viewport.Contains(p)
}

// Render returns the scale-dependent rendering parameters.
func (s *Surface) Render() RenderParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.render
}

// Element returns a copy of an element.
func (s *Surface) Element(id interaction.ElementID) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// Hovered reports whether hand h hovers an element.
func (s *Surface) Hovered(h interaction.Handedness, id interaction.ElementID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hovered[h][id]
}

// Selected reports whether hand h has selected an element.
func (s *Surface) Selected(h interaction.Handedness, id interaction.ElementID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[h][id]
}

// Styled reports whether an element should be drawn with hover styling:
// some hand hovers it and the other hand is not dragging it.
func (s *Surface) Styled(id interaction.ElementID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.styledLocked(id)
}

func (s *Surface) styledLocked(id interaction.ElementID) bool {
	for _, h := range interaction.Hands {
		if !s.hovered[h][id] {
			continue
		}
		if g, ok := s.grips[h.Opposite()]; ok && g.element == id {
			continue
		}
		return true
	}
	return false
}

// Grip returns the element hand h is dragging and its captured offset.
func (s *Surface) Grip(h interaction.Handedness) (interaction.ElementID, geometry.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grips[h]
	return g.element, g.offset, ok
}

// Removed returns the elements deleted through removal regions, oldest
// first.
func (s *Surface) Removed() []interaction.ElementID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]interaction.ElementID, len(s.removed))
	copy(out, s.removed)
	return out
}

// ElementState is an element as it is currently drawn.
type ElementState struct {
	Element
	Screen   geometry.Point           `json:"screen"`
	Hovered  []interaction.Handedness `json:"hovered,omitempty"`
	Selected []interaction.Handedness `json:"selected,omitempty"`
	Dragged  interaction.Handedness   `json:"dragged,omitempty"`
	Styled   bool                     `json:"styled"`
}

// Snapshot is a consistent copy of the whole surface.
type Snapshot struct {
	Name      string                  `json:"name"`
	Transform interaction.Transform   `json:"transform"`
	Render    RenderParams            `json:"render"`
	Elements  []ElementState          `json:"elements"`
	Removed   []interaction.ElementID `json:"removed,omitempty"`
}

// Snapshot returns the surface state in drawing order.
func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Name:      s.config.Name,
		Transform: s.transform,
		Render:    s.render,
		Elements:  make([]ElementState, 0, len(s.order)),
		Removed:   append([]interaction.ElementID(nil), s.removed...),
	}
	for _, id := range s.order {
		el := s.elements[id]
		st := ElementState{
			Element: *el,
			Screen:  s.transform.Apply(geometry.Pt(el.X, el.Y)),
			Styled:  s.styledLocked(id),
		}
		for _, h := range interaction.Hands {
			if s.hovered[h][id] {
				st.Hovered = append(st.Hovered, h)
			}
			if s.selected[h][id] {
				st.Selected = append(st.Selected, h)
			}
			if g, ok := s.grips[h]; ok && g.element == id {
				st.Dragged = h
			}
		}
		snap.Elements = append(snap.Elements, st)
	}
	return snap
}

// SelectedIDs returns every element selected by hand h, sorted.
func (s *Surface) SelectedIDs(h interaction.Handedness) []interaction.ElementID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]interaction.ElementID, 0, len(s.selected[h]))
	for id := range s.selected[h] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
