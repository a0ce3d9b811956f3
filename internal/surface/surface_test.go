package surface

import (
	"math"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
)

func pt(x, y float64) interaction.Point {
	return interaction.Point{X: x, Y: y, ClientX: x, ClientY: y}
}

func testSurface() *Surface {
	config := DefaultConfig()
	config.Name = "test"
	config.RemovalRegions = []geometry.Rect{geometry.NewRect(0, 500, 100, 100)}
	return New(config, []Element{
		{ID: "a", X: 100, Y: 100, Radius: 10},
		{ID: "b", X: 105, Y: 100, Radius: 10},
		{ID: "pin", X: 300, Y: 300, Radius: 10, Fixed: true},
	})
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSurface_Hover(t *testing.T) {
	s := testSurface()

	s.HandleEvent(interaction.Over(interaction.Left, "a", pt(100, 100)))
	s.HandleEvent(interaction.Over(interaction.Right, "a", pt(100, 100)))

	s.HandleEvent(interaction.Out(interaction.Left, "a", pt(100, 100)))
	if s.Hovered(interaction.Left, "a") {
		t.Error("expected left hover removed")
	}
	if !s.Hovered(interaction.Right, "a") {
		t.Error("expected right hover to survive the left hand's pointerout")
	}
	if !s.Styled("a") {
		t.Error("expected a to stay styled")
	}
}

func TestSurface_StyledLockedByOppositeHand(t *testing.T) {
	s := testSurface()

	s.HandleEvent(interaction.Down(interaction.Left, "a", pt(100, 100)))
	s.HandleEvent(interaction.Over(interaction.Right, "a", pt(100, 100)))

	if s.Styled("a") {
		t.Error("expected no hover styling while the other hand drags the element")
	}

	s.HandleEvent(interaction.Up(interaction.Left, "a", pt(100, 100)))
	if !s.Styled("a") {
		t.Error("expected hover styling once the drag ends")
	}
}

func TestSurface_Select(t *testing.T) {
	s := testSurface()

	s.HandleEvent(interaction.Over(interaction.Right, "a", pt(100, 100)))
	s.HandleEvent(interaction.Select(interaction.Right, "a", pt(100, 100)))

	if !s.Selected(interaction.Right, "a") {
		t.Fatal("expected a selected")
	}
	if s.Hovered(interaction.Right, "a") {
		t.Error("expected selection to clear hover attribution")
	}
	if s.Selected(interaction.Left, "a") {
		t.Error("expected selection to belong to the right hand only")
	}

	s.HandleEvent(interaction.Out(interaction.Right, "a", pt(0, 0)))
	if !s.Selected(interaction.Right, "a") {
		t.Error("expected selection to survive hover loss")
	}

	s.HandleEvent(interaction.Select(interaction.Right, "a", pt(100, 100)))
	if s.Selected(interaction.Right, "a") {
		t.Error("expected second select to toggle off")
	}
}

func TestSurface_Drag(t *testing.T) {
	s := testSurface()
	s.SetTransform(interaction.Transform{X: 10, Y: 0, K: 2})

	// a is drawn at (210, 200)
	s.HandleEvent(interaction.Down(interaction.Right, "a", pt(205, 198)))
	_, offset, ok := s.Grip(interaction.Right)
	if !ok || !near(offset.X, 5) || !near(offset.Y, 2) {
		t.Fatalf("expected offset (5, 2), got %v %v", offset, ok)
	}

	s.HandleEvent(interaction.Move(interaction.Right, "a", pt(300, 300)))
	at, _ := s.ScreenPosition("a")
	if !near(at.X, 305) || !near(at.Y, 302) {
		t.Errorf("expected a drawn at (305, 302), got %v", at)
	}

	s.HandleEvent(interaction.Up(interaction.Right, "a", pt(400, 300)))
	at, _ = s.ScreenPosition("a")
	if !near(at.X, 405) || !near(at.Y, 302) {
		t.Errorf("expected a committed at (405, 302), got %v", at)
	}
	if _, _, ok := s.Grip(interaction.Right); ok {
		t.Error("expected grip released")
	}

	t.Run("move from another hand is ignored", func(t *testing.T) {
		s.HandleEvent(interaction.Move(interaction.Left, "a", pt(0, 0)))
		after, _ := s.ScreenPosition("a")
		if after != at {
			t.Errorf("expected a to stay at %v, got %v", at, after)
		}
	})
}

func TestSurface_RemovalRegion(t *testing.T) {
	s := testSurface()

	s.HandleEvent(interaction.Select(interaction.Left, "a", pt(100, 100)))
	s.HandleEvent(interaction.Down(interaction.Right, "a", pt(100, 100)))
	s.HandleEvent(interaction.Up(interaction.Right, "a", pt(50, 550)))

	if _, ok := s.Element("a"); ok {
		t.Fatal("expected a deleted")
	}
	if s.Selected(interaction.Left, "a") {
		t.Error("expected selection of a deleted element to go away")
	}
	if removed := s.Removed(); len(removed) != 1 || removed[0] != "a" {
		t.Errorf("expected [a] removed, got %v", removed)
	}

	// Events for a deleted element are no-ops.
	s.HandleEvent(interaction.Over(interaction.Right, "a", pt(0, 0)))
	if s.Hovered(interaction.Right, "a") {
		t.Error("expected no hover on a deleted element")
	}
}

func TestSurface_Transform(t *testing.T) {
	s := testSurface()

	zoom := interaction.Transform{X: -100, Y: -50, K: 2}
	s.HandleEvent(interaction.ZoomTo(zoom))

	if s.Transform() != zoom {
		t.Errorf("expected transform %v, got %v", zoom, s.Transform())
	}
	r := s.Render()
	if !near(r.StrokeWidth, 0.75) || !near(r.LabelSize, 6) {
		t.Errorf("expected render params scaled by 1/2, got %+v", r)
	}

	pan := interaction.Transform{X: 0, Y: 0, K: 2}
	s.HandleEvent(interaction.DragTo(interaction.Left, pan))
	if s.Transform() != pan {
		t.Errorf("expected transform %v, got %v", pan, s.Transform())
	}
}

func TestSurface_Queries(t *testing.T) {
	s := testSurface()

	t.Run("hit test returns topmost", func(t *testing.T) {
		id, ok := s.HitTest(geometry.Pt(103, 100))
		if !ok || id != "b" {
			t.Errorf("expected b, got %q %v", id, ok)
		}
		if _, ok := s.HitTest(geometry.Pt(500, 500)); ok {
			t.Error("expected no hit on empty space")
		}
	})

	t.Run("hit radius scales with zoom", func(t *testing.T) {
		z := testSurface()
		z.SetTransform(interaction.Transform{K: 2})
		if id, ok := z.HitTest(geometry.Pt(600, 615)); !ok || id != "pin" {
			t.Errorf("expected pin, got %q %v", id, ok)
		}
	})

	t.Run("region query in drawing order", func(t *testing.T) {
		ids := s.RegionQuery(geometry.Circle{Center: geometry.Pt(102, 100), Radius: 5})
		if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
			t.Errorf("expected [a b], got %v", ids)
		}
	})

	t.Run("fixed elements are not draggable", func(t *testing.T) {
		if s.Draggable("pin") || !s.Draggable("a") || s.Draggable("missing") {
			t.Error("unexpected draggable result")
		}
	})
}

func TestSurface_Reset(t *testing.T) {
	s := testSurface()
	s.HandleEvent(interaction.Over(interaction.Left, "a", pt(0, 0)))
	s.HandleEvent(interaction.Down(interaction.Right, "b", pt(105, 100)))

	s.Reset()

	if s.Hovered(interaction.Left, "a") {
		t.Error("expected hover cleared")
	}
	if _, _, ok := s.Grip(interaction.Right); ok {
		t.Error("expected grip cleared")
	}
}

func TestSurface_Snapshot(t *testing.T) {
	s := testSurface()
	s.HandleEvent(interaction.Over(interaction.Left, "a", pt(0, 0)))
	s.HandleEvent(interaction.Down(interaction.Right, "b", pt(105, 100)))

	snap := s.Snapshot()
	if snap.Name != "test" || len(snap.Elements) != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	a := snap.Elements[0]
	if len(a.Hovered) != 1 || a.Hovered[0] != interaction.Left || !a.Styled {
		t.Errorf("expected a hovered by left, got %+v", a)
	}
	if snap.Elements[1].Dragged != interaction.Right {
		t.Errorf("expected b dragged by right, got %q", snap.Elements[1].Dragged)
	}
}

// Drives the surface from the gesture tracker through a dispatcher and
// checks the element stays at pointer plus grab offset every frame.
func TestSurface_TrackerDrag(t *testing.T) {
	s := testSurface()
	tracker := gesture.NewTracker(gesture.DefaultConfig())
	d := dispatch.New()
	d.Subscribe(s)

	frame := func(h gesture.Hand) {
		d.Dispatch(tracker.Step(map[interaction.Handedness]gesture.Hand{interaction.Right: h}, s))
	}

	frame(gesture.At("Closed_Fist", 92, 97))
	id, offset, ok := s.Grip(interaction.Right)
	if !ok || id != "a" {
		t.Fatalf("expected surface grip on a after pointerdown, got %q %v", id, ok)
	}

	for _, p := range []geometry.Point{{X: 150, Y: 150}, {X: 200, Y: 120}, {X: 40, Y: 60}} {
		frame(gesture.At("Closed_Fist", p.X, p.Y))
		at, _ := s.ScreenPosition(id)
		if !near(at.X, p.X+offset.X) || !near(at.Y, p.Y+offset.Y) {
			t.Errorf("expected a at %v + %v, got %v", p, offset, at)
		}
	}

	frame(gesture.Absent)
	if _, _, ok := s.Grip(interaction.Right); ok {
		t.Error("expected hand loss to release the grip")
	}
}

// Zooming through the tracker keeps the midpoint fixed on the surface.
func TestSurface_TrackerZoom(t *testing.T) {
	s := testSurface()
	tracker := gesture.NewTracker(gesture.DefaultConfig())
	d := dispatch.New()
	d.Subscribe(s)

	step := func(lx, rx float64) {
		d.Dispatch(tracker.Step(map[interaction.Handedness]gesture.Hand{
			interaction.Left:  gesture.At("ILoveYou", lx, 100),
			interaction.Right: gesture.At("ILoveYou", rx, 100),
		}, s))
	}

	step(100, 300)
	step(50, 350)
	first := s.Transform()
	step(50, 350)

	if s.Transform() != first {
		t.Errorf("expected identical input to keep %v, got %v", first, s.Transform())
	}
	if !near(first.K, 1.5) {
		t.Errorf("expected scale 1.5, got %f", first.K)
	}
	if r := s.Render(); !near(r.StrokeWidth, DefaultConfig().BaseStrokeWidth/1.5) {
		t.Errorf("expected stroke width recomputed, got %f", r.StrokeWidth)
	}
}

func TestDecodeLayout(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		l, err := DecodeLayout(strings.NewReader(`{
			"name": "airports",
			"viewport": {"left": 0, "top": 0, "width": 800, "height": 600},
			"removalRegions": [{"left": 700, "top": 500, "width": 100, "height": 100}],
			"strokeWidth": 2,
			"elements": [
				{"id": "YYZ", "x": 10, "y": 20, "radius": 6, "label": "Toronto"},
				{"id": "LHR", "x": 30, "y": 20, "radius": 6, "fixed": true}
			]
		}`))
		if err != nil {
			t.Fatalf("DecodeLayout() error = %v", err)
		}

		s := FromLayout(l)
		if s.Name() != "airports" {
			t.Errorf("expected name airports, got %s", s.Name())
		}
		if s.Contains(geometry.Pt(900, 10)) {
			t.Error("expected viewport to exclude (900, 10)")
		}
		if s.Draggable("LHR") {
			t.Error("expected LHR fixed")
		}
		if r := s.Render(); r.StrokeWidth != 2 || r.LabelSize != DefaultConfig().BaseLabelSize {
			t.Errorf("unexpected render params %+v", r)
		}
	})

	invalid := map[string]string{
		"malformed":    `{`,
		"no name":      `{"elements": []}`,
		"missing id":   `{"name": "x", "elements": [{"radius": 1}]}`,
		"duplicate id": `{"name": "x", "elements": [{"id": "a", "radius": 1}, {"id": "a", "radius": 1}]}`,
		"zero radius":  `{"name": "x", "elements": [{"id": "a"}]}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeLayout(strings.NewReader(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
