package e2e

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/surface"
)

const airportsLayout = `{
	"name": "airports",
	"removalRegions": [{"left": 600, "top": 0, "width": 40, "height": 40}],
	"elements": [
		{"id": "a", "x": 100, "y": 100, "radius": 15, "label": "SFO"},
		{"id": "b", "x": 300, "y": 300, "radius": 15, "label": "JFK"},
		{"id": "c", "x": 500, "y": 100, "radius": 15, "label": "LHR"}
	]
}`

// handAt places a hand's index tip at client pixel (cx, cy) of the mirrored
// 640x480 canvas. An empty category leaves classification to templates.
func handAt(base detector.HandFrame, cx, cy float64, category string) detector.HandFrame {
	h := detector.PlaceIndexTip(base, (640-cx)/640, cy/480)
	h = detector.WithHandedness(h, "Right")
	h.Score = 0.9
	h.Gestures = nil
	if category != "" {
		h = detector.WithGesture(h, category, 0.9)
	}
	return h
}

type harness struct {
	t      *testing.T
	store  *store.Store
	app    *app.App
	server *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	layout, err := surface.DecodeLayout(strings.NewReader(airportsLayout))
	if err != nil {
		t.Fatalf("DecodeLayout() error = %v", err)
	}

	a := app.New(app.Config{
		Store:     s,
		PluginDir: filepath.Join(tmpDir, "plugins"),
		Layouts:   []surface.Layout{layout},
	})
	a.SetDetector(detector.NewMockDetector())
	a.LoadEnabled()

	ts := httptest.NewServer(server.New(server.Config{Store: s, App: a}))
	t.Cleanup(ts.Close)

	return &harness{t: t, store: s, app: a, server: ts}
}

func (h *harness) do(method, path, body string, want int, out interface{}) {
	h.t.Helper()

	req, err := http.NewRequest(method, h.server.URL+path, strings.NewReader(body))
	if err != nil {
		h.t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.server.Client().Do(req)
	if err != nil {
		h.t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		h.t.Fatalf("%s %s status = %d, want %d", method, path, resp.StatusCode, want)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			h.t.Fatalf("decode %s response: %v", path, err)
		}
	}
}

func (h *harness) snapshot() surface.Snapshot {
	h.t.Helper()
	var snap surface.Snapshot
	h.do(http.MethodGet, "/api/surfaces/airports", "", http.StatusOK, &snap)
	return snap
}

func element(t *testing.T, snap surface.Snapshot, id interaction.ElementID) surface.ElementState {
	t.Helper()
	for _, el := range snap.Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %s not in snapshot", id)
	return surface.ElementState{}
}

func TestE2E_CustomConfirmPose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t)

	// Record a custom pose and make it the select confirmation.
	var created struct {
		ID string `json:"id"`
	}
	h.do(http.MethodPost, "/api/templates", `{"name": "Custom_Confirm", "tolerance": 0.3}`, http.StatusCreated, &created)

	sample, _ := json.Marshal(map[string]interface{}{"landmarks": detector.ThumbsUpLandmarks().Points})
	body, _ := json.Marshal(map[string]interface{}{"samples": []json.RawMessage{sample, sample, sample}})
	h.do(http.MethodPost, "/api/templates/"+created.ID+"/samples", string(body), http.StatusCreated, nil)

	h.do(http.MethodPut, "/api/bindings", `{"select_confirm": "Custom_Confirm"}`, http.StatusOK, nil)

	// Arm over a, then confirm with the recorded pose on the next frame.
	h.app.ProcessHands([]detector.HandFrame{handAt(detector.OpenPalmLandmarks(), 100, 100, "Victory")})
	events := h.app.ProcessHands([]detector.HandFrame{handAt(detector.ThumbsUpLandmarks(), 100, 100, "")})

	got := events["airports"]
	if len(got) != 1 || got[0].Type != interaction.PointerSelect || got[0].Element != "a" {
		t.Fatalf("expected pointerselect on a, got %+v", got)
	}

	a := element(t, h.snapshot(), "a")
	if len(a.Selected) != 1 || a.Selected[0] != interaction.Right {
		t.Errorf("expected a selected by the right hand, got %v", a.Selected)
	}
	if len(a.Hovered) != 0 {
		t.Errorf("expected selecting to clear the hover, got %v", a.Hovered)
	}
}

func TestE2E_DragAndRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t)
	fist := detector.OpenPalmLandmarks()

	// Drag b to a new spot; losing the hand drops it there.
	h.app.ProcessHands([]detector.HandFrame{handAt(fist, 300, 300, "Closed_Fist")})
	h.app.ProcessHands([]detector.HandFrame{handAt(fist, 350, 320, "Closed_Fist")})
	if b := element(t, h.snapshot(), "b"); b.Dragged != interaction.Right {
		t.Errorf("expected b dragged by the right hand, got %q", b.Dragged)
	}
	h.app.ProcessHands(nil)

	b := element(t, h.snapshot(), "b")
	if math.Abs(b.X-350) > 1e-6 || math.Abs(b.Y-320) > 1e-6 {
		t.Errorf("expected b at (350,320), got (%v,%v)", b.X, b.Y)
	}
	if b.Dragged != "" {
		t.Errorf("expected b released, got %q", b.Dragged)
	}

	// Dropping c in the removal region deletes it.
	h.app.ProcessHands([]detector.HandFrame{handAt(fist, 500, 100, "Closed_Fist")})
	h.app.ProcessHands([]detector.HandFrame{handAt(fist, 620, 20, "Closed_Fist")})
	h.app.ProcessHands([]detector.HandFrame{handAt(fist, 620, 20, "Open_Palm")})

	snap := h.snapshot()
	if len(snap.Elements) != 2 {
		t.Errorf("expected 2 elements left, got %d", len(snap.Elements))
	}
	if len(snap.Removed) != 1 || snap.Removed[0] != "c" {
		t.Errorf("expected c removed, got %v", snap.Removed)
	}

	var health struct {
		Stats app.Stats `json:"stats"`
	}
	h.do(http.MethodGet, "/api/health", "", http.StatusOK, &health)
	if health.Stats.Surfaces["airports"] == 0 {
		t.Error("expected dispatched events counted for airports")
	}
}

func TestE2E_ViewsSurviveRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t)
	sess, ok := h.app.Session("airports")
	if !ok {
		t.Fatal("no airports session")
	}
	sess.Surface.SetTransform(interaction.Transform{X: 40, Y: -20, K: 2})

	if err := h.app.SaveViews(); err != nil {
		t.Fatalf("SaveViews() error = %v", err)
	}

	var views struct {
		Views []store.View `json:"views"`
	}
	h.do(http.MethodGet, "/api/views", "", http.StatusOK, &views)
	if len(views.Views) != 1 || views.Views[0].K != 2 {
		t.Fatalf("expected one saved view at scale 2, got %+v", views.Views)
	}

	layout, _ := surface.DecodeLayout(strings.NewReader(airportsLayout))
	restarted := app.New(app.Config{Store: h.store, PluginDir: t.TempDir(), Layouts: []surface.Layout{layout}})
	if err := restarted.LoadViews(); err != nil {
		t.Fatalf("LoadViews() error = %v", err)
	}
	rs, _ := restarted.Session("airports")
	if tr := rs.Surface.Transform(); tr.K != 2 || tr.X != 40 || tr.Y != -20 {
		t.Errorf("expected restored transform {40 -20 2}, got %+v", tr)
	}
}
