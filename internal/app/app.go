// Package app wires the camera, the hand classifier and one gesture pipeline
// per surface into the running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/pipeline"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/surface"
)

// PluginTimeoutMs bounds a single plugin execution.
const PluginTimeoutMs = 5000

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	Camera       capture.Config
	MotionThresh float64

	// Layouts describe the surfaces to drive. With none, a single empty
	// surface named "default" is created.
	Layouts []surface.Layout

	// ClientRect is where the camera canvas sits on the screen. Zero means
	// the canvas itself at the origin.
	ClientRect geometry.Rect
}

// Session is one surface with the pipeline and dispatcher that drive it.
type Session struct {
	Surface    *surface.Surface
	Pipeline   *pipeline.Pipeline
	Dispatcher *dispatch.Dispatcher
}

// Name returns the surface name.
func (s *Session) Name() string {
	return s.Surface.Name()
}

// App is the main application: it reads frames, classifies hands and feeds
// every session's pipeline.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	gate       *capture.Gate
	detector   detector.Detector
	matcher    *gesture.StaticMatcher
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	relay      *plugin.Relay

	sessions []*Session

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}

	// frameMu serializes frames with reconfiguration from other goroutines.
	frameMu sync.Mutex

	lastMu    sync.Mutex
	lastEvent interaction.Event
	lastAt    time.Time

	preview preview
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		motion:     capture.NewMotionDetector(config.MotionThresh),
		gate:       capture.NewGate(),
		matcher:    gesture.NewStaticMatcher(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(PluginTimeoutMs),
	}
	a.relay = plugin.NewRelay(a.pluginMgr, a.pluginExec, plugin.DefaultQueueSize)

	layouts := config.Layouts
	if len(layouts) == 0 {
		layouts = []surface.Layout{{Name: surface.DefaultConfig().Name}}
	}
	for _, l := range layouts {
		a.addSession(surface.FromLayout(l))
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

func (a *App) addSession(s *surface.Surface) {
	d := dispatch.New()
	p := pipeline.New(a.pipelineConfig(pipeline.DefaultConfig()), s, d)
	p.SetClassifier(a.matcher)

	d.Subscribe(s)
	d.Subscribe(a.relay.Listener(s.Name()))
	d.Subscribe(dispatch.ListenerFunc(a.recordEvent))

	a.sessions = append(a.sessions, &Session{Surface: s, Pipeline: p, Dispatcher: d})
}

// pipelineConfig fills in the canvas from the camera and the client rect
// from the app configuration.
func (a *App) pipelineConfig(c pipeline.Config) pipeline.Config {
	c.Canvas = a.camera.Size()
	c.ClientRect = a.config.ClientRect
	if c.ClientRect.IsZero() {
		c.ClientRect = geometry.NewRect(0, 0, c.Canvas.Width, c.Canvas.Height)
	}
	return c
}

func (a *App) recordEvent(e interaction.Event) {
	a.lastMu.Lock()
	a.lastEvent = e
	a.lastAt = time.Now()
	a.lastMu.Unlock()
}

// LastEvent returns the most recently dispatched event and when it was
// dispatched. ok is false before the first event.
func (a *App) LastEvent() (e interaction.Event, at time.Time, ok bool) {
	a.lastMu.Lock()
	defer a.lastMu.Unlock()
	return a.lastEvent, a.lastAt, !a.lastAt.IsZero()
}

// SetEnabled enables or disables gesture detection. Disabling releases every
// gesture in progress so no element is left hovered or grabbed.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if !changed {
		return
	}
	if !enabled {
		a.Release()
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingEnabled, fmt.Sprint(enabled)); err != nil {
			log.Printf("Failed to persist enabled state: %v", err)
		}
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// LoadSettings applies the stored bindings and settings to every pipeline.
// Gestures in progress are released.
func (a *App) LoadSettings() error {
	config := pipeline.DefaultConfig()

	if st := a.config.Store; st != nil {
		stored, err := st.Bindings().All()
		if err != nil {
			return fmt.Errorf("failed to load bindings: %w", err)
		}
		overrides := make(gesture.Bindings, len(stored))
		for role, category := range stored {
			overrides[gesture.Role(role)] = category
		}
		bindings := gesture.DefaultBindings().Merge(overrides)
		if err := bindings.Validate(); err != nil {
			log.Printf("Stored bindings invalid (%v), using defaults", err)
			bindings = gesture.DefaultBindings()
		}
		config.Gesture.Bindings = bindings

		settings := st.Settings()
		config.Gesture.ConfirmWindow = settings.Int(store.SettingConfirmWindow, config.Gesture.ConfirmWindow)
		config.MinGestureScore = settings.Float(store.SettingMinGestureScore, config.MinGestureScore)
		config.SwapHandedness = settings.Bool(store.SettingSwapHandedness, config.SwapHandedness)
	}

	a.reconfigure(config)
	return nil
}

func (a *App) reconfigure(config pipeline.Config) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	for _, s := range a.sessions {
		s.Pipeline.Reconfigure(a.pipelineConfig(config))
	}
}

// LoadTemplates replaces the fallback classifier's templates with the
// trained templates in the store. Templates without landmarks are skipped.
func (a *App) LoadTemplates() error {
	if a.config.Store == nil {
		return nil
	}

	templates, err := a.config.Store.Templates().List()
	if err != nil {
		return err
	}

	trained := make([]*gesture.Template, 0, len(templates))
	for _, t := range templates {
		landmarks, err := a.config.Store.Templates().GetLandmarks(t.ID)
		if err != nil {
			log.Printf("Failed to load landmarks for %s: %v", t.Name, err)
			continue
		}
		if len(landmarks) == 0 {
			continue
		}
		trained = append(trained, &gesture.Template{
			ID:        t.ID,
			Name:      t.Name,
			Tolerance: t.Tolerance,
			Landmarks: storeLandmarksToDetector(landmarks),
		})
	}
	a.matcher.SetTemplates(trained)

	log.Printf("Loaded %d of %d templates from database", len(trained), len(templates))
	return nil
}

// storeLandmarksToDetector converts store.Landmark slice to detector.Point3D slice.
func storeLandmarksToDetector(landmarks []store.Landmark) []detector.Point3D {
	points := make([]detector.Point3D, len(landmarks))
	for i, l := range landmarks {
		points[i] = detector.Point3D{X: l.X, Y: l.Y, Z: l.Z}
	}
	return points
}

// LoadViews restores every surface's saved pan and zoom.
func (a *App) LoadViews() error {
	if a.config.Store == nil {
		return nil
	}

	for _, s := range a.sessions {
		v, err := a.config.Store.Views().GetByName(s.Name())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load view %s: %w", s.Name(), err)
		}
		s.Surface.SetTransform(interaction.Transform{K: v.K, X: v.X, Y: v.Y})
	}
	return nil
}

// SaveViews stores every surface's current pan and zoom.
func (a *App) SaveViews() error {
	if a.config.Store == nil {
		return nil
	}

	var errs []error
	for _, s := range a.sessions {
		t := s.Surface.Transform()
		v := &store.View{ID: uuid.NewString(), Name: s.Name(), K: t.K, X: t.X, Y: t.Y}
		if err := a.config.Store.Views().Save(v); err != nil {
			errs = append(errs, fmt.Errorf("failed to save view %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LoadRelays installs the enabled relays as plugin routes.
func (a *App) LoadRelays() error {
	if a.config.Store == nil {
		return nil
	}

	relays, err := a.config.Store.Relays().ListEnabled()
	if err != nil {
		return err
	}

	routes := make([]plugin.Route, 0, len(relays))
	for _, r := range relays {
		routes = append(routes, plugin.Route{
			EventType: interaction.Type(r.EventType),
			Plugin:    r.PluginName,
			Action:    r.ActionName,
			Config:    r.Config,
		})
	}
	a.relay.SetRoutes(routes)
	return nil
}

// LoadEnabled restores the persisted enabled state. Detection is enabled
// unless it was switched off.
func (a *App) LoadEnabled() {
	enabled := true
	if a.config.Store != nil {
		enabled = a.config.Store.Settings().Bool(store.SettingEnabled, true)
	}
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.gate.FPS())

	// The camera may have granted a different resolution.
	for _, s := range a.sessions {
		s.Pipeline.Reconfigure(a.pipelineConfig(s.Pipeline.Config()))
	}

	a.relay.Start(context.Background())

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.run(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the frame loop, releases every gesture, saves the views and
// releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.Release()
	if err := a.SaveViews(); err != nil {
		log.Printf("Error saving views: %v", err)
	}

	a.relay.Stop()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Release ends every gesture in progress on every surface.
func (a *App) Release() {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	for _, s := range a.sessions {
		s.Pipeline.Release()
	}
}

// ProcessHands feeds one frame of classified hands to every session and
// returns the events each surface received.
func (a *App) ProcessHands(hands []detector.HandFrame) map[string][]interaction.Event {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	out := make(map[string][]interaction.Event, len(a.sessions))
	for _, s := range a.sessions {
		if events := s.Pipeline.Process(hands); len(events) > 0 {
			out[s.Name()] = events
		}
	}
	return out
}

// Active reports whether any surface has a gesture in progress.
func (a *App) Active() bool {
	for _, s := range a.sessions {
		if s.Pipeline.Active() {
			return true
		}
	}
	return false
}

// Subscribe registers fn for the events of every surface. The returned
// function removes the subscription.
func (a *App) Subscribe(fn func(surface string, e interaction.Event)) func() {
	subs := make([]*dispatch.Subscription, 0, len(a.sessions))
	for _, s := range a.sessions {
		name := s.Name()
		subs = append(subs, s.Dispatcher.Subscribe(dispatch.ListenerFunc(func(e interaction.Event) {
			fn(name, e)
		})))
	}
	return func() {
		for _, sub := range subs {
			sub.Remove()
		}
	}
}

// Sessions returns every session in layout order.
func (a *App) Sessions() []*Session {
	return a.sessions
}

// Surfaces returns every surface in layout order.
func (a *App) Surfaces() []*surface.Surface {
	out := make([]*surface.Surface, len(a.sessions))
	for i, s := range a.sessions {
		out[i] = s.Surface
	}
	return out
}

// Stats summarizes what the app has done since it was created.
type Stats struct {
	Enabled    bool              `json:"enabled"`
	Active     bool              `json:"active"`
	FPS        int               `json:"fps"`
	Frames     uint64            `json:"frames"`
	Dispatched uint64            `json:"dispatched"`
	Templates  int               `json:"templates"`
	Plugins    int               `json:"plugins"`
	Relay      plugin.RelayStats `json:"relay"`
	Surfaces   map[string]uint64 `json:"surfaces"`
}

// Stats returns the current counters. Frames counts the frames evaluated by
// the first surface's pipeline; every pipeline sees the same frames.
func (a *App) Stats() Stats {
	st := Stats{
		Enabled:   a.IsEnabled(),
		Active:    a.Active(),
		FPS:       a.Camera().FPS(),
		Templates: a.matcher.Len(),
		Plugins:   len(a.pluginMgr.List()),
		Relay:     a.relay.Stats(),
		Surfaces:  make(map[string]uint64, len(a.sessions)),
	}
	for i, s := range a.sessions {
		if i == 0 {
			st.Frames = s.Pipeline.Frames()
		}
		n := s.Dispatcher.Dispatched()
		st.Dispatched += n
		st.Surfaces[s.Name()] = n
	}
	return st
}

// Session returns the session of the named surface.
func (a *App) Session(name string) (*Session, bool) {
	for _, s := range a.sessions {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Matcher returns the fallback pose classifier.
func (a *App) Matcher() *gesture.StaticMatcher {
	return a.matcher
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Relay returns the plugin relay.
func (a *App) Relay() *plugin.Relay {
	return a.relay
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
