// Package pipeline runs one frame of classifier output through the gesture
// tracker and dispatches the resulting interaction events to a surface's
// listeners.
package pipeline

import (
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
)

// Classifier names a hand pose when the external classifier supplied no
// gesture categories for it.
type Classifier interface {
	Classify(hand *detector.HandFrame) (string, bool)
}

// Config holds the configuration of one pipeline.
type Config struct {
	// Canvas is the pixel size of the canvas the landmarks are scaled to.
	Canvas geometry.Size

	// ClientRect is where the canvas sits on the screen.
	ClientRect geometry.Rect

	// Gesture configures the gesture handlers.
	Gesture gesture.Config

	// MinGestureScore is the lowest score a gesture category is accepted at.
	MinGestureScore float64

	// SwapHandedness exchanges left and right labels, for cameras that do
	// not deliver a selfie view.
	SwapHandedness bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Canvas:          geometry.Size{Width: 640, Height: 480},
		ClientRect:      geometry.NewRect(0, 0, 640, 480),
		Gesture:         gesture.DefaultConfig(),
		MinGestureScore: 0.5,
	}
}

// Pipeline turns hand frames into interaction events for one scene.
// Process, Release and Reconfigure are called from a single frame loop;
// the lock only protects readers such as Active and Frames.
type Pipeline struct {
	mu         sync.Mutex
	config     Config
	tracker    *gesture.Tracker
	scene      interaction.Scene
	dispatcher *dispatch.Dispatcher
	classifier Classifier

	frames uint64
}

// New creates a pipeline that evaluates gestures against scene and
// dispatches through d.
func New(config Config, scene interaction.Scene, d *dispatch.Dispatcher) *Pipeline {
	if config.Canvas.Width <= 0 || config.Canvas.Height <= 0 {
		config.Canvas = DefaultConfig().Canvas
	}
	if config.ClientRect.IsZero() {
		config.ClientRect = geometry.NewRect(0, 0, config.Canvas.Width, config.Canvas.Height)
	}
	return &Pipeline{
		config:     config,
		tracker:    gesture.NewTracker(config.Gesture),
		scene:      scene,
		dispatcher: d,
	}
}

// SetClassifier sets the fallback pose classifier.
func (p *Pipeline) SetClassifier(c Classifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classifier = c
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// Reconfigure releases every gesture in progress and starts over with the
// new configuration.
func (p *Pipeline) Reconfigure(config Config) []interaction.Event {
	events := p.Release()

	p.mu.Lock()
	if config.Canvas.Width <= 0 || config.Canvas.Height <= 0 {
		config.Canvas = p.config.Canvas
	}
	if config.ClientRect.IsZero() {
		config.ClientRect = p.config.ClientRect
	}
	p.config = config
	p.tracker = gesture.NewTracker(config.Gesture)
	p.mu.Unlock()

	return events
}

// Dispatcher returns the dispatcher events are delivered through.
func (p *Pipeline) Dispatcher() *dispatch.Dispatcher {
	return p.dispatcher
}

// Process evaluates one frame, dispatches the events and returns them in
// delivery order.
func (p *Pipeline) Process(hands []detector.HandFrame) []interaction.Event {
	p.mu.Lock()
	input := p.assign(hands)
	events := p.tracker.Step(input, p.scene)
	p.frames++
	p.mu.Unlock()

	return p.dispatch(events)
}

// Release ends every gesture in progress as if both hands had been lost.
func (p *Pipeline) Release() []interaction.Event {
	p.mu.Lock()
	events := p.tracker.Release(p.scene)
	p.mu.Unlock()

	return p.dispatch(events)
}

func (p *Pipeline) dispatch(events []interaction.Event) []interaction.Event {
	ordered := dispatch.Order(events)
	if p.dispatcher != nil {
		p.dispatcher.Dispatch(ordered)
	}
	return ordered
}

// Active reports whether any gesture session is in progress.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Active()
}

// Frames returns how many frames have been processed.
func (p *Pipeline) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}
