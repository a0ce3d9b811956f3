package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed set of hands or a scripted sequence, one entry per call.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandFrame
	sequence [][]HandFrame
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence scripts one result per Detect call. Once the sequence is
// exhausted Detect falls back to the hands set with SetHands.
func (m *MockDetector) SetSequence(frames [][]HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// WithGesture returns a copy of h classified as a single gesture.
func WithGesture(h HandFrame, name string, score float64) HandFrame {
	h.Gestures = []Category{{Name: name, Score: score}}
	return h
}

// WithHandedness returns a copy of h labelled as the given hand.
func WithHandedness(h HandFrame, label string) HandFrame {
	h.Handedness = label
	return h
}

// PlaceIndexTip returns a copy of h translated so the index fingertip sits
// at the normalized position (x, y).
func PlaceIndexTip(h HandFrame, x, y float64) HandFrame {
	dx := x - h.Points[IndexTip].X
	dy := y - h.Points[IndexTip].Y
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// ThumbsUpLandmarks returns a preset HandFrame representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandFrame {
	hand := HandFrame{
		Handedness: "Right",
		Score:      0.95,
		Gestures:   []Category{{Name: "Thumb_Up", Score: 0.9}},
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	hand.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	hand.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	hand.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	hand.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	hand.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	hand.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	hand.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	hand.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	hand.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	hand.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	hand.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	hand.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	hand.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	hand.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	hand.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	hand.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return hand
}

// OpenPalmLandmarks returns a preset HandFrame representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandFrame {
	hand := HandFrame{
		Handedness: "Right",
		Score:      0.95,
		Gestures:   []Category{{Name: "Open_Palm", Score: 0.9}},
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	hand.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	hand.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	hand.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	hand.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	hand.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	hand.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	hand.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	hand.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	hand.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	hand.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	hand.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	hand.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	hand.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	hand.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	hand.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	hand.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	hand.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	hand.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return hand
}

// PointingUpLandmarks returns a preset HandFrame with only the index finger extended.
func PointingUpLandmarks() HandFrame {
	hand := ThumbsUpLandmarks()
	hand.Gestures = []Category{{Name: "Pointing_Up", Score: 0.9}}

	// Thumb tucked across the palm
	hand.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.70, Z: -0.01}
	hand.Points[ThumbIP] = Point3D{X: 0.53, Y: 0.68, Z: -0.02}
	hand.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.68, Z: -0.03}

	// Index finger extended upward
	hand.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55, Z: 0.0}
	hand.Points[IndexDIP] = Point3D{X: 0.56, Y: 0.45, Z: 0.0}
	hand.Points[IndexTip] = Point3D{X: 0.56, Y: 0.36, Z: 0.0}

	return hand
}
