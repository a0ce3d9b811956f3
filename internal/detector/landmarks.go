// Package detector provides the boundary to the external hand classifier:
// per-frame landmarks, handedness and gesture guesses.
package detector

import (
	"math"
	"sort"
	"strings"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Fingertips lists the five fingertip landmarks, thumb first.
var Fingertips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D represents a normalized landmark with x, y in [0,1] and relative depth z.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Category is one ranked gesture guess from the classifier.
type Category struct {
	Name  string  `json:"categoryName"`
	Score float64 `json:"score"`
}

// HandFrame is one tracked hand in one frame. It is discarded after the
// frame is processed.
type HandFrame struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
	Gestures   []Category            `json:"gestures,omitempty"`
}

// Label returns the handedness in lower case ("left" or "right"), or an empty
// string when the classifier gave none.
func (h *HandFrame) Label() string {
	return strings.ToLower(strings.TrimSpace(h.Handedness))
}

// TopGesture returns the highest scoring gesture at or above minScore.
func (h *HandFrame) TopGesture(minScore float64) (Category, bool) {
	if h == nil || len(h.Gestures) == 0 {
		return Category{}, false
	}

	ranked := make([]Category, len(h.Gestures))
	copy(ranked, h.Gestures)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if ranked[0].Score < minScore || ranked[0].Name == "" {
		return Category{}, false
	}
	return ranked[0], true
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new HandFrame instance with normalized points; gestures are not copied.
func (h *HandFrame) Normalize() *HandFrame {
	if h == nil {
		return nil
	}

	normalized := &HandFrame{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])

	// Avoid division by zero
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
