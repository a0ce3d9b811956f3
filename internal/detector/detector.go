package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrNoService is returned when the landmark service script cannot be found.
var ErrNoService = errors.New("mediapipe_service.py not found")

// Detector defines the interface for the external hand classifier.
type Detector interface {
	// Detect analyzes a video frame and returns every tracked hand with its
	// landmarks, handedness and ranked gesture guesses.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandFrame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleShutdown stops the service process after this many seconds without frames.
	IdleShutdown int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleShutdown:    30,
	}
}
