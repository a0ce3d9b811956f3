package gesture

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Trainer turns recorded pose samples into template landmarks.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Sample is one recorded pose. Landmarks are raw classifier output; they are
// normalized before averaging so samples taken at different positions and
// distances from the camera agree.
type Sample struct {
	Landmarks []detector.Point3D `json:"landmarks"`
	Timestamp int64              `json:"timestamp"`
}

// TrainStatic averages the normalized landmarks of every sample.
func (t *Trainer) TrainStatic(samples []json.RawMessage) ([]detector.Point3D, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	normalized := make([][detector.NumLandmarks]detector.Point3D, 0, len(samples))
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}

		if len(sample.Landmarks) != detector.NumLandmarks {
			return nil, fmt.Errorf("sample %d has %d landmarks, expected %d", i, len(sample.Landmarks), detector.NumLandmarks)
		}

		var hand detector.HandFrame
		copy(hand.Points[:], sample.Landmarks)
		normalized = append(normalized, hand.Normalize().Points)
	}

	averaged := make([]detector.Point3D, detector.NumLandmarks)
	n := float64(len(normalized))

	for i := 0; i < detector.NumLandmarks; i++ {
		var sumX, sumY, sumZ float64
		for _, points := range normalized {
			sumX += points[i].X
			sumY += points[i].Y
			sumZ += points[i].Z
		}
		averaged[i] = detector.Point3D{
			X: sumX / n,
			Y: sumY / n,
			Z: sumZ / n,
		}
	}

	return averaged, nil
}
