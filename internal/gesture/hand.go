package gesture

import (
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
)

// Hand is what the handlers see of one hand in one frame.
type Hand struct {
	// Present is false when the hand's landmarks were not delivered this frame.
	Present bool

	// Pointer is the index fingertip.
	Pointer interaction.Point

	// Fingertips are the five fingertips in client coordinates.
	Fingertips []geometry.Point

	// Category is the single gesture classification for this frame.
	Category string
}

// Absent is the input for a hand that was not tracked this frame.
var Absent = Hand{}

// At returns a present hand whose pointer is at the client point (x, y).
// Canvas coordinates are left equal to client coordinates.
func At(category string, x, y float64) Hand {
	return Hand{
		Present:  true,
		Pointer:  interaction.Point{X: x, Y: y, ClientX: x, ClientY: y},
		Category: category,
	}
}

func (h Hand) client() geometry.Point {
	return h.Pointer.Client()
}
