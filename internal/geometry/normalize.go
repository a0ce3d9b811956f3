package geometry

// Normalize maps a normalized landmark coordinate (x, y in [0,1]) onto the
// canvas and onto the client screen.
//
// The canvas point is the landmark scaled by the canvas size. The client
// point is mirrored horizontally because the camera feed is shown as a
// selfie view: the user's real left hand has to land on the left of the
// screen, matching what they see.
func Normalize(x, y float64, canvas Size, rect Rect) (canvasPt, clientPt Point) {
	canvasPt = Point{X: x * canvas.Width, Y: y * canvas.Height}
	clientPt = Point{
		X: rect.Left() + (canvas.Width - canvasPt.X),
		Y: rect.Top() + canvasPt.Y,
	}
	return canvasPt, clientPt
}
