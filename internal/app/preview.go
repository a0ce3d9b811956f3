package app

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// previewLinger is how long the loop keeps encoding preview frames after the
// last reader asked for one.
const previewLinger = 2 * time.Second

// preview holds the latest camera frame as JPEG for the HTTP stream. The
// frame loop only pays for encoding while someone is watching.
type preview struct {
	mu        sync.Mutex
	jpeg      []byte
	taken     time.Time
	requested time.Time
}

func (p *preview) wanted(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.requested.IsZero() && now.Sub(p.requested) < previewLinger
}

func (p *preview) store(now time.Time, frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)

	p.mu.Lock()
	p.jpeg = data
	p.taken = now
	p.mu.Unlock()
	return nil
}

// Preview returns the latest camera frame as JPEG and when it was taken.
// Calling it keeps preview encoding enabled for a short while.
func (a *App) Preview() ([]byte, time.Time, bool) {
	a.preview.mu.Lock()
	defer a.preview.mu.Unlock()
	a.preview.requested = time.Now()
	return a.preview.jpeg, a.preview.taken, len(a.preview.jpeg) > 0
}
