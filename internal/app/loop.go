package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"
)

// run is the frame loop. It idles at a low frame rate, switches to the
// active rate on motion, and stays active while any surface has a gesture in
// progress so a motionless hold still sees its release.
func (a *App) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.gate.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if fps, changed := a.step(now, frame); changed {
				a.Camera().SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				if a.gate.Active() {
					log.Println("Switched to active mode")
				} else {
					log.Println("Switched to idle mode")
				}
			}
			frame.Close()
		}
	}
}

// step handles one camera frame and returns the frame rate to continue at.
func (a *App) step(now time.Time, frame *gocv.Mat) (int, bool) {
	if a.preview.wanted(now) {
		if err := a.preview.store(now, frame); err != nil {
			log.Printf("Error encoding preview: %v", err)
		}
	}

	motion, _ := a.motion.Detect(frame)
	fps, changed := a.gate.Update(now, motion || a.Active())

	if !a.gate.Active() {
		return fps, changed
	}

	d := a.Detector()
	if d == nil {
		return fps, changed
	}

	hands, err := d.Detect(frame)
	if err != nil {
		// Skipping the frame leaves every hand's state as it was.
		log.Printf("Error detecting hands: %v", err)
		return fps, changed
	}

	a.ProcessHands(hands)
	return fps, changed
}
