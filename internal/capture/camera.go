// Package capture reads camera frames with GoCV and gates the frame rate on
// motion.
package capture

import (
	"errors"
	"sync"

	"github.com/ayusman/mudra/internal/geometry"
	"gocv.io/x/gocv"
)

// Frame rate and resolution defaults.
const (
	IdleFPS       = 5
	ActiveFPS     = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the device produced no image.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Config selects the capture device and the requested resolution.
type Config struct {
	Device int
	Width  int
	Height int
	FPS    int
}

// DefaultConfig returns the configuration for the first camera at 640x480.
func DefaultConfig() Config {
	return Config{
		Device: 0,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    IdleFPS,
	}
}

// Camera is a source of video frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes the Mat.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
	// Size is the pixel size of the frames being delivered, which is the
	// canvas landmarks are scaled to.
	Size() geometry.Size
}

type camera struct {
	config  Config
	capture *gocv.VideoCapture
	size    geometry.Size
	mu      sync.Mutex
}

// NewCamera creates a Camera for the configured device. Nothing is opened
// until Open is called.
func NewCamera(config Config) Camera {
	def := DefaultConfig()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	return &camera{
		config: config,
		size:   geometry.Size{Width: float64(config.Width), Height: float64(config.Height)},
	}
}

// Open opens the device and requests the configured resolution. The device
// may pick a different one; Size reports what was actually granted.
func (c *camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.Device)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	if w, h := capture.Get(gocv.VideoCaptureFrameWidth), capture.Get(gocv.VideoCaptureFrameHeight); w > 0 && h > 0 {
		c.size = geometry.Size{Width: w, Height: h}
	}

	c.capture = capture
	return nil
}

// Close closes the camera and releases resources.
func (c *camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	return err
}

// ReadFrame reads a single frame from the camera.
func (c *camera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	if w, h := float64(mat.Cols()), float64(mat.Rows()); w != c.size.Width || h != c.size.Height {
		c.size = geometry.Size{Width: w, Height: h}
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *camera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *camera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

// IsOpen returns true if the camera is currently open.
func (c *camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// Size returns the frame size.
func (c *camera) Size() geometry.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
