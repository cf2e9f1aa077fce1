package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// TouchPoint is one raw sample from the touch panel.
//
// Coordinates are in panel units; Z is the contact pressure when the panel
// reports one and 1 otherwise.
type TouchPoint struct {
	X int
	Y int
	Z int
}

// Touch samples the touch panel.
type Touch interface {
	// Read returns the current contact point, or ok=false when nothing is
	// touching the panel.
	Read() (p TouchPoint, ok bool)
}

// ScreenTouch is implemented by touch sources that already report screen
// pixels, so no calibration is needed.
type ScreenTouch interface {
	ScreenSpace() bool
}

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Time provides the monotonic millisecond clock.
type Time interface {
	Millis() uint64
}

// Serial is a byte stream to the debug console (UART or stdio).
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Pins names the GPIO lines wired to the rotary encoder and confirm button.
type Pins struct {
	EncoderA int
	EncoderB int
	Button   int
}

// HAL provides the only contact point between the controller and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Touch() Touch
	GPIO() GPIO
	Time() Time
	Flash() Flash
	Serial() Serial
}

type nullTouch struct{}

func (nullTouch) Read() (TouchPoint, bool) { return TouchPoint{}, false }
func (nullTouch) ScreenSpace() bool        { return true }
