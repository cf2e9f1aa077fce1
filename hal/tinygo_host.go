//go:build tinygo && !baremetal

package hal

import "time"

// DefaultPins matches the host build so settings files stay portable.
var DefaultPins = Pins{EncoderA: 25, EncoderB: 33, Button: 32}

type tinyGoHostHAL struct {
	logger *tinyGoHostLogger
	gpio   *virtualGPIO
	fb     *memFramebuffer
	t      *tinyGoHostTime
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU
// pin mapping: the encoder and button lines idle, touch never reports contact.
func New() HAL {
	g := newVirtualGPIO(40)
	if p := g.virtual(DefaultPins.Button); p != nil {
		p.drive(true)
	}
	return &tinyGoHostHAL{
		logger: &tinyGoHostLogger{},
		gpio:   g,
		fb:     newMemFramebuffer(320, 240),
		t:      &tinyGoHostTime{start: time.Now()},
	}
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHostHAL) Display() Display { return tinyGoHostDisplay{fb: h.fb} }
func (h *tinyGoHostHAL) Touch() Touch     { return nullTouch{} }
func (h *tinyGoHostHAL) Flash() Flash     { return stubFlash{} }
func (h *tinyGoHostHAL) Time() Time       { return h.t }
func (h *tinyGoHostHAL) Serial() Serial   { return nullSerial{} }

type tinyGoHostDisplay struct {
	fb Framebuffer
}

func (d tinyGoHostDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoHostTime struct {
	start time.Time
}

func (t *tinyGoHostTime) Millis() uint64 {
	return uint64(time.Since(t.start) / time.Millisecond)
}

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

type nullSerial struct{}

func (nullSerial) Read(p []byte) (int, error)  { return 0, ErrNotImplemented }
func (nullSerial) Write(p []byte) (int, error) { return len(p), nil }
func (nullSerial) Buffered() int               { return 0 }
