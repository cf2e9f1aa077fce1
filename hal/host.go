//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const hostGPIOPinCount = 40

// DefaultPins mirrors the reference ESP32 wiring.
var DefaultPins = Pins{EncoderA: 25, EncoderB: 33, Button: 32}

// HostOptions configures the host HAL.
type HostOptions struct {
	Width  int
	Height int

	// Pins are the virtual GPIO lines the simulated encoder and button drive.
	Pins Pins
	// ButtonActiveLow makes a pressed button read low.
	ButtonActiveLow bool

	FlashPath      string
	FlashSizeBytes uint32

	// VirtualClock advances Millis only through the runner (deterministic).
	VirtualClock bool

	Stdin  io.Reader
	Stdout io.Writer
}

// DefaultHostOptions matches the reference board: 320x240 panel, encoder on
// 25/33, active-low button on 32.
func DefaultHostOptions() HostOptions {
	return HostOptions{
		Width:           320,
		Height:          240,
		Pins:            DefaultPins,
		ButtonActiveLow: true,
		FlashPath:       hostFlashDefaultPath(),
		FlashSizeBytes:  hostFlashDefaultSizeBytes,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
	}
}

// Host is the desktop HAL. Besides the HAL surface it exposes the simulated
// input devices so host frontends can drive them.
type Host struct {
	logger   *hostLogger
	gpio     *virtualGPIO
	fb       *memFramebuffer
	touch    *hostTouch
	t        *hostTime
	flash    *hostFlash
	serial   *hostSerial
	controls *Controls
}

// New returns a host HAL implementation with default options.
func New() HAL {
	h, err := NewHost(DefaultHostOptions())
	if err != nil {
		panic(err)
	}
	return h
}

// NewHost builds a host HAL. The flash file is locked for the lifetime of the
// Host; call Close to release it.
func NewHost(opts HostOptions) (*Host, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("host: invalid display size %dx%d", opts.Width, opts.Height)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	gpio := newVirtualGPIO(hostGPIOPinCount)
	controls, err := newControls(gpio, opts.Pins, opts.ButtonActiveLow)
	if err != nil {
		return nil, err
	}

	var flash *hostFlash
	if opts.FlashPath != "" {
		flash, err = openHostFlash(opts.FlashPath, opts.FlashSizeBytes)
		if err != nil {
			return nil, err
		}
	} else {
		flash = &hostFlash{}
	}

	return &Host{
		logger:   &hostLogger{w: opts.Stdout},
		gpio:     gpio,
		fb:       newMemFramebuffer(opts.Width, opts.Height),
		touch:    &hostTouch{},
		t:        newHostTime(opts.VirtualClock),
		flash:    flash,
		serial:   &hostSerial{r: opts.Stdin, w: opts.Stdout},
		controls: controls,
	}, nil
}

func (h *Host) Logger() Logger   { return h.logger }
func (h *Host) GPIO() GPIO       { return h.gpio }
func (h *Host) Display() Display { return hostDisplay{fb: h.fb} }
func (h *Host) Touch() Touch     { return h.touch }
func (h *Host) Flash() Flash     { return h.flash }
func (h *Host) Time() Time       { return h.t }
func (h *Host) Serial() Serial   { return h.serial }

// Controls returns the simulated encoder and button.
func (h *Host) Controls() *Controls { return h.controls }

// SetTouch simulates a finger on the panel at framebuffer coordinates.
func (h *Host) SetTouch(x, y int, down bool) { h.touch.set(x, y, down) }

// Advance moves the virtual clock forward. It is a no-op on a real clock.
func (h *Host) Advance(ms uint64) { h.t.advance(ms) }

// Frames reports how many times the framebuffer has been presented.
func (h *Host) Frames() uint64 { return h.fb.frames() }

// Close releases the flash file and its lock.
func (h *Host) Close() error { return h.flash.Close() }

type hostDisplay struct {
	fb *memFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostTouch struct {
	mu   sync.Mutex
	p    TouchPoint
	down bool
}

func (t *hostTouch) set(x, y int, down bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p = TouchPoint{X: x, Y: y, Z: 1}
	t.down = down
}

// ScreenSpace reports true: the window and the terminal hand over pixels.
func (t *hostTouch) ScreenSpace() bool { return true }

func (t *hostTouch) Read() (TouchPoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p, t.down
}
