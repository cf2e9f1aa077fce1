//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	opts := DefaultHostOptions()
	opts.FlashPath = filepath.Join(t.TempDir(), "test.flash")
	opts.FlashSizeBytes = 16 * 1024
	opts.VirtualClock = true
	opts.Stdin = nil
	opts.Stdout = &bytes.Buffer{}
	h, err := NewHost(opts)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func readPin(t *testing.T, h *Host, id int) bool {
	t.Helper()
	level, err := h.GPIO().Pin(id).Read()
	if err != nil {
		t.Fatalf("Read pin %d: %v", id, err)
	}
	return level
}

func TestControlsTurnEmitsOneEdgePerTick(t *testing.T) {
	h := newTestHost(t)
	pins := DefaultPins
	c := h.Controls()

	c.Turn(2)
	lastA := readPin(t, h, pins.EncoderA)
	for i := 0; i < 2; i++ {
		c.Tick()
		a := readPin(t, h, pins.EncoderA)
		b := readPin(t, h, pins.EncoderB)
		if a == lastA {
			t.Fatalf("tick %d: phase A did not change", i)
		}
		if a == b {
			t.Fatalf("tick %d: clockwise step needs B != A", i)
		}
		lastA = a
	}
	c.Tick()
	if readPin(t, h, pins.EncoderA) != lastA {
		t.Fatal("expected no edge once the queue is empty")
	}

	c.Turn(-1)
	c.Tick()
	a := readPin(t, h, pins.EncoderA)
	if a == lastA || a != readPin(t, h, pins.EncoderB) {
		t.Fatal("counter-clockwise step needs an A edge with B == A")
	}
	if got := c.Pending(); got != 0 {
		t.Fatalf("Pending() = %d, want 0", got)
	}
}

func TestControlsClickIsActiveLow(t *testing.T) {
	h := newTestHost(t)
	btn := DefaultPins.Button
	c := h.Controls()

	if !readPin(t, h, btn) {
		t.Fatal("idle active-low button should read high")
	}
	c.Click()
	if readPin(t, h, btn) {
		t.Fatal("pressed button should read low")
	}
	for i := 0; i < buttonHoldFrames; i++ {
		c.Tick()
	}
	if !readPin(t, h, btn) {
		t.Fatal("button should release after the hold frames")
	}
}

func TestHostFlashEraseSemantics(t *testing.T) {
	h := newTestHost(t)
	f := h.Flash()

	buf := make([]byte, 4)
	if _, err := f.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf, []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("fresh flash = %x, want ffffffff", buf)
	}

	if _, err := f.WriteAt([]byte{0x0F}, 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xF0}, 0); !errors.Is(err, ErrFlashWriteRequiresErase) {
		t.Fatalf("WriteAt over cleared bits: err = %v, want ErrFlashWriteRequiresErase", err)
	}
	if err := f.Erase(0, f.EraseBlockBytes()); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xF0}, 0); err != nil {
		t.Fatalf("WriteAt after erase: %v", err)
	}
	if err := f.Erase(1, 4096); err == nil {
		t.Fatal("expected unaligned erase to fail")
	}
}

func TestHostFlashIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.flash")
	a, err := openHostFlash(path, 4096)
	if err != nil {
		t.Fatalf("openHostFlash: %v", err)
	}
	defer a.Close()

	if _, err := openHostFlash(path, 4096); !errors.Is(err, ErrFlashLocked) {
		t.Fatalf("second open: err = %v, want ErrFlashLocked", err)
	}
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	h := newTestHost(t)

	var steps int
	var lastMillis uint64
	err := RunHeadless(context.Background(), h, func(hh HAL) (func() error, error) {
		return func() error {
			steps++
			lastMillis = hh.Time().Millis()
			return nil
		}, nil
	}, HeadlessConfig{FrameMillis: 20, Ticks: 5})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	if lastMillis != 100 {
		t.Fatalf("Millis() at last step = %d, want 100", lastMillis)
	}
}

func TestRunHeadlessPropagatesStepError(t *testing.T) {
	h := newTestHost(t)
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), h, func(HAL) (func() error, error) {
		return func() error { return boom }, nil
	}, HeadlessConfig{FrameMillis: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("RunHeadless err = %v, want %v", err, boom)
	}
}

func TestFramebufferPresentLatchesFrame(t *testing.T) {
	h := newTestHost(t)
	fb := h.Display().Framebuffer()
	fb.ClearRGB(0xFF, 0, 0)

	snap := make([]byte, len(fb.Buffer()))
	h.fb.snapshotRGB565(snap)
	if snap[0] != 0 || snap[1] != 0 {
		t.Fatal("expected nothing shown before Present")
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	h.fb.snapshotRGB565(snap)
	if got := uint16(snap[0]) | uint16(snap[1])<<8; got != 0xF800 {
		t.Fatalf("shown pixel = %#04x, want 0xf800", got)
	}
	if h.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", h.Frames())
	}
}
