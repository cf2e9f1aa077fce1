package storage

import (
	"errors"
	"testing"

	"knobmenu/config"
	"knobmenu/hal"
)

// norFlash is an in-memory NOR part: erase sets 0xFF, programming clears bits.
type norFlash struct {
	mem    []byte
	block  uint32
	erases int
}

func newNORFlash(size, block uint32) *norFlash {
	f := &norFlash{mem: make([]byte, size), block: block}
	for i := range f.mem {
		f.mem[i] = 0xFF
	}
	return f
}

func (f *norFlash) SizeBytes() uint32       { return uint32(len(f.mem)) }
func (f *norFlash) EraseBlockBytes() uint32 { return f.block }

func (f *norFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.mem[off:]), nil
}

func (f *norFlash) WriteAt(p []byte, off uint32) (int, error) {
	for i, b := range p {
		f.mem[int(off)+i] &= b
	}
	return len(p), nil
}

func (f *norFlash) Erase(off, size uint32) error {
	if off%f.block != 0 || size%f.block != 0 {
		return errors.New("unaligned erase")
	}
	for i := off; i < off+size; i++ {
		f.mem[i] = 0xFF
	}
	f.erases++
	return nil
}

func TestFlashDeviceGeometry(t *testing.T) {
	dev, err := NewFlashDevice(newNORFlash(64*1024, 4096))
	if err != nil {
		t.Fatalf("NewFlashDevice() error: %v", err)
	}
	if dev.Size() != 64*1024 || dev.EraseBlockSize() != 4096 || dev.WriteBlockSize() != flashWriteBlockBytes {
		t.Fatalf("geometry = %d/%d/%d", dev.Size(), dev.EraseBlockSize(), dev.WriteBlockSize())
	}
}

func TestFlashDeviceRejectsBadFlash(t *testing.T) {
	if _, err := NewFlashDevice(nil); err == nil {
		t.Fatal("NewFlashDevice(nil) succeeded")
	}
	if _, err := NewFlashDevice(newNORFlash(10000, 4096)); err == nil {
		t.Fatal("NewFlashDevice() accepted a size that is not a block multiple")
	}
	var stub stubFlash
	if _, err := NewFlashDevice(stub); !errors.Is(err, hal.ErrNotImplemented) {
		t.Fatalf("NewFlashDevice(stub) err = %v, want ErrNotImplemented", err)
	}
}

type stubFlash struct{}

func (stubFlash) SizeBytes() uint32                   { return 0 }
func (stubFlash) EraseBlockBytes() uint32             { return 0 }
func (stubFlash) ReadAt([]byte, uint32) (int, error)  { return 0, hal.ErrNotImplemented }
func (stubFlash) WriteAt([]byte, uint32) (int, error) { return 0, hal.ErrNotImplemented }
func (stubFlash) Erase(uint32, uint32) error          { return hal.ErrNotImplemented }

func TestFlashDeviceBounds(t *testing.T) {
	dev, _ := NewFlashDevice(newNORFlash(8192, 4096))
	if _, err := dev.ReadAt(make([]byte, 16), 8190); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ReadAt past end err = %v, want ErrOutOfBounds", err)
	}
	if _, err := dev.WriteAt(make([]byte, 1), -1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("WriteAt negative err = %v, want ErrOutOfBounds", err)
	}
	if err := dev.EraseBlocks(1, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("EraseBlocks past end err = %v, want ErrOutOfBounds", err)
	}
}

func TestManagerOnFlashDevice(t *testing.T) {
	flash := newNORFlash(128*1024, 4096)
	dev, err := NewFlashDevice(flash)
	if err != nil {
		t.Fatalf("NewFlashDevice() error: %v", err)
	}
	mgr, err := New(dev, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cal := testCalibration()
	if err := mgr.SaveCalibration(&cal); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}
	mgr.Close()

	if flash.erases == 0 {
		t.Fatal("formatting never erased a block")
	}

	mgr, err = New(dev, false)
	if err != nil {
		t.Fatalf("remount error: %v", err)
	}
	defer mgr.Close()
	var loaded config.Calibration
	if err := mgr.LoadCalibration(&loaded); err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if loaded != cal {
		t.Fatalf("loaded = %+v, want %+v", loaded, cal)
	}
}
