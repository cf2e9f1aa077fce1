package storage

import (
	"errors"
	"fmt"

	"knobmenu/hal"

	"tinygo.org/x/tinyfs"
)

var _ tinyfs.BlockDevice = (*FlashDevice)(nil)

// ErrOutOfBounds is returned for accesses past the end of the flash.
var ErrOutOfBounds = errors.New("storage: access out of bounds")

// flashWriteBlockBytes is the program granularity reported to LittleFS.
const flashWriteBlockBytes = 256

// FlashDevice exposes a hal.Flash as a tinyfs block device.
type FlashDevice struct {
	flash hal.Flash
}

// NewFlashDevice checks the flash geometry and wraps it.
func NewFlashDevice(flash hal.Flash) (*FlashDevice, error) {
	if flash == nil {
		return nil, errors.New("storage: nil flash")
	}
	block := flash.EraseBlockBytes()
	if block == 0 || flash.SizeBytes() == 0 {
		return nil, fmt.Errorf("storage: %w", hal.ErrNotImplemented)
	}
	if flash.SizeBytes()%block != 0 {
		return nil, fmt.Errorf("storage: flash size not multiple of erase block size: %d %% %d", flash.SizeBytes(), block)
	}
	return &FlashDevice{flash: flash}, nil
}

func (d *FlashDevice) ReadAt(buf []byte, off int64) (int, error) {
	addr, ok := d.addr(off, len(buf))
	if !ok {
		return 0, ErrOutOfBounds
	}
	return d.flash.ReadAt(buf, addr)
}

func (d *FlashDevice) WriteAt(buf []byte, off int64) (int, error) {
	addr, ok := d.addr(off, len(buf))
	if !ok {
		return 0, ErrOutOfBounds
	}
	return d.flash.WriteAt(buf, addr)
}

func (d *FlashDevice) Size() int64 { return int64(d.flash.SizeBytes()) }

func (d *FlashDevice) WriteBlockSize() int64 { return flashWriteBlockBytes }

func (d *FlashDevice) EraseBlockSize() int64 { return int64(d.flash.EraseBlockBytes()) }

// EraseBlocks erases count blocks starting at block start.
func (d *FlashDevice) EraseBlocks(start, count int64) error {
	bs := d.EraseBlockSize()
	if start < 0 || count < 0 {
		return ErrOutOfBounds
	}
	addr, ok := d.addr(start*bs, int(count*bs))
	if !ok {
		return ErrOutOfBounds
	}
	return d.flash.Erase(addr, uint32(count*bs))
}

func (d *FlashDevice) addr(off int64, size int) (uint32, bool) {
	if off < 0 || size < 0 {
		return 0, false
	}
	end := uint64(off) + uint64(size)
	if end > uint64(d.flash.SizeBytes()) {
		return 0, false
	}
	return uint32(off), true
}
