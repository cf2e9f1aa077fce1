//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gofrs/flock"
)

const (
	hostFlashFallbackPath     = "knobmenu.flash"
	hostFlashDefaultSizeBytes = 256 * 1024
	hostFlashEraseBlockBytes  = 4096
)

var (
	ErrFlashWriteRequiresErase = errors.New("flash write requires erase")
	ErrFlashLocked             = errors.New("flash image is in use by another process")
)

func hostFlashDefaultPath() string {
	if p := os.Getenv("KNOBMENU_FLASH_PATH"); p != "" {
		return p
	}
	return hostFlashFallbackPath
}

// hostFlash emulates NOR flash in a file: erase sets 0xFF, writes may only
// clear bits.
type hostFlash struct {
	mu      sync.Mutex
	f       *os.File
	lock    *flock.Flock
	size    uint32
	erased  [hostFlashEraseBlockBytes]byte
	scratch []byte
}

func openHostFlash(path string, size uint32) (*hostFlash, error) {
	if size == 0 {
		size = hostFlashDefaultSizeBytes
	}
	if size%hostFlashEraseBlockBytes != 0 {
		return nil, fmt.Errorf("flash %s: size %d is not a multiple of %d", path, size, hostFlashEraseBlockBytes)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("flash %s: lock: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("flash %s: %w", path, ErrFlashLocked)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("flash %s: %w", path, err)
	}

	hf := &hostFlash{f: f, lock: lock, size: size}
	for i := range hf.erased {
		hf.erased[i] = 0xFF
	}

	st, err := f.Stat()
	if err != nil {
		hf.Close()
		return nil, fmt.Errorf("flash %s: %w", path, err)
	}
	switch {
	case st.Size() == 0:
		// Fresh image: erased flash reads as 0xFF.
		if err := hf.fill(0, size); err != nil {
			hf.Close()
			return nil, err
		}
	case st.Size() > int64(^uint32(0)):
		hf.Close()
		return nil, fmt.Errorf("flash %s: image too large", path)
	default:
		hf.size = uint32(st.Size())
	}
	return hf, nil
}

func (f *hostFlash) SizeBytes() uint32 { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 {
	return hostFlashEraseBlockBytes
}

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= f.size {
		return 0, fmt.Errorf("flash read at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= f.size {
		return 0, fmt.Errorf("flash write at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}

	if cap(f.scratch) < len(p) {
		f.scratch = make([]byte, len(p))
	}
	cur := f.scratch[:len(p)]
	if _, err := f.f.ReadAt(cur, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if cur[i]&p[i] != p[i] {
			return 0, ErrFlashWriteRequiresErase
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return ErrNotImplemented
	}
	if size == 0 {
		return nil
	}
	if off%hostFlashEraseBlockBytes != 0 || size%hostFlashEraseBlockBytes != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	if off >= f.size || off+size > f.size {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	return f.fill(off, size)
}

func (f *hostFlash) fill(off, size uint32) error {
	for size > 0 {
		if _, err := f.f.WriteAt(f.erased[:], int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
		off += hostFlashEraseBlockBytes
		size -= hostFlashEraseBlockBytes
	}
	return nil
}

// Close flushes and releases the image. Safe to call more than once.
func (f *hostFlash) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.f != nil {
		err = f.f.Close()
		f.f = nil
	}
	if f.lock != nil {
		if uerr := f.lock.Unlock(); err == nil {
			err = uerr
		}
		f.lock = nil
	}
	return err
}
