package hal

import "sync"

type memFramebuffer struct {
	mu       sync.Mutex
	width    int
	height   int
	stride   int
	buf      []byte
	shown    []byte
	presents uint64
}

// NewMemoryFramebuffer returns a RGB565 framebuffer backed by memory. Present
// only latches the frame.
func NewMemoryFramebuffer(width, height int) Framebuffer {
	return newMemFramebuffer(width, height)
}

func newMemFramebuffer(width, height int) *memFramebuffer {
	stride := width * 2
	return &memFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
		shown:  make([]byte, stride*height),
	}
}

func (f *memFramebuffer) Width() int          { return f.width }
func (f *memFramebuffer) Height() int         { return f.height }
func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int    { return f.stride }
func (f *memFramebuffer) Buffer() []byte      { return f.buf }

// Present latches the draw buffer so the window shows whole frames only.
func (f *memFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.shown, f.buf)
	f.presents++
	return nil
}

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *memFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.shown)
}

func (f *memFramebuffer) frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presents
}
