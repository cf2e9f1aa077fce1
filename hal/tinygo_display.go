//go:build tinygo && baremetal

package hal

import (
	"tinygo.org/x/drivers/ili9341"
)

// lcdStripRows is how many rows are byte-swapped and pushed per SPI burst.
const lcdStripRows = 8

// lcdFramebuffer keeps a full little-endian RGB565 frame in RAM and pushes it
// to the ILI9341 on Present. The panel expects big-endian pixels.
type lcdFramebuffer struct {
	lcd    *ili9341.Device
	w      int
	h      int
	stride int
	buf    []byte
	strip  []byte
}

func newLCDFramebuffer(lcd *ili9341.Device, w, h int) *lcdFramebuffer {
	stride := w * 2
	return &lcdFramebuffer{
		lcd:    lcd,
		w:      w,
		h:      h,
		stride: stride,
		buf:    make([]byte, stride*h),
		strip:  make([]byte, stride*lcdStripRows),
	}
}

func (f *lcdFramebuffer) Width() int          { return f.w }
func (f *lcdFramebuffer) Height() int         { return f.h }
func (f *lcdFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *lcdFramebuffer) StrideBytes() int    { return f.stride }
func (f *lcdFramebuffer) Buffer() []byte      { return f.buf }

func (f *lcdFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *lcdFramebuffer) Present() error {
	for y := 0; y < f.h; y += lcdStripRows {
		rows := lcdStripRows
		if y+rows > f.h {
			rows = f.h - y
		}
		n := rows * f.stride
		src := f.buf[y*f.stride : y*f.stride+n]
		dst := f.strip[:n]
		for i := 0; i < n; i += 2 {
			dst[i] = src[i+1]
			dst[i+1] = src[i]
		}
		if err := f.lcd.DrawRGBBitmap8(0, int16(y), dst, int16(f.w), int16(rows)); err != nil {
			return err
		}
	}
	return nil
}
