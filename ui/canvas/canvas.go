// Package canvas draws rectangles and proggy text into a RGB565 HAL
// framebuffer. It satisfies drivers.Displayer so tinyfont can render into it.
package canvas

import (
	"image/color"
	"unicode/utf8"

	"knobmenu/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var _ drivers.Displayer = (*Canvas)(nil)

// Font is the UI font. Proggy TinySZ is fixed-pitch and small enough for a
// 200px wide list.
var Font = &proggy.TinySZ8pt7b

type Canvas struct {
	fb hal.Framebuffer
}

func New(fb hal.Framebuffer) *Canvas {
	return &Canvas{fb: fb}
}

func (c *Canvas) Size() (x, y int16) {
	if c.fb == nil {
		return 0, 0
	}
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.put(int(x), int(y), pack565(col))
}

// Display presents the framebuffer.
func (c *Canvas) Display() error {
	if c.fb == nil {
		return hal.ErrNotImplemented
	}
	return c.fb.Present()
}

func (c *Canvas) put(x, y int, pixel uint16) {
	if c.fb == nil || c.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := c.fb.Buffer()
	if buf == nil || x < 0 || y < 0 || x >= c.fb.Width() || y >= c.fb.Height() {
		return
	}
	off := y*c.fb.StrideBytes() + x*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Clear fills the whole framebuffer.
func (c *Canvas) Clear(col color.RGBA) {
	if c.fb != nil {
		c.fb.ClearRGB(col.R, col.G, col.B)
	}
}

// FillRect fills w x h pixels at (x, y), clipped to the screen.
func (c *Canvas) FillRect(x, y, w, h int, col color.RGBA) {
	if c.fb == nil {
		return
	}
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.fb.Width()), min(y+h, c.fb.Height())
	pixel := pack565(col)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			c.put(xx, yy, pixel)
		}
	}
}

// StrokeRect draws a one pixel outline.
func (c *Canvas) StrokeRect(x, y, w, h int, col color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	c.FillRect(x, y, w, 1, col)
	c.FillRect(x, y+h-1, w, 1, col)
	c.FillRect(x, y, 1, h, col)
	c.FillRect(x+w-1, y, 1, h, col)
}

// Text draws s with its baseline at y.
func (c *Canvas) Text(x, y int, s string, col color.RGBA) {
	tinyfont.WriteLine(c, Font, int16(x), int16(y), s, col)
}

// TextWidth is the advance width of s in pixels.
func TextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(Font, s)
	return int(outbox)
}

// LineHeight is the font's line advance.
func LineHeight() int { return int(Font.YAdvance) }

// Fit truncates s so it renders within width pixels.
func Fit(s string, width int) string {
	if TextWidth(s) <= width {
		return s
	}
	for len(s) > 0 {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		if TextWidth(s) <= width {
			return s
		}
	}
	return ""
}

// Wrap splits s into lines of at most cols runes.
func Wrap(s string, cols int) []string {
	if cols <= 0 {
		return []string{s}
	}
	var out []string
	for len(s) > 0 {
		chunk, rest := takeRunes(s, cols)
		out = append(out, chunk)
		s = rest
	}
	return out
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}

func pack565(c color.RGBA) uint16 {
	return (uint16(c.R>>3)&0x1F)<<11 | (uint16(c.G>>2)&0x3F)<<5 | uint16(c.B>>3)&0x1F
}

// RGB builds an opaque color from 0xRRGGBB.
func RGB(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
