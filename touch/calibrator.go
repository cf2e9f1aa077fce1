package touch

import (
	"fmt"
	"image/color"

	"knobmenu/config"
	"knobmenu/hal"
	"knobmenu/ui/canvas"
)

// CalibrationMargin is the distance of each cross from the screen corner.
const CalibrationMargin = 20

const corners = 4

var (
	calBackground = canvas.RGB(0x000000)
	calCross      = canvas.RGB(0xFFFFFF)
	calDone       = canvas.RGB(0x00C000)
	calText       = canvas.RGB(0xFFFF00)
)

// Calibrator walks the user through touching a cross near each corner:
// top-left, top-right, bottom-left, bottom-right. Samples are averaged while
// the panel is held and recorded on release.
type Calibrator struct {
	w, h   int
	step   int
	raw    [corners]hal.TouchPoint
	sumX   int
	sumY   int
	count  int
	redraw bool
}

func NewCalibrator(w, h int) *Calibrator {
	return &Calibrator{w: w, h: h, redraw: true}
}

// Target is the screen position of the current cross.
func (c *Calibrator) Target() Point {
	return c.target(min(c.step, corners-1))
}

func (c *Calibrator) target(i int) Point {
	x, y := CalibrationMargin, CalibrationMargin
	if i&1 != 0 {
		x = c.w - 1 - CalibrationMargin
	}
	if i&2 != 0 {
		y = c.h - 1 - CalibrationMargin
	}
	return Point{X: x, Y: y}
}

// Done reports whether all corners were recorded.
func (c *Calibrator) Done() bool { return c.step >= corners }

// Step feeds one poll of the raw panel. It returns true once all corners
// are recorded.
func (c *Calibrator) Step(p hal.TouchPoint, down bool) bool {
	if c.Done() {
		return true
	}
	if down {
		c.sumX += p.X
		c.sumY += p.Y
		c.count++
		return false
	}
	if c.count == 0 {
		return false
	}
	c.raw[c.step] = hal.TouchPoint{X: c.sumX / c.count, Y: c.sumY / c.count, Z: 1}
	c.sumX, c.sumY, c.count = 0, 0, 0
	c.step++
	c.redraw = true
	return c.Done()
}

// Result derives a Calibration from the recorded corners.
func (c *Calibrator) Result() (config.Calibration, error) {
	if !c.Done() {
		return config.Calibration{}, fmt.Errorf("%w: %d of %d corners", ErrInvalidCalibration, c.step, corners)
	}
	tl, tr, bl, br := c.raw[0], c.raw[1], c.raw[2], c.raw[3]

	cal := config.Calibration{Version: config.CurrentVersion}
	// Moving right along the top edge should mostly change raw X. If raw Y
	// changes more, the panel axes are swapped.
	if abs(tr.Y-tl.Y) > abs(tr.X-tl.X) {
		cal.Flags |= config.CalSwapXY
		for i := range c.raw {
			c.raw[i].X, c.raw[i].Y = c.raw[i].Y, c.raw[i].X
		}
		tl, tr, bl, br = c.raw[0], c.raw[1], c.raw[2], c.raw[3]
	}

	left, right := (tl.X+bl.X)/2, (tr.X+br.X)/2
	top, bottom := (tl.Y+tr.Y)/2, (bl.Y+br.Y)/2

	var invert bool
	cal.XMin, cal.XMax, invert = extrapolate(left, right, c.w)
	if invert {
		cal.Flags |= config.CalInvertX
	}
	cal.YMin, cal.YMax, invert = extrapolate(top, bottom, c.h)
	if invert {
		cal.Flags |= config.CalInvertY
	}
	if !cal.Valid() {
		return config.Calibration{}, fmt.Errorf("%w: corners too close", ErrInvalidCalibration)
	}
	return cal, nil
}

// extrapolate stretches the raw readings taken at the margins out to the
// screen edges. lo <= hi always; invert reports a reversed axis.
func extrapolate(near, far, size int) (lo, hi uint16, invert bool) {
	inner := size - 1 - 2*CalibrationMargin
	if inner <= 0 {
		return 0, 0, false
	}
	pad := (far - near) * CalibrationMargin / inner
	a, b := near-pad, far+pad
	if a > b {
		a, b = b, a
		invert = true
	}
	return clampRaw(a), clampRaw(b), invert
}

func clampRaw(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Draw paints the prompt and the current cross. It only presents when the
// step changed since the last call.
func (c *Calibrator) Draw(cv *canvas.Canvas) error {
	if !c.redraw {
		return nil
	}
	c.redraw = false
	cv.Clear(calBackground)
	for i := 0; i < c.step && i < corners; i++ {
		p := c.target(i)
		cv.FillRect(p.X-2, p.Y-2, 5, 5, calDone)
	}
	if !c.Done() {
		drawCross(cv, c.Target(), calCross)
	}

	msg := fmt.Sprintf("Touch the cross (%d/%d)", min(c.step+1, corners), corners)
	if c.Done() {
		msg = "Calibration complete"
	}
	x := (c.w - canvas.TextWidth(msg)) / 2
	cv.Text(x, c.h/2, msg, calText)
	return cv.Display()
}

func drawCross(cv *canvas.Canvas, p Point, col color.RGBA) {
	const arm = 8
	cv.FillRect(p.X-arm, p.Y, 2*arm+1, 1, col)
	cv.FillRect(p.X, p.Y-arm, 1, 2*arm+1, col)
}
