// Package touch turns raw touch panel samples into screen coordinates.
package touch

import (
	"errors"

	"knobmenu/config"
	"knobmenu/hal"
)

var ErrInvalidCalibration = errors.New("touch: invalid calibration")

// Point is a position in screen pixels.
type Point struct {
	X int
	Y int
}

// Mapper applies a Calibration for a w x h screen.
type Mapper struct {
	cal      config.Calibration
	w, h     int
	identity bool
}

// NewMapper validates cal and returns a mapper for a w x h screen.
func NewMapper(cal config.Calibration, w, h int) (*Mapper, error) {
	if !cal.Valid() || w <= 0 || h <= 0 {
		return nil, ErrInvalidCalibration
	}
	return &Mapper{cal: cal, w: w, h: h}, nil
}

// Identity passes points through. The host backends report screen pixels.
func Identity(w, h int) *Mapper {
	return &Mapper{w: w, h: h, identity: true}
}

// Calibration returns the record the mapper was built from.
func (m *Mapper) Calibration() config.Calibration { return m.cal }

// Map converts a raw sample. ok is false when the result is off screen.
func (m *Mapper) Map(raw hal.TouchPoint) (Point, bool) {
	if m.identity {
		p := Point{X: raw.X, Y: raw.Y}
		return p, m.inside(p)
	}
	rx, ry := raw.X, raw.Y
	if m.cal.Flags&config.CalSwapXY != 0 {
		rx, ry = ry, rx
	}
	x := scale(rx, int(m.cal.XMin), int(m.cal.XMax), m.w)
	y := scale(ry, int(m.cal.YMin), int(m.cal.YMax), m.h)
	if m.cal.Flags&config.CalInvertX != 0 {
		x = m.w - 1 - x
	}
	if m.cal.Flags&config.CalInvertY != 0 {
		y = m.h - 1 - y
	}
	p := Point{X: x, Y: y}
	return p, m.inside(p)
}

func (m *Mapper) inside(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.w && p.Y < m.h
}

// scale maps v in [lo, hi] onto [0, size-1]. Values outside the range map
// outside the screen.
func scale(v, lo, hi, size int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	d := v - lo
	num := d * (size - 1)
	span := hi - lo
	// Round toward negative infinity so points just left of the edge stay
	// off screen.
	if num < 0 {
		return (num - span + 1) / span
	}
	return (num + span/2) / span
}
