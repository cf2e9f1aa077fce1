//go:build tinygo && baremetal

package hal

import "tinygo.org/x/drivers/xpt2046"

// panelTouch reads raw (uncalibrated) XPT2046 samples.
type panelTouch struct {
	dev *xpt2046.Device
}

func (t *panelTouch) Read() (TouchPoint, bool) {
	if !t.dev.Touched() {
		return TouchPoint{}, false
	}
	p := t.dev.ReadTouchPoint()
	if p.X == 0 && p.Y == 0 {
		// Contact lifted while sampling.
		return TouchPoint{}, false
	}
	return TouchPoint{X: p.X, Y: p.Y, Z: p.Z}, true
}
