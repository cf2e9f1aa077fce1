//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// buttonHoldFrames is how long a simulated click keeps the line asserted.
const buttonHoldFrames = 3

// Controls simulates the rotary encoder and confirm button by driving the
// virtual GPIO lines, so the host exercises the same decoder and debouncer
// as the device.
type Controls struct {
	mu        sync.Mutex
	a, b, btn *virtualPin
	activeLow bool

	phaseA  bool
	pending int
	hold    int
}

func newControls(g *virtualGPIO, pins Pins, activeLow bool) (*Controls, error) {
	c := &Controls{
		a:         g.virtual(pins.EncoderA),
		b:         g.virtual(pins.EncoderB),
		btn:       g.virtual(pins.Button),
		activeLow: activeLow,
	}
	if c.a == nil || c.b == nil || c.btn == nil {
		return nil, fmt.Errorf("host: encoder/button pins %+v out of range (have %d)", pins, g.PinCount())
	}
	c.a.drive(false)
	c.b.drive(false)
	c.btn.drive(activeLow)
	return c, nil
}

// Turn queues encoder detents; positive is clockwise.
func (c *Controls) Turn(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending += delta
}

// Click presses the button for a few frames.
func (c *Controls) Click() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold = buttonHoldFrames
	c.btn.drive(!c.activeLow)
}

// Pending reports queued detents not yet emitted.
func (c *Controls) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Tick advances the simulation by one frame: at most one phase-A edge is
// emitted, with B set so the decoder sees the queued direction.
func (c *Controls) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != 0 {
		next := !c.phaseA
		if c.pending > 0 {
			c.b.drive(!next)
			c.pending--
		} else {
			c.b.drive(next)
			c.pending++
		}
		c.a.drive(next)
		c.phaseA = next
	}

	if c.hold > 0 {
		c.hold--
		if c.hold == 0 {
			c.btn.drive(c.activeLow)
		}
	}
}
