// Package input turns raw GPIO levels into clean input events: debounced
// button presses and quadrature encoder steps.
package input

// Timestamp is a monotonic millisecond reading.
type Timestamp = uint64

// DefaultDebounceDelay is the minimum interval between accepted presses.
const DefaultDebounceDelay Timestamp = 300

// Debouncer gates a button level by time.
//
// A press is accepted when the line is active and more than Delay has passed
// since the previous accepted press. The release edge is never looked at, so
// a button held longer than Delay fires again each time the window elapses.
// The first accepted press is measured from time zero.
type Debouncer struct {
	Delay Timestamp
	last  Timestamp
}

func NewDebouncer(delay Timestamp) *Debouncer {
	return &Debouncer{Delay: delay}
}

// Poll reports whether this sample is an accepted press.
func (d *Debouncer) Poll(pressed bool, now Timestamp) bool {
	if !pressed {
		return false
	}
	if now < d.last || now-d.last <= d.Delay {
		return false
	}
	d.last = now
	return true
}

// LastPress is the timestamp of the last accepted press (0 before any).
func (d *Debouncer) LastPress() Timestamp { return d.last }
