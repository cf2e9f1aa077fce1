//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// hostTime is either wall-clock (since construction) or a virtual counter the
// runner advances once per frame.
type hostTime struct {
	mu      sync.Mutex
	start   time.Time
	virtual bool
	now     uint64
}

func newHostTime(virtual bool) *hostTime {
	return &hostTime{start: time.Now(), virtual: virtual}
}

func (t *hostTime) Millis() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.virtual {
		return t.now
	}
	return uint64(time.Since(t.start) / time.Millisecond)
}

func (t *hostTime) advance(ms uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.virtual {
		t.now += ms
	}
}
