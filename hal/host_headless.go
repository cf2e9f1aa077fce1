//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Frame is the wall-clock delay between iterations. Zero runs as fast
	// as possible (useful with a virtual clock).
	Frame time.Duration
	// FrameMillis is what the virtual clock advances per iteration.
	FrameMillis uint64
	// Ticks stops the runner after this many iterations; zero runs until ctx
	// is cancelled.
	Ticks uint64
}

// RunHeadless drives the app step function without opening a window.
func RunHeadless(ctx context.Context, h *Host, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	if cfg.Frame < 0 {
		return fmt.Errorf("invalid headless frame delay: %s", cfg.Frame)
	}
	if cfg.FrameMillis == 0 {
		cfg.FrameMillis = uint64(cfg.Frame / time.Millisecond)
	}

	step, err := newApp(h)
	if err != nil {
		return err
	}

	var tick <-chan time.Time
	if cfg.Frame > 0 {
		t := time.NewTicker(cfg.Frame)
		defer t.Stop()
		tick = t.C
	}

	var n uint64
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		h.t.advance(cfg.FrameMillis)
		h.controls.Tick()
		if step != nil {
			if err := step(); err != nil {
				return err
			}
		}
		n++
		if cfg.Ticks > 0 && n >= cfg.Ticks {
			return nil
		}
	}
}
