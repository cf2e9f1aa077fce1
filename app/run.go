package app

import (
	"time"

	"knobmenu/hal"
)

// Run boots the controller and steps it forever. A boot error, a frame error
// or a panic is painted on the display and the controller halts.
func Run(h hal.HAL, cfg Config, opts ...Option) {
	a, err := Open(h, cfg, opts...)
	if err != nil {
		halt(h, err)
	}
	delay := a.Config().FrameDelay
	for {
		if err := a.Step(); err != nil {
			_ = a.Close()
			halt(h, err)
		}
		time.Sleep(delay)
	}
}

func halt(h hal.HAL, err error) {
	reportFatal(h, err)
	select {}
}
