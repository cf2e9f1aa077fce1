package app

import (
	"time"

	"knobmenu/config"
	"knobmenu/hal"
	"knobmenu/nav"
)

// Config holds the compiled-in defaults. A DeviceConfig stored in flash
// overrides the timing fields and turns on flags at boot.
type Config struct {
	MainItems  int
	SubItems   int // including Return
	Terminal   nav.TerminalPosition
	TapSelects bool

	DebounceDelay time.Duration
	FrameDelay    time.Duration

	Pins            hal.Pins
	InvertEncoder   bool
	ButtonActiveLow bool

	// RepeatCalibration runs the touch calibrator at every boot.
	RepeatCalibration bool
	// Console reads debug commands from the serial port.
	Console bool
	// Trace logs ignored events and every selection move.
	Trace bool
}

func DefaultConfig() Config {
	return Config{
		MainItems:       5,
		SubItems:        4,
		Terminal:        nav.TerminalLast,
		DebounceDelay:   300 * time.Millisecond,
		FrameDelay:      20 * time.Millisecond,
		Pins:            hal.DefaultPins,
		ButtonActiveLow: true,
		Console:         true,
	}
}

func (c Config) navConfig() nav.Config {
	return nav.Config{
		MainItems:  c.MainItems,
		SubItems:   c.SubItems,
		Terminal:   c.Terminal,
		TapSelects: c.TapSelects,
	}
}

// withDevice applies a stored device record.
func (c Config) withDevice(d config.DeviceConfig) Config {
	if d.DebounceMs != 0 {
		c.DebounceDelay = time.Duration(d.DebounceMs) * time.Millisecond
	}
	if d.FrameMs != 0 {
		c.FrameDelay = time.Duration(d.FrameMs) * time.Millisecond
	}
	if d.Has(config.FlagInvertEncoder) {
		c.InvertEncoder = true
	}
	if d.Has(config.FlagReturnFirst) {
		c.Terminal = nav.TerminalFirst
	}
	if d.Has(config.FlagTapSelects) {
		c.TapSelects = true
	}
	if d.Has(config.FlagRepeatCalibration) {
		c.RepeatCalibration = true
	}
	return c
}

// DeviceRecord is the flash record that reproduces c's overridable fields.
func (c Config) DeviceRecord() config.DeviceConfig {
	d := config.DeviceConfig{
		Version:    config.CurrentVersion,
		DebounceMs: uint16(c.DebounceDelay / time.Millisecond),
		FrameMs:    uint16(c.FrameDelay / time.Millisecond),
	}
	d.Set(config.FlagInvertEncoder, c.InvertEncoder)
	d.Set(config.FlagReturnFirst, c.Terminal == nav.TerminalFirst)
	d.Set(config.FlagTapSelects, c.TapSelects)
	d.Set(config.FlagRepeatCalibration, c.RepeatCalibration)
	return d
}
