//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
	"tinygo.org/x/drivers/xpt2046"
)

// board is what a board file wires up: the console UART, the LCD, the
// resistive touch controller and the settings flash.
type board struct {
	uart     *machine.UART
	lcd      *ili9341.Device
	tp       xpt2046.Device
	flash    Flash
	pinCount int
}

type tinyGoHAL struct {
	logger *uartLogger
	gpio   GPIO
	fb     Framebuffer
	touch  Touch
	t      *tinyGoTime
	flash  Flash
	serial Serial
}

// New returns the bare-metal HAL for the board selected by build tags.
//
// Console: the board UART at 115200 8N1. Display: ILI9341 320x240 over SPI.
// Touch: XPT2046.
func New() HAL {
	b := initBoard()

	w, h := b.lcd.Size()
	return &tinyGoHAL{
		logger: &uartLogger{uart: b.uart},
		gpio:   machineGPIO{count: b.pinCount},
		fb:     newLCDFramebuffer(b.lcd, int(w), int(h)),
		touch:  &panelTouch{dev: &b.tp},
		t:      newTinyGoTime(),
		flash:  b.flash,
		serial: &uartSerial{uart: b.uart},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Touch() Touch     { return h.touch }
func (h *tinyGoHAL) Flash() Flash     { return h.flash }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }
