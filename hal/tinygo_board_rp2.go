//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
	"tinygo.org/x/drivers/xpt2046"
)

// DefaultPins for the Pico build: encoder on GP2/GP3, button on GP4.
var DefaultPins = Pins{EncoderA: 2, EncoderB: 3, Button: 4}

// initBoard wires a Pico: UART0 on GP0/GP1, LCD on SPI0, touch controller
// bit-banged on GP10-GP14, settings in the on-board QSPI flash.
func initBoard() board {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 40_000_000,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		SDI:       machine.GP16,
	})
	lcd := ili9341.NewSPI(machine.SPI0, machine.GP20, machine.GP17, machine.GP21)
	lcd.Configure(ili9341.Config{Rotation: ili9341.Rotation90})

	tp := xpt2046.New(machine.GP10, machine.GP13, machine.GP11, machine.GP12, machine.GP14)
	tp.Configure(&xpt2046.Config{Precision: 10})

	return board{
		uart:     uart,
		lcd:      lcd,
		tp:       tp,
		flash:    newRP2Flash(),
		pinCount: 30,
	}
}
