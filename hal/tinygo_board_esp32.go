//go:build tinygo && baremetal && esp32

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
	"tinygo.org/x/drivers/xpt2046"
)

// DefaultPins is the reference wiring: encoder on 25/33, button on 32.
var DefaultPins = Pins{EncoderA: 25, EncoderB: 33, Button: 32}

// initBoard wires the ESP32 reference board. LCD on SPI2 (VSPI pins), touch
// controller bit-banged on its own lines with chip select on 21.
func initBoard() board {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	machine.SPI2.Configure(machine.SPIConfig{
		Frequency: 40_000_000,
		SCK:       machine.GPIO18,
		SDO:       machine.GPIO23,
		SDI:       machine.GPIO19,
	})
	lcd := ili9341.NewSPI(machine.SPI2, machine.GPIO2, machine.GPIO15, machine.GPIO4)
	lcd.Configure(ili9341.Config{Rotation: ili9341.Rotation90})

	tp := xpt2046.New(machine.GPIO14, machine.GPIO21, machine.GPIO27, machine.GPIO35, machine.GPIO36)
	tp.Configure(&xpt2046.Config{Precision: 10})

	return board{
		uart:  uart,
		lcd:   lcd,
		tp:    tp,
		flash: stubFlash{},
		// GPIO34-39 are input-only but still addressable.
		pinCount: 40,
	}
}
