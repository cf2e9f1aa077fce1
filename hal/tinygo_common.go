//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
	"strconv"
	"time"
)

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type tinyGoTime struct {
	start time.Time
}

func newTinyGoTime() *tinyGoTime {
	return &tinyGoTime{start: time.Now()}
}

func (t *tinyGoTime) Millis() uint64 {
	return uint64(time.Since(t.start) / time.Millisecond)
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

// uartSerial never blocks on Read: it returns 0 when the RX buffer is empty.
type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	n := 0
	for n < len(p) && s.uart.Buffered() > 0 {
		c, err := s.uart.ReadByte()
		if err != nil {
			break
		}
		p[n] = c
		n++
	}
	return n, nil
}

// Buffered reports received bytes not yet read.
func (s *uartSerial) Buffered() int {
	if s.uart == nil {
		return 0
	}
	return s.uart.Buffered()
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}

// machineGPIO exposes MCU pins by number.
type machineGPIO struct {
	count int
}

func (g machineGPIO) PinCount() int { return g.count }

func (g machineGPIO) Pin(id int) GPIOPin {
	if id < 0 || id >= g.count {
		return nil
	}
	return &machinePin{pin: machine.Pin(id), name: "GPIO" + strconv.Itoa(id)}
}

type machinePin struct {
	pin  machine.Pin
	name string
	mode GPIOMode
}

func (p *machinePin) Name() string { return p.name }
func (p *machinePin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	var cfg machine.PinConfig
	switch mode {
	case GPIOModeOutput:
		cfg.Mode = machine.PinOutput
	case GPIOModeInput:
		switch pull {
		case GPIOPullNone:
			cfg.Mode = machine.PinInput
		case GPIOPullUp:
			cfg.Mode = machine.PinInputPullup
		case GPIOPullDown:
			cfg.Mode = machine.PinInputPulldown
		default:
			return errors.New("gpio: pin " + p.name + ": invalid pull")
		}
	default:
		return errors.New("gpio: pin " + p.name + ": invalid mode")
	}
	p.pin.Configure(cfg)
	p.mode = mode
	return nil
}

func (p *machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *machinePin) Write(level bool) error {
	if p.mode != GPIOModeOutput {
		return errors.New("gpio: pin " + p.name + ": not in output mode")
	}
	p.pin.Set(level)
	return nil
}
