package input

import "fmt"

// Pin is a readable digital line.
type Pin interface {
	Read() (level bool, err error)
}

// Encoder reads a two-phase rotary encoder.
type Encoder struct {
	a, b Pin
	dec  *Decoder
}

// NewEncoder samples phase A once to seed the decoder.
func NewEncoder(a, b Pin, invert bool) (*Encoder, error) {
	level, err := a.Read()
	if err != nil {
		return nil, fmt.Errorf("encoder: read phase A: %w", err)
	}
	dec := NewDecoder(level)
	dec.Invert = invert
	return &Encoder{a: a, b: b, dec: dec}, nil
}

// Poll reads both phases once and decodes at most one step.
func (e *Encoder) Poll() (Step, bool, error) {
	a, err := e.a.Read()
	if err != nil {
		return 0, false, fmt.Errorf("encoder: read phase A: %w", err)
	}
	b, err := e.b.Read()
	if err != nil {
		return 0, false, fmt.Errorf("encoder: read phase B: %w", err)
	}
	step, ok := e.dec.Poll(a, b)
	return step, ok, nil
}

// Button reads a push button through a Debouncer.
type Button struct {
	pin       Pin
	activeLow bool
	deb       *Debouncer
}

func NewButton(pin Pin, activeLow bool, delay Timestamp) *Button {
	return &Button{pin: pin, activeLow: activeLow, deb: NewDebouncer(delay)}
}

// Poll reports an accepted press at time now.
func (b *Button) Poll(now Timestamp) (bool, error) {
	level, err := b.pin.Read()
	if err != nil {
		return false, fmt.Errorf("button: %w", err)
	}
	return b.deb.Poll(level != b.activeLow, now), nil
}
