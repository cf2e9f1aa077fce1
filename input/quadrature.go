package input

// Step is one encoder detent.
type Step int8

const (
	StepCCW Step = -1
	StepCW  Step = 1
)

func (s Step) String() string {
	switch s {
	case StepCW:
		return "Clockwise"
	case StepCCW:
		return "Counter Clockwise"
	default:
		return "Unknown"
	}
}

// Decoder does single-edge quadrature decoding: only phase A transitions
// produce steps, one per edge. Direction is read from B at the edge.
type Decoder struct {
	// Invert swaps the reported direction for encoders wired the other way.
	Invert bool

	lastA bool
}

// NewDecoder seeds the decoder with the phase A level sampled at startup.
func NewDecoder(a bool) *Decoder {
	return &Decoder{lastA: a}
}

// Poll samples both phases. It returns ok=false when A has not changed.
func (d *Decoder) Poll(a, b bool) (step Step, ok bool) {
	if a == d.lastA {
		return 0, false
	}
	d.lastA = a

	step = StepCCW
	if b != a {
		step = StepCW
	}
	if d.Invert {
		step = -step
	}
	return step, true
}
