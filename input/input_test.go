package input

import (
	"errors"
	"testing"
)

func TestDebouncerPressesCloserThanDelayFireOnce(t *testing.T) {
	d := NewDebouncer(300)
	if !d.Poll(true, 1000) {
		t.Fatal("first press should fire")
	}
	if d.Poll(true, 1200) {
		t.Fatal("press 200ms later should be suppressed")
	}
	if !d.Poll(true, 1301) {
		t.Fatal("press 301ms after the accepted one should fire")
	}
	if got := d.LastPress(); got != 1301 {
		t.Fatalf("LastPress() = %d, want 1301", got)
	}
}

func TestDebouncerBoundaryIsExclusive(t *testing.T) {
	d := NewDebouncer(300)
	d.Poll(true, 1000)
	if d.Poll(true, 1300) {
		t.Fatal("exactly Delay later should not fire")
	}
}

func TestDebouncerIgnoresReleasedLevel(t *testing.T) {
	d := NewDebouncer(300)
	if d.Poll(false, 5000) {
		t.Fatal("released level must not fire")
	}
	if d.LastPress() != 0 {
		t.Fatal("released level must not move the window")
	}
}

func TestDebouncerHeldButtonRefires(t *testing.T) {
	// Level gating only: holding past the window fires again.
	d := NewDebouncer(300)
	var fired int
	for now := Timestamp(400); now <= 1100; now += 20 {
		if d.Poll(true, now) {
			fired++
		}
	}
	if fired != 3 {
		t.Fatalf("held for 700ms fired %d times, want 3", fired)
	}
}

func TestDebouncerMeasuresFromZeroAtBoot(t *testing.T) {
	d := NewDebouncer(300)
	if d.Poll(true, 250) {
		t.Fatal("press inside the first window after boot should be suppressed")
	}
	if !d.Poll(true, 301) {
		t.Fatal("press after the first window should fire")
	}
}

func TestDecoderSequence(t *testing.T) {
	d := NewDecoder(false)
	tests := []struct {
		a, b   bool
		want   Step
		wantOK bool
	}{
		{false, true, 0, false},
		{true, true, StepCCW, true},
		{true, true, 0, false},
		{false, true, StepCW, true},
	}
	for i, tt := range tests {
		got, ok := d.Poll(tt.a, tt.b)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("poll %d: Poll(%v, %v) = (%v, %v), want (%v, %v)", i, tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDecoderOnlyBAtEdgeMatters(t *testing.T) {
	d := NewDecoder(false)
	// B wiggles while A is steady: no steps.
	for _, b := range []bool{true, false, true} {
		if _, ok := d.Poll(false, b); ok {
			t.Fatal("B changes alone must not step")
		}
	}
	if got, _ := d.Poll(true, false); got != StepCW {
		t.Fatalf("A rises with B low = %v, want %v", got, StepCW)
	}
}

func TestDecoderInvert(t *testing.T) {
	d := NewDecoder(false)
	d.Invert = true
	if got, _ := d.Poll(true, false); got != StepCCW {
		t.Fatalf("inverted step = %v, want %v", got, StepCCW)
	}
}

type fakePin struct {
	level bool
	err   error
}

func (p *fakePin) Read() (bool, error) { return p.level, p.err }

func TestEncoderSeedsFromPhaseA(t *testing.T) {
	a, b := &fakePin{level: true}, &fakePin{}
	enc, err := NewEncoder(a, b, false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, ok, _ := enc.Poll(); ok {
		t.Fatal("steady phase A at startup must not step")
	}
	a.level = false
	step, ok, err := enc.Poll()
	if err != nil || !ok || step != StepCCW {
		t.Fatalf("Poll() = (%v, %v, %v), want (%v, true, nil)", step, ok, err, StepCCW)
	}
}

func TestEncoderReadError(t *testing.T) {
	boom := errors.New("boom")
	a, b := &fakePin{}, &fakePin{err: boom}
	enc, err := NewEncoder(a, b, false)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, _, err := enc.Poll(); !errors.Is(err, boom) {
		t.Fatalf("Poll() err = %v, want %v", err, boom)
	}
}

func TestButtonActiveLow(t *testing.T) {
	pin := &fakePin{level: true}
	btn := NewButton(pin, true, 300)
	if pressed, _ := btn.Poll(1000); pressed {
		t.Fatal("high level on an active-low button is released")
	}
	pin.level = false
	if pressed, _ := btn.Poll(1020); !pressed {
		t.Fatal("low level on an active-low button is a press")
	}
}
