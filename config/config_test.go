package config

import (
	"bytes"
	"errors"
	"testing"
)

func TestCalibrationLayout(t *testing.T) {
	c := Calibration{Version: 1, XMin: 0x0102, XMax: 0x0304, YMin: 5, YMax: 6, Flags: CalSwapXY | CalInvertY}
	data, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	want := []byte{1, 0, 0x02, 0x01, 0x04, 0x03, 5, 0, 6, 0, CalSwapXY | CalInvertY, 0}
	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary = %x, want %x", data, want)
	}

	var decoded Calibration
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if decoded != c {
		t.Errorf("decoded = %+v, want %+v", decoded, c)
	}
}

func TestCalibrationValid(t *testing.T) {
	if (&Calibration{XMin: 10, XMax: 10, YMin: 1, YMax: 2}).Valid() {
		t.Error("zero-width X range should be invalid")
	}
	if !(&Calibration{XMin: 3800, XMax: 200, YMin: 300, YMax: 3700}).Valid() {
		t.Error("reversed ranges are valid")
	}
}

func TestDeviceConfigMarshalUnmarshal(t *testing.T) {
	original := DeviceConfig{
		Version:    CurrentVersion,
		Flags:      FlagInvertEncoder | FlagReturnFirst,
		DebounceMs: 300,
		FrameMs:    20,
		Reserved:   0xABCD,
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if len(data) != DeviceConfigSize {
		t.Errorf("Expected %d bytes, got %d", DeviceConfigSize, len(data))
	}

	var decoded DeviceConfig
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestUnmarshalInvalidSize(t *testing.T) {
	var d DeviceConfig
	if err := d.UnmarshalBinary(make([]byte, 11)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("DeviceConfig short buffer: err = %v, want ErrInvalidSize", err)
	}
	var c Calibration
	if err := c.UnmarshalBinary(make([]byte, 13)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Calibration long buffer: err = %v, want ErrInvalidSize", err)
	}
}

func TestDeviceConfigFlags(t *testing.T) {
	var d DeviceConfig
	d.Set(FlagTapSelects, true)
	d.Set(FlagReturnFirst, true)
	d.Set(FlagReturnFirst, false)
	if !d.Has(FlagTapSelects) || d.Has(FlagReturnFirst) || d.Has(FlagInvertEncoder) {
		t.Errorf("Flags = %#x, want only FlagTapSelects", d.Flags)
	}
}
