// Package config defines the records kept in flash. Both are fixed-size,
// little-endian and versioned so a firmware update can detect stale data.
package config

import (
	"encoding/binary"
	"errors"
)

// CurrentVersion is the record format version.
// Bump this when making breaking changes to either layout; records with a
// different version are wiped at boot.
const CurrentVersion uint16 = 1

const (
	CalibrationSize  = 12
	DeviceConfigSize = 12
)

var ErrInvalidSize = errors.New("invalid config size")

// Calibration flags.
const (
	CalSwapXY uint8 = 1 << iota
	CalInvertX
	CalInvertY
)

// Calibration maps raw touch controller readings onto the screen.
// Total size: 12 bytes
// Layout:
//
//	[0-1]:  Version (uint16)
//	[2-3]:  XMin (uint16) raw reading at the left edge
//	[4-5]:  XMax (uint16) raw reading at the right edge
//	[6-7]:  YMin (uint16) raw reading at the top edge
//	[8-9]:  YMax (uint16) raw reading at the bottom edge
//	[10]:   Flags (uint8)
//	[11]:   Reserved
type Calibration struct {
	Version  uint16
	XMin     uint16
	XMax     uint16
	YMin     uint16
	YMax     uint16
	Flags    uint8
	Reserved uint8
}

func (c *Calibration) MarshalBinary() ([]byte, error) {
	buf := make([]byte, CalibrationSize)
	binary.LittleEndian.PutUint16(buf[0:], c.Version)
	binary.LittleEndian.PutUint16(buf[2:], c.XMin)
	binary.LittleEndian.PutUint16(buf[4:], c.XMax)
	binary.LittleEndian.PutUint16(buf[6:], c.YMin)
	binary.LittleEndian.PutUint16(buf[8:], c.YMax)
	buf[10] = c.Flags
	buf[11] = c.Reserved
	return buf, nil
}

func (c *Calibration) UnmarshalBinary(data []byte) error {
	if len(data) != CalibrationSize {
		return ErrInvalidSize
	}
	c.Version = binary.LittleEndian.Uint16(data[0:])
	c.XMin = binary.LittleEndian.Uint16(data[2:])
	c.XMax = binary.LittleEndian.Uint16(data[4:])
	c.YMin = binary.LittleEndian.Uint16(data[6:])
	c.YMax = binary.LittleEndian.Uint16(data[8:])
	c.Flags = data[10]
	c.Reserved = data[11]
	return nil
}

// Valid reports whether both axes span a non-empty raw range.
func (c *Calibration) Valid() bool {
	return c.XMin != c.XMax && c.YMin != c.YMax
}

// Device flags.
const (
	FlagInvertEncoder uint32 = 1 << iota
	FlagReturnFirst
	FlagTapSelects
	FlagRepeatCalibration
)

// DeviceConfig holds settings that override compiled-in defaults at boot.
// Zero timing fields mean "use the default".
// Total size: 12 bytes
// Layout:
//
//	[0-1]:   Version (uint16)
//	[2-5]:   Flags (uint32)
//	[6-7]:   DebounceMs (uint16)
//	[8-9]:   FrameMs (uint16)
//	[10-11]: Reserved
type DeviceConfig struct {
	Version    uint16
	Flags      uint32
	DebounceMs uint16
	FrameMs    uint16
	Reserved   uint16
}

func (d *DeviceConfig) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DeviceConfigSize)
	binary.LittleEndian.PutUint16(buf[0:], d.Version)
	binary.LittleEndian.PutUint32(buf[2:], d.Flags)
	binary.LittleEndian.PutUint16(buf[6:], d.DebounceMs)
	binary.LittleEndian.PutUint16(buf[8:], d.FrameMs)
	binary.LittleEndian.PutUint16(buf[10:], d.Reserved)
	return buf, nil
}

func (d *DeviceConfig) UnmarshalBinary(data []byte) error {
	if len(data) != DeviceConfigSize {
		return ErrInvalidSize
	}
	d.Version = binary.LittleEndian.Uint16(data[0:])
	d.Flags = binary.LittleEndian.Uint32(data[2:])
	d.DebounceMs = binary.LittleEndian.Uint16(data[6:])
	d.FrameMs = binary.LittleEndian.Uint16(data[8:])
	d.Reserved = binary.LittleEndian.Uint16(data[10:])
	return nil
}

func (d *DeviceConfig) Has(flag uint32) bool { return d.Flags&flag != 0 }

// Set turns flag on or off.
func (d *DeviceConfig) Set(flag uint32, on bool) {
	if on {
		d.Flags |= flag
	} else {
		d.Flags &^= flag
	}
}
