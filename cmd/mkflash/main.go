//go:build !tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"knobmenu/config"
	"knobmenu/storage"
)

const (
	defaultFlashPath = "knobmenu.flash"
	defaultFlashSize = 256 * 1024
	defaultEraseSize = 4096
)

type flashFile struct {
	f         *os.File
	size      uint32
	eraseSize uint32

	scratch []byte
}

func openFlashFile(path string, size uint32, eraseSize uint32) (*flashFile, error) {
	if eraseSize == 0 || eraseSize%256 != 0 {
		return nil, fmt.Errorf("flash: invalid erase size %d", eraseSize)
	}
	if size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("flash: size %d not multiple of erase size %d", size, eraseSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flash file %q: %w", path, err)
	}

	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncate flash file %q to %d: %w", path, size, err)
	}

	ff := &flashFile{
		f:         f,
		size:      size,
		eraseSize: eraseSize,
		scratch:   make([]byte, eraseSize),
	}
	for i := range ff.scratch {
		ff.scratch[i] = 0xFF
	}

	if err := ff.Erase(0, size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("erase flash file %q: %w", path, err)
	}

	return ff, nil
}

func (f *flashFile) Close() error { return f.f.Close() }

func (f *flashFile) SizeBytes() uint32       { return f.size }
func (f *flashFile) EraseBlockBytes() uint32 { return f.eraseSize }

func (f *flashFile) ReadAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash read at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *flashFile) WriteAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash write at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}

	prev := make([]byte, len(p))
	if _, err := f.f.ReadAt(prev, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if prev[i]&p[i] != p[i] {
			return 0, errors.New("flash write requires erase")
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *flashFile) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	if off%f.eraseSize != 0 || size%f.eraseSize != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	if off >= f.size || off+size > f.size {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for size > 0 {
		if _, err := f.f.WriteAt(f.scratch, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
		off += f.eraseSize
		size -= f.eraseSize
	}
	return nil
}

type options struct {
	out   string
	size  uint32
	erase uint32

	debounceMs    uint16
	frameMs       uint16
	invertEncoder bool
	returnFirst   bool
	tapSelects    bool
	repeatCal     bool

	cal        string
	calSwap    bool
	calInvertX bool
	calInvertY bool
}

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "mkflash",
		Short:        "Build a host flash image pre-seeded with device settings and touch calibration",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.out == "" {
				return errors.New("--out is required")
			}
			if err := run(o); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", o.out, o.size)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.out, "out", defaultFlashPath, "Output flash image path")
	f.Uint32Var(&o.size, "size", defaultFlashSize, "Flash image size (bytes)")
	f.Uint32Var(&o.erase, "erase", defaultEraseSize, "Erase block size (bytes)")
	f.Uint16Var(&o.debounceMs, "debounce-ms", 0, "Button debounce delay (0 = firmware default)")
	f.Uint16Var(&o.frameMs, "frame-ms", 0, "Frame delay (0 = firmware default)")
	f.BoolVar(&o.invertEncoder, "invert-encoder", false, "Reverse the encoder direction")
	f.BoolVar(&o.returnFirst, "return-first", false, "Put Return at the top of sub lists")
	f.BoolVar(&o.tapSelects, "tap-selects", false, "Tapping a main item also moves the highlight")
	f.BoolVar(&o.repeatCal, "repeat-calibration", false, "Calibrate the touch panel at every boot")
	f.StringVar(&o.cal, "cal", "", "Touch calibration as xmin,xmax,ymin,ymax (raw panel units)")
	f.BoolVar(&o.calSwap, "cal-swap", false, "Panel axes are swapped")
	f.BoolVar(&o.calInvertX, "cal-invert-x", false, "Panel X axis is reversed")
	f.BoolVar(&o.calInvertY, "cal-invert-y", false, "Panel Y axis is reversed")
	return cmd
}

func run(o options) error {
	var cal *config.Calibration
	if o.cal != "" {
		c, err := parseCalibration(o.cal)
		if err != nil {
			return err
		}
		if o.calSwap {
			c.Flags |= config.CalSwapXY
		}
		if o.calInvertX {
			c.Flags |= config.CalInvertX
		}
		if o.calInvertY {
			c.Flags |= config.CalInvertY
		}
		cal = &c
	}

	lock := flock.New(o.out + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", o.out, err)
	}
	if !locked {
		return fmt.Errorf("%s is in use by a running simulator", o.out)
	}
	defer func() { _ = lock.Unlock() }()

	ff, err := openFlashFile(o.out, o.size, o.erase)
	if err != nil {
		return err
	}
	defer func() { _ = ff.Close() }()

	dev, err := storage.NewFlashDevice(ff)
	if err != nil {
		return err
	}
	m, err := storage.New(dev, true)
	if err != nil {
		return err
	}
	defer m.Close()

	d := config.DeviceConfig{
		Version:    config.CurrentVersion,
		DebounceMs: o.debounceMs,
		FrameMs:    o.frameMs,
	}
	d.Set(config.FlagInvertEncoder, o.invertEncoder)
	d.Set(config.FlagReturnFirst, o.returnFirst)
	d.Set(config.FlagTapSelects, o.tapSelects)
	d.Set(config.FlagRepeatCalibration, o.repeatCal)
	if err := m.SaveDevice(&d); err != nil {
		return fmt.Errorf("device settings: %w", err)
	}
	if cal != nil {
		if err := m.SaveCalibration(cal); err != nil {
			return fmt.Errorf("calibration: %w", err)
		}
	}
	return m.Close()
}

func parseCalibration(s string) (config.Calibration, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return config.Calibration{}, fmt.Errorf("--cal %q: want xmin,xmax,ymin,ymax", s)
	}
	var v [4]uint16
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			return config.Calibration{}, fmt.Errorf("--cal %q: %w", s, err)
		}
		v[i] = uint16(n)
	}
	cal := config.Calibration{
		Version: config.CurrentVersion,
		XMin:    v[0],
		XMax:    v[1],
		YMin:    v[2],
		YMax:    v[3],
	}
	if !cal.Valid() {
		return config.Calibration{}, fmt.Errorf("--cal %q: empty range", s)
	}
	return cal, nil
}
