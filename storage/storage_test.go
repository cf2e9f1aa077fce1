package storage

import (
	"errors"
	"testing"

	"knobmenu/config"

	"tinygo.org/x/tinyfs"
)

func newTestStorage(t *testing.T) (*Manager, *tinyfs.MemBlockDevice) {
	t.Helper()
	// 256 byte pages, 4096 byte blocks, 64 blocks = 256KB
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return mgr, blockDev
}

func testCalibration() config.Calibration {
	return config.Calibration{XMin: 200, XMax: 3900, YMin: 300, YMax: 3800, Flags: config.CalInvertY}
}

func TestCalibrationSaveLoad(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	original := testCalibration()
	if err := mgr.SaveCalibration(&original); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}
	var loaded config.Calibration
	if err := mgr.LoadCalibration(&loaded); err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if loaded.Version != config.CurrentVersion {
		t.Errorf("Version = %d, want %d", loaded.Version, config.CurrentVersion)
	}
	if loaded != original {
		t.Errorf("loaded = %+v, want %+v", loaded, original)
	}
}

func TestCalibrationNotFound(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	var cal config.Calibration
	if err := mgr.LoadCalibration(&cal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCalibration() err = %v, want ErrNotFound", err)
	}
	if err := mgr.DeleteCalibration(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteCalibration() err = %v, want ErrNotFound", err)
	}
}

func TestSaveCalibrationRejectsInvalid(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	bad := config.Calibration{XMin: 10, XMax: 10, YMin: 1, YMax: 2}
	if err := mgr.SaveCalibration(&bad); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("SaveCalibration() err = %v, want ErrInvalidData", err)
	}
}

func TestDeleteCalibration(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	cal := testCalibration()
	if err := mgr.SaveCalibration(&cal); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}
	if err := mgr.DeleteCalibration(); err != nil {
		t.Fatalf("DeleteCalibration failed: %v", err)
	}
	if err := mgr.LoadCalibration(&cal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCalibration() after delete err = %v, want ErrNotFound", err)
	}
}

func TestDeviceConfigSaveLoad(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	original := config.DeviceConfig{
		Flags:      config.FlagInvertEncoder | config.FlagReturnFirst,
		DebounceMs: 150,
		FrameMs:    10,
	}
	if err := mgr.SaveDevice(&original); err != nil {
		t.Fatalf("SaveDevice failed: %v", err)
	}
	var loaded config.DeviceConfig
	if err := mgr.LoadDevice(&loaded); err != nil {
		t.Fatalf("LoadDevice failed: %v", err)
	}
	if loaded != original {
		t.Errorf("loaded = %+v, want %+v", loaded, original)
	}
}

func TestOverwrite(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	for _, ms := range []uint16{100, 200, 300} {
		cfg := config.DeviceConfig{DebounceMs: ms}
		if err := mgr.SaveDevice(&cfg); err != nil {
			t.Fatalf("SaveDevice(%d) failed: %v", ms, err)
		}
	}
	var loaded config.DeviceConfig
	if err := mgr.LoadDevice(&loaded); err != nil {
		t.Fatalf("LoadDevice failed: %v", err)
	}
	if loaded.DebounceMs != 300 {
		t.Fatalf("DebounceMs = %d, want 300", loaded.DebounceMs)
	}
}

func TestPersistenceAcrossMount(t *testing.T) {
	mgr, dev := newTestStorage(t)
	cal := testCalibration()
	if err := mgr.SaveCalibration(&cal); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mgr2, err := New(dev, false)
	if err != nil {
		t.Fatalf("remount failed: %v", err)
	}
	defer mgr2.Close()
	var loaded config.Calibration
	if err := mgr2.LoadCalibration(&loaded); err != nil {
		t.Fatalf("LoadCalibration after remount failed: %v", err)
	}
	if loaded != cal {
		t.Fatalf("loaded = %+v, want %+v", loaded, cal)
	}
	if mgr2.Wiped() {
		t.Fatal("Wiped() = true for current-version records")
	}
}

func TestVersionMismatchWipes(t *testing.T) {
	mgr, dev := newTestStorage(t)
	cal := testCalibration()
	if err := mgr.SaveCalibration(&cal); err != nil {
		t.Fatalf("SaveCalibration failed: %v", err)
	}
	stale := config.DeviceConfig{Version: config.CurrentVersion + 1}
	data, _ := stale.MarshalBinary()
	if err := mgr.save(deviceFile, data); err != nil {
		t.Fatalf("writing stale record failed: %v", err)
	}
	var d config.DeviceConfig
	if err := mgr.LoadDevice(&d); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("LoadDevice() err = %v, want ErrVersionMismatch", err)
	}
	mgr.Close()

	mgr2, err := New(dev, false)
	if err != nil {
		t.Fatalf("remount failed: %v", err)
	}
	defer mgr2.Close()
	if !mgr2.Wiped() {
		t.Fatal("Wiped() = false after version mismatch")
	}
	if err := mgr2.LoadCalibration(&cal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCalibration() err = %v, want ErrNotFound", err)
	}
}

func TestBootCleanupRemovesTempFiles(t *testing.T) {
	mgr, dev := newTestStorage(t)
	if err := mgr.save(deviceFile+tempSuffix, []byte("partial")); err != nil {
		t.Fatalf("writing temp file failed: %v", err)
	}
	mgr.Close()

	mgr2, err := New(dev, false)
	if err != nil {
		t.Fatalf("remount failed: %v", err)
	}
	defer mgr2.Close()
	entries, err := mgr2.readDir(configDir)
	if err != nil {
		t.Fatalf("readDir failed: %v", err)
	}
	for _, e := range entries {
		if e.Name() == "device.bin.tmp" || e.Name() == "device.bin.tmp.tmp" {
			t.Fatalf("temp file %q survived boot cleanup", e.Name())
		}
	}
}

func TestWipe(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	cal := testCalibration()
	cfg := config.DeviceConfig{DebounceMs: 100}
	mgr.SaveCalibration(&cal)
	mgr.SaveDevice(&cfg)
	if err := mgr.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	if err := mgr.LoadDevice(&cfg); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadDevice() after wipe err = %v, want ErrNotFound", err)
	}
	// Wiping an empty store is fine.
	if err := mgr.Wipe(); err != nil {
		t.Fatalf("second Wipe failed: %v", err)
	}
}
