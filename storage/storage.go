// Package storage keeps the touch calibration and device settings in a
// LittleFS volume. Writes go through a temp file and a rename so a power cut
// leaves either the old or the new record.
package storage

import (
	"errors"
	"os"
	"path"
	"strings"

	"knobmenu/config"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	configDir       = "/config"
	calibrationFile = "/config/calibration.bin"
	deviceFile      = "/config/device.bin"
	tempSuffix      = ".tmp"
)

var (
	ErrNotFound        = errors.New("storage: record not found")
	ErrInvalidData     = errors.New("storage: invalid record data")
	ErrVersionMismatch = errors.New("storage: record version mismatch")
)

// Manager owns the mounted filesystem.
type Manager struct {
	fs       *littlefs.LFS
	blockDev tinyfs.BlockDevice
	mounted  bool
	wiped    bool
}

// New mounts the filesystem on blockDev, formatting it first when format is
// set and the mount fails. Leftover temp files are removed and records from
// another format version are wiped.
func New(blockDev tinyfs.BlockDevice, format bool) (*Manager, error) {
	lfs := littlefs.New(blockDev)
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	if err := lfs.Mount(); err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	m := &Manager{fs: lfs, blockDev: blockDev, mounted: true}

	// A failed cleanup only leaves stale temp files behind.
	_ = m.bootCleanup()

	stale, err := m.checkVersion()
	if err == nil && stale {
		if err := m.Wipe(); err != nil {
			m.Close()
			return nil, err
		}
		m.wiped = true
	}
	return m, nil
}

// Wiped reports whether New discarded records from another version.
func (m *Manager) Wiped() bool { return m.wiped }

func (m *Manager) Close() error {
	if m.mounted {
		m.mounted = false
		return m.fs.Unmount()
	}
	return nil
}

func (m *Manager) bootCleanup() error {
	entries, err := m.readDir(configDir)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, tempSuffix) {
			m.fs.Remove(path.Join(configDir, name))
		}
	}
	return nil
}

func (m *Manager) readDir(dirPath string) ([]os.FileInfo, error) {
	f, err := m.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.IsDir() {
		return nil, errors.New("not a directory")
	}
	return f.Readdir(-1)
}

// checkVersion reports whether the stored device record is from another
// format version.
func (m *Manager) checkVersion() (bool, error) {
	data, err := m.readFile(deviceFile, config.DeviceConfigSize)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	var cfg config.DeviceConfig
	if err := cfg.UnmarshalBinary(data); err != nil {
		return true, nil
	}
	return cfg.Version != config.CurrentVersion, nil
}

// Wipe removes every stored record.
func (m *Manager) Wipe() error {
	for _, p := range []string{calibrationFile, deviceFile} {
		if err := m.fs.Remove(p); err != nil && !isNotExist(err) {
			return err
		}
	}
	return nil
}

func (m *Manager) ensureDirs() error {
	if err := m.fs.Mkdir(configDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

// isExist checks if an error is "already exists". LittleFS errors don't
// always match os.IsExist, so the message is checked too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "No directory entry")
}

// LoadCalibration reads the stored touch calibration.
func (m *Manager) LoadCalibration(cal *config.Calibration) error {
	data, err := m.readFile(calibrationFile, config.CalibrationSize)
	if err != nil {
		return err
	}
	var c config.Calibration
	if err := c.UnmarshalBinary(data); err != nil {
		return ErrInvalidData
	}
	if c.Version != config.CurrentVersion {
		return ErrVersionMismatch
	}
	if !c.Valid() {
		return ErrInvalidData
	}
	*cal = c
	return nil
}

// SaveCalibration stamps the current version and writes cal atomically.
func (m *Manager) SaveCalibration(cal *config.Calibration) error {
	if !cal.Valid() {
		return ErrInvalidData
	}
	cal.Version = config.CurrentVersion
	data, err := cal.MarshalBinary()
	if err != nil {
		return err
	}
	return m.save(calibrationFile, data)
}

// DeleteCalibration forgets the calibration so the next boot asks again.
func (m *Manager) DeleteCalibration() error {
	if err := m.fs.Remove(calibrationFile); err != nil {
		if isNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// LoadDevice reads the stored device settings.
func (m *Manager) LoadDevice(cfg *config.DeviceConfig) error {
	data, err := m.readFile(deviceFile, config.DeviceConfigSize)
	if err != nil {
		return err
	}
	var d config.DeviceConfig
	if err := d.UnmarshalBinary(data); err != nil {
		return ErrInvalidData
	}
	if d.Version != config.CurrentVersion {
		return ErrVersionMismatch
	}
	*cfg = d
	return nil
}

// SaveDevice stamps the current version and writes cfg atomically.
func (m *Manager) SaveDevice(cfg *config.DeviceConfig) error {
	cfg.Version = config.CurrentVersion
	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}
	return m.save(deviceFile, data)
}

func (m *Manager) save(p string, data []byte) error {
	if err := m.ensureDirs(); err != nil {
		return err
	}
	return m.atomicWrite(p, data)
}

// readFile reads exactly size bytes from p.
func (m *Manager) readFile(p string, size int) ([]byte, error) {
	f, err := m.fs.Open(p)
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size+1)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, ErrInvalidData
	}
	if n != size {
		return nil, ErrInvalidData
	}
	return buf[:size], nil
}

// atomicWrite writes data to a temporary file, syncs it, then renames.
func (m *Manager) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix

	m.fs.Remove(tempPath)

	f, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tempPath)
		return err
	}
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			m.fs.Remove(tempPath)
			return err
		}
	}
	if err := f.Close(); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	// LittleFS rename doesn't replace.
	m.fs.Remove(filepath)

	if err := m.fs.Rename(tempPath, filepath); err != nil {
		m.fs.Remove(tempPath)
		return err
	}
	return nil
}
