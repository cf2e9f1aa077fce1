package hal

// stubFlash is used on targets without a usable data flash region. Every
// operation fails, so storage falls back to compiled-in defaults.
type stubFlash struct{}

func (stubFlash) SizeBytes() uint32       { return 0 }
func (stubFlash) EraseBlockBytes() uint32 { return 0 }

func (stubFlash) ReadAt(p []byte, off uint32) (int, error)  { return 0, ErrNotImplemented }
func (stubFlash) WriteAt(p []byte, off uint32) (int, error) { return 0, ErrNotImplemented }
func (stubFlash) Erase(off, size uint32) error              { return ErrNotImplemented }
