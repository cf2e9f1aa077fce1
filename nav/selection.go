package nav

import "fmt"

// Selection is the highlighted index of one list. It wraps on overflow.
// The zero value is unbound (size 0).
type Selection struct {
	index int
	size  int
}

// Bind attaches the selection to a list of size items and resets it to 0.
func (s *Selection) Bind(size int) error {
	if size < 1 {
		return ErrEmptyList
	}
	s.size = size
	s.index = 0
	return nil
}

// Apply moves by step, wrapping in both directions, and returns the new index.
func (s *Selection) Apply(step int) int {
	if s.size < 1 {
		return 0
	}
	s.index = ((s.index+step)%s.size + s.size) % s.size
	return s.index
}

// Set selects index directly.
func (s *Selection) Set(index int) error {
	if index < 0 || index >= s.size {
		return fmt.Errorf("set %d of %d: %w", index, s.size, ErrOutOfRange)
	}
	s.index = index
	return nil
}

func (s *Selection) clamp(index int) {
	switch {
	case s.size < 1:
		s.index = 0
	case index < 0:
		s.index = 0
	case index >= s.size:
		s.index = s.size - 1
	default:
		s.index = index
	}
}

func (s *Selection) Index() int { return s.index }
func (s *Selection) Size() int  { return s.size }
