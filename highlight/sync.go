// Package highlight keeps the "selected" style on exactly one row of the
// active list, issuing only the style changes that are needed.
package highlight

import "knobmenu/nav"

// Styler is the rendering side of highlighting.
type Styler interface {
	SetItemStyle(h nav.ListHandle, index int, selected bool)
}

// Sync remembers what it last painted so repeated calls are free.
type Sync struct {
	styler Styler
	handle nav.ListHandle
	index  int
	valid  bool
}

func New(s Styler) *Sync {
	return &Sync{styler: s}
}

// Apply makes the row at sel.Index() the only selected row of list and
// returns how many style operations it issued. A list it has not seen
// before gets a full pass; otherwise only the old and new rows are touched.
func (s *Sync) Apply(list *nav.List, sel *nav.Selection) int {
	if list == nil || sel == nil || list.Size() == 0 {
		return 0
	}
	idx := sel.Index()
	if idx < 0 || idx >= list.Size() {
		// Never paint a malformed index.
		return 0
	}

	if !s.valid || s.handle != list.Handle {
		for i := 0; i < list.Size(); i++ {
			s.styler.SetItemStyle(list.Handle, i, i == idx)
		}
		s.handle, s.index, s.valid = list.Handle, idx, true
		return list.Size()
	}

	if s.index == idx {
		return 0
	}
	s.styler.SetItemStyle(list.Handle, s.index, false)
	s.styler.SetItemStyle(list.Handle, idx, true)
	s.index = idx
	return 2
}

// Reset forgets the painted state; the next Apply does a full pass.
func (s *Sync) Reset() {
	s.valid = false
}
