// Package fbui is the on-device list toolkit: it draws lists into the HAL
// framebuffer, hit-tests calibrated touches and reports taps as nav events.
package fbui

import (
	"image/color"

	"knobmenu/nav"
	"knobmenu/touch"
	"knobmenu/ui/canvas"
)

// Theme colors. The selected row is red like the reference firmware.
type Theme struct {
	Screen      color.RGBA
	List        color.RGBA
	Border      color.RGBA
	Row         color.RGBA
	RowSelected color.RGBA
	Text        color.RGBA
	TextOnSel   color.RGBA
	Divider     color.RGBA
}

func DefaultTheme() Theme {
	return Theme{
		Screen:      canvas.RGB(0xFFFFFF),
		List:        canvas.RGB(0xFFFFFF),
		Border:      canvas.RGB(0xC0C0C0),
		Row:         canvas.RGB(0xFFFFFF),
		RowSelected: canvas.RGB(0xFF0000),
		Text:        canvas.RGB(0x202020),
		TextOnSel:   canvas.RGB(0xFFFFFF),
		Divider:     canvas.RGB(0xE0E0E0),
	}
}

// Options place a centered list box on the screen.
type Options struct {
	ListWidth  int
	ListHeight int
	RowHeight  int
	Theme      Theme
}

func DefaultOptions() Options {
	return Options{ListWidth: 200, ListHeight: 150, RowHeight: 30, Theme: DefaultTheme()}
}

type list struct {
	handle   nav.ListHandle
	kind     nav.Kind
	items    []nav.Item
	selected []bool
	scroll   int
}

// Toolkit implements nav.Toolkit and highlight.Styler. Only the most
// recently created list is drawn and receives touches.
type Toolkit struct {
	cv    *canvas.Canvas
	opts  Options
	taps  func(nav.Event)
	lists []*list
	next  nav.ListHandle
	dirty bool

	pressed   bool
	pressList nav.ListHandle
	pressRow  int
}

// New draws on cv and reports taps to onTap.
func New(cv *canvas.Canvas, opts Options, onTap func(nav.Event)) *Toolkit {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultOptions().RowHeight
	}
	return &Toolkit{cv: cv, opts: opts, taps: onTap, dirty: true}
}

func (tk *Toolkit) CreateList(kind nav.Kind, items []nav.Item) nav.ListHandle {
	tk.next++
	l := &list{
		handle:   tk.next,
		kind:     kind,
		items:    append([]nav.Item(nil), items...),
		selected: make([]bool, len(items)),
	}
	tk.lists = append(tk.lists, l)
	tk.cancelPress()
	tk.dirty = true
	return l.handle
}

func (tk *Toolkit) DestroyList(h nav.ListHandle) {
	for i, l := range tk.lists {
		if l.handle == h {
			tk.lists = append(tk.lists[:i], tk.lists[i+1:]...)
			tk.cancelPress()
			tk.dirty = true
			return
		}
	}
}

func (tk *Toolkit) SetItemStyle(h nav.ListHandle, index int, selected bool) {
	l := tk.find(h)
	if l == nil || index < 0 || index >= len(l.selected) {
		return
	}
	if l.selected[index] == selected {
		return
	}
	l.selected[index] = selected
	if selected {
		tk.ensureVisible(l, index)
	}
	if l == tk.top() {
		tk.dirty = true
	}
}

func (tk *Toolkit) find(h nav.ListHandle) *list {
	for _, l := range tk.lists {
		if l.handle == h {
			return l
		}
	}
	return nil
}

func (tk *Toolkit) top() *list {
	if len(tk.lists) == 0 {
		return nil
	}
	return tk.lists[len(tk.lists)-1]
}

func (tk *Toolkit) visibleRows() int {
	n := tk.opts.ListHeight / tk.opts.RowHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (tk *Toolkit) ensureVisible(l *list, index int) {
	rows := tk.visibleRows()
	if index < l.scroll {
		l.scroll = index
	} else if index >= l.scroll+rows {
		l.scroll = index - rows + 1
	}
	maxScroll := max(0, len(l.items)-rows)
	l.scroll = min(max(l.scroll, 0), maxScroll)
}

// box returns the list rectangle centered on screen.
func (tk *Toolkit) box() (x, y, w, h int) {
	sw, sh := tk.cv.Size()
	w, h = tk.opts.ListWidth, tk.opts.ListHeight
	return (int(sw) - w) / 2, (int(sh) - h) / 2, w, h
}

// RowAt hit-tests a screen point against the top list.
func (tk *Toolkit) RowAt(p touch.Point) (nav.ListHandle, int, bool) {
	l := tk.top()
	if l == nil {
		return 0, 0, false
	}
	x, y, w, h := tk.box()
	if p.X < x || p.X >= x+w || p.Y < y || p.Y >= y+h {
		return 0, 0, false
	}
	row := (p.Y-y)/tk.opts.RowHeight + l.scroll
	if row < 0 || row >= len(l.items) {
		return 0, 0, false
	}
	return l.handle, row, true
}

// Touch feeds one calibrated sample. A tap is reported on release when the
// press and the release land on the same row of the same list.
func (tk *Toolkit) Touch(p touch.Point, down bool) {
	h, row, hit := tk.RowAt(p)
	if down {
		if !tk.pressed {
			tk.pressed = hit
			tk.pressList, tk.pressRow = h, row
		} else if !hit || h != tk.pressList || row != tk.pressRow {
			// Slid off the row: no click.
			tk.pressList = 0
		}
		return
	}
	if !tk.pressed {
		return
	}
	tk.pressed = false
	if tk.pressList == 0 || !hit || h != tk.pressList || row != tk.pressRow {
		return
	}
	if l := tk.find(h); l != nil && tk.taps != nil {
		tk.taps(nav.ItemTapped(l.kind, row))
	}
}

func (tk *Toolkit) cancelPress() {
	tk.pressed = false
	tk.pressList = 0
}

// Dirty reports whether the next Refresh will redraw.
func (tk *Toolkit) Dirty() bool { return tk.dirty }

// Invalidate forces a redraw on the next Refresh.
func (tk *Toolkit) Invalidate() { tk.dirty = true }

// Refresh redraws and presents the screen if anything changed.
func (tk *Toolkit) Refresh() error {
	if !tk.dirty {
		return nil
	}
	tk.draw()
	tk.dirty = false
	return tk.cv.Display()
}

func (tk *Toolkit) draw() {
	th := tk.opts.Theme
	tk.cv.Clear(th.Screen)

	l := tk.top()
	if l == nil {
		return
	}
	x, y, w, h := tk.box()
	tk.cv.FillRect(x, y, w, h, th.List)

	rows := tk.visibleRows()
	rh := tk.opts.RowHeight
	baseline := (rh+canvas.LineHeight())/2 - 2
	for r := 0; r < rows; r++ {
		i := l.scroll + r
		if i >= len(l.items) {
			break
		}
		ry := y + r*rh
		bg, fg := th.Row, th.Text
		if l.selected[i] {
			bg, fg = th.RowSelected, th.TextOnSel
		}
		tk.cv.FillRect(x+1, ry+1, w-2, rh-1, bg)
		tk.cv.FillRect(x+1, ry+rh-1, w-2, 1, th.Divider)
		tk.cv.Text(x+10, ry+baseline, canvas.Fit(l.items[i].Label, w-20), fg)
	}
	if len(l.items) > rows {
		tk.drawScrollbar(l, x+w-4, y, h)
	}
	tk.cv.StrokeRect(x, y, w, h, th.Border)
}

func (tk *Toolkit) drawScrollbar(l *list, x, y, h int) {
	rows := tk.visibleRows()
	thumb := max(h*rows/len(l.items), 4)
	off := (h - thumb) * l.scroll / max(len(l.items)-rows, 1)
	tk.cv.FillRect(x, y+off, 3, thumb, tk.opts.Theme.Border)
}
