//go:build !tinygo

// Package termui renders the menu in a terminal. Keys drive the simulated
// encoder and button, mouse clicks are taps.
package termui

import (
	"errors"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"knobmenu/nav"
)

var newScreen = tcell.NewScreen

var ErrQuit = errors.New("termui: quit")

// Input is the simulated knob. *hal.Controls implements it.
type Input interface {
	Turn(delta int)
	Click()
}

const (
	listWidth = 32
	hintLine  = "Up/Down: turn  Enter/Space: press  click: tap  q: quit"
)

type list struct {
	handle   nav.ListHandle
	kind     nav.Kind
	items    []nav.Item
	selected []bool
	scroll   int
}

// Toolkit implements nav.Toolkit and highlight.Styler on a tcell screen.
// Styling is called from the frame loop while mouse hit-testing runs on the
// event pump, so list state is guarded.
type Toolkit struct {
	screen tcell.Screen
	input  Input
	taps   func(nav.Event)

	mu     sync.Mutex
	lists  []*list
	next   nav.ListHandle
	dirty  bool
	status string

	pressed   bool
	pressList nav.ListHandle
	pressRow  int

	quitOnce sync.Once
	quit     chan struct{}
	pumpDone chan struct{}
}

// New opens the terminal.
func New(input Input, onTap func(nav.Event)) (*Toolkit, error) {
	screen, err := newScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return NewWithScreen(screen, input, onTap), nil
}

// NewWithScreen uses an initialized screen.
func NewWithScreen(screen tcell.Screen, input Input, onTap func(nav.Event)) *Toolkit {
	screen.EnableMouse()
	return &Toolkit{
		screen: screen,
		input:  input,
		taps:   onTap,
		dirty:  true,
		quit:   make(chan struct{}),
	}
}

// Start runs the event pump until the screen is closed.
func (tk *Toolkit) Start() {
	tk.pumpDone = make(chan struct{})
	go func() {
		defer close(tk.pumpDone)
		for {
			ev := tk.screen.PollEvent()
			if ev == nil {
				return
			}
			tk.HandleEvent(ev)
		}
	}()
}

// Done is closed when the user asks to quit.
func (tk *Toolkit) Done() <-chan struct{} { return tk.quit }

// Close restores the terminal.
func (tk *Toolkit) Close() {
	tk.screen.Fini()
	if tk.pumpDone != nil {
		<-tk.pumpDone
	}
}

func (tk *Toolkit) stop() {
	tk.quitOnce.Do(func() { close(tk.quit) })
}

// HandleEvent applies one terminal event.
func (tk *Toolkit) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		tk.screen.Sync()
		tk.mu.Lock()
		tk.dirty = true
		tk.mu.Unlock()
	case *tcell.EventKey:
		tk.handleKey(ev)
	case *tcell.EventMouse:
		x, y := ev.Position()
		tk.touch(x, y, ev.Buttons()&tcell.Button1 != 0)
	}
}

func (tk *Toolkit) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		tk.stop()
	case tcell.KeyUp, tcell.KeyLeft:
		tk.turn(-1)
	case tcell.KeyDown, tcell.KeyRight:
		tk.turn(1)
	case tcell.KeyEnter:
		tk.click()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			tk.stop()
		case 'k':
			tk.turn(-1)
		case 'j':
			tk.turn(1)
		case ' ':
			tk.click()
		}
	}
}

func (tk *Toolkit) turn(delta int) {
	if tk.input != nil {
		tk.input.Turn(delta)
	}
}

func (tk *Toolkit) click() {
	if tk.input != nil {
		tk.input.Click()
	}
}

// touch tracks the mouse button; a tap is reported on release over the
// row that was pressed.
func (tk *Toolkit) touch(x, y int, down bool) {
	tk.mu.Lock()
	h, row, hit := tk.rowAtLocked(x, y)
	var fire *nav.Event
	switch {
	case down && !tk.pressed:
		tk.pressed = hit
		tk.pressList, tk.pressRow = h, row
	case down:
		if !hit || h != tk.pressList || row != tk.pressRow {
			tk.pressList = 0
		}
	case tk.pressed:
		tk.pressed = false
		if tk.pressList != 0 && hit && h == tk.pressList && row == tk.pressRow {
			if l := tk.findLocked(h); l != nil {
				ev := nav.ItemTapped(l.kind, row)
				fire = &ev
			}
		}
	}
	tk.mu.Unlock()

	if fire != nil && tk.taps != nil {
		tk.taps(*fire)
	}
}

func (tk *Toolkit) CreateList(kind nav.Kind, items []nav.Item) nav.ListHandle {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.next++
	l := &list{
		handle:   tk.next,
		kind:     kind,
		items:    append([]nav.Item(nil), items...),
		selected: make([]bool, len(items)),
	}
	tk.lists = append(tk.lists, l)
	tk.pressed, tk.pressList = false, 0
	tk.dirty = true
	return l.handle
}

func (tk *Toolkit) DestroyList(h nav.ListHandle) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	for i, l := range tk.lists {
		if l.handle == h {
			tk.lists = append(tk.lists[:i], tk.lists[i+1:]...)
			tk.pressed, tk.pressList = false, 0
			tk.dirty = true
			return
		}
	}
}

func (tk *Toolkit) SetItemStyle(h nav.ListHandle, index int, selected bool) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	l := tk.findLocked(h)
	if l == nil || index < 0 || index >= len(l.selected) || l.selected[index] == selected {
		return
	}
	l.selected[index] = selected
	if selected {
		ensureVisible(l, index, tk.viewHeightLocked())
	}
	tk.dirty = true
}

// SetStatus replaces the status line.
func (tk *Toolkit) SetStatus(s string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if s != tk.status {
		tk.status = s
		tk.dirty = true
	}
}

func (tk *Toolkit) findLocked(h nav.ListHandle) *list {
	for _, l := range tk.lists {
		if l.handle == h {
			return l
		}
	}
	return nil
}

func (tk *Toolkit) topLocked() *list {
	if len(tk.lists) == 0 {
		return nil
	}
	return tk.lists[len(tk.lists)-1]
}

type rect struct {
	y int
	x int
	h int
	w int
}

// boxLocked is the bordered list area: centered, below the title line and
// above the two status lines.
func (tk *Toolkit) boxLocked() rect {
	w, h := tk.screen.Size()
	bw := min(listWidth, w)
	bh := max(h-3, 3)
	if l := tk.topLocked(); l != nil {
		bh = min(bh, len(l.items)+2)
	}
	return rect{y: 1, x: max((w-bw)/2, 0), h: bh, w: bw}
}

func (tk *Toolkit) viewHeightLocked() int {
	_, h := tk.screen.Size()
	return max(h-5, 1)
}

func ensureVisible(l *list, index, viewH int) {
	if index < l.scroll {
		l.scroll = index
	} else if index >= l.scroll+viewH {
		l.scroll = index - viewH + 1
	}
	l.scroll = clamp(l.scroll, 0, max(len(l.items)-viewH, 0))
}

func (tk *Toolkit) rowAtLocked(x, y int) (nav.ListHandle, int, bool) {
	l := tk.topLocked()
	if l == nil {
		return 0, 0, false
	}
	r := tk.boxLocked()
	if x <= r.x || x >= r.x+r.w-1 || y <= r.y || y >= r.y+r.h-1 {
		return 0, 0, false
	}
	row := y - r.y - 1 + l.scroll
	if row >= len(l.items) {
		return 0, 0, false
	}
	return l.handle, row, true
}

// Refresh redraws the screen if anything changed.
func (tk *Toolkit) Refresh() error {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if !tk.dirty {
		return nil
	}
	tk.dirty = false
	tk.drawLocked()
	tk.screen.Show()
	return nil
}

func (tk *Toolkit) drawLocked() {
	tk.screen.Clear()
	w, h := tk.screen.Size()

	title := "Menu"
	l := tk.topLocked()
	if l != nil && l.kind == nav.KindSub && len(tk.lists) > 1 {
		title = "Menu > Sub-list"
	}
	writeText(tk.screen, max((w-displayWidth(title))/2, 0), 0, title, tcell.StyleDefault.Bold(true))

	if l != nil {
		r := tk.boxLocked()
		drawBox(tk.screen, r)
		drawList(tk.screen, r, l)
	}

	statusStyle := tcell.StyleDefault.Reverse(true)
	writeText(tk.screen, 0, h-2, padRight(truncate(tk.status, w), w), statusStyle)
	writeText(tk.screen, 0, h-1, padRight(truncate(hintLine, w), w), tcell.StyleDefault.Dim(true))
}

func drawBox(screen tcell.Screen, r rect) {
	if r.h < 2 || r.w < 2 {
		return
	}
	style := tcell.StyleDefault
	for x := r.x + 1; x < r.x+r.w-1; x++ {
		screen.SetContent(x, r.y, tcell.RuneHLine, nil, style)
		screen.SetContent(x, r.y+r.h-1, tcell.RuneHLine, nil, style)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		screen.SetContent(r.x, y, tcell.RuneVLine, nil, style)
		screen.SetContent(r.x+r.w-1, y, tcell.RuneVLine, nil, style)
	}
	screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, style)
	screen.SetContent(r.x+r.w-1, r.y, tcell.RuneURCorner, nil, style)
	screen.SetContent(r.x, r.y+r.h-1, tcell.RuneLLCorner, nil, style)
	screen.SetContent(r.x+r.w-1, r.y+r.h-1, tcell.RuneLRCorner, nil, style)
}

func drawList(screen tcell.Screen, r rect, l *list) {
	innerW := r.w - 2
	for i := 0; i < r.h-2; i++ {
		idx := l.scroll + i
		if idx >= len(l.items) {
			break
		}
		style := tcell.StyleDefault
		if l.items[idx].Terminal {
			style = style.Italic(true)
		}
		if l.selected[idx] {
			style = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite).Bold(true)
		}
		label := " " + l.items[idx].Label
		writeText(screen, r.x+1, r.y+1+i, padRight(truncate(label, innerW), innerW), style)
	}
}

func writeText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	offset := 0
	for _, ch := range text {
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			continue
		}
		screen.SetContent(x+offset, y, ch, nil, style)
		offset += width
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	var buf strings.Builder
	curWidth := 0
	for _, ch := range s {
		chWidth := runewidth.RuneWidth(ch)
		if chWidth == 0 {
			buf.WriteRune(ch)
			continue
		}
		if curWidth+chWidth > width {
			break
		}
		buf.WriteRune(ch)
		curWidth += chWidth
	}
	return buf.String()
}

func padRight(s string, width int) string {
	if displayWidth(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-displayWidth(s))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
