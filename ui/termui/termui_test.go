//go:build !tinygo

package termui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"knobmenu/nav"
)

func newTestScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(func() { screen.Fini() })
	return screen
}

type fakeInput struct {
	turns  []int
	clicks int
}

func (f *fakeInput) Turn(delta int) { f.turns = append(f.turns, delta) }
func (f *fakeInput) Click()         { f.clicks++ }

type harness struct {
	screen tcell.Screen
	input  *fakeInput
	tk     *Toolkit
	taps   []nav.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{screen: newTestScreen(t, 80, 24), input: &fakeInput{}}
	h.tk = NewWithScreen(h.screen, h.input, func(ev nav.Event) { h.taps = append(h.taps, ev) })
	return h
}

func mainItems(n int) []nav.Item {
	l, _ := nav.NewMainList(n)
	return l.Items
}

// The 32-column box is centered on an 80-column screen: the border is at
// x=24 and row i of the list sits at y=2+i.
const innerX = 26

func rowText(screen tcell.Screen, y, n int) string {
	out := make([]rune, 0, n)
	for x := innerX; x < innerX+n; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		out = append(out, r)
	}
	return string(out)
}

func TestRefreshDrawsLabels(t *testing.T) {
	h := newHarness(t)
	h.tk.CreateList(nav.KindMain, mainItems(5))
	if err := h.tk.Refresh(); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := rowText(h.screen, 2, 6); got != "Item 1" {
		t.Fatalf("row 0 = %q, want %q", got, "Item 1")
	}
	if got := rowText(h.screen, 6, 6); got != "Item 5" {
		t.Fatalf("row 4 = %q, want %q", got, "Item 5")
	}
}

func TestSelectedRowStyle(t *testing.T) {
	h := newHarness(t)
	l := h.tk.CreateList(nav.KindMain, mainItems(5))
	h.tk.SetItemStyle(l, 1, true)
	h.tk.Refresh()

	_, _, style, _ := h.screen.GetContent(innerX, 3)
	_, bg, _ := style.Decompose()
	if bg != tcell.ColorRed {
		t.Fatalf("selected background = %v, want red", bg)
	}
	_, _, style, _ = h.screen.GetContent(innerX, 2)
	if _, bg, _ := style.Decompose(); bg == tcell.ColorRed {
		t.Fatal("unselected row is red")
	}
}

func TestKeysDriveInput(t *testing.T) {
	h := newHarness(t)
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone),
	} {
		h.tk.HandleEvent(ev)
	}
	if len(h.input.turns) != 2 || h.input.turns[0] != 1 || h.input.turns[1] != -1 {
		t.Fatalf("turns = %v, want [1 -1]", h.input.turns)
	}
	if h.input.clicks != 2 {
		t.Fatalf("clicks = %d, want 2", h.input.clicks)
	}
}

func TestQuitKey(t *testing.T) {
	h := newHarness(t)
	h.tk.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	select {
	case <-h.tk.Done():
	default:
		t.Fatal("Done() not closed after q")
	}
	// A second quit key must not panic on a closed channel.
	h.tk.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, 0))
}

func TestMouseClickTaps(t *testing.T) {
	h := newHarness(t)
	h.tk.CreateList(nav.KindMain, mainItems(5))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 4, tcell.Button1, tcell.ModNone))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 4, tcell.ButtonNone, tcell.ModNone))
	if len(h.taps) != 1 || h.taps[0] != nav.ItemTapped(nav.KindMain, 2) {
		t.Fatalf("taps = %v, want [tap main 2]", h.taps)
	}
}

func TestMouseDragCancelsTap(t *testing.T) {
	h := newHarness(t)
	h.tk.CreateList(nav.KindMain, mainItems(5))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 2, tcell.Button1, tcell.ModNone))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 3, tcell.Button1, tcell.ModNone))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 3, tcell.ButtonNone, tcell.ModNone))
	if len(h.taps) != 0 {
		t.Fatalf("taps = %v, want none", h.taps)
	}
}

func TestSubListTap(t *testing.T) {
	h := newHarness(t)
	h.tk.CreateList(nav.KindMain, mainItems(5))
	sub, _ := nav.NewSubList(1, 4, nav.TerminalLast)
	h.tk.CreateList(nav.KindSub, sub.Items)
	h.tk.Refresh()
	if got := rowText(h.screen, 5, 6); got != "Return" {
		t.Fatalf("row 3 = %q, want Return", got)
	}
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 5, tcell.Button1, tcell.ModNone))
	h.tk.HandleEvent(tcell.NewEventMouse(innerX, 5, tcell.ButtonNone, tcell.ModNone))
	if len(h.taps) != 1 || h.taps[0] != nav.ItemTapped(nav.KindSub, 3) {
		t.Fatalf("taps = %v, want [tap sub 3]", h.taps)
	}
}

func TestClickOutsideBox(t *testing.T) {
	h := newHarness(t)
	h.tk.CreateList(nav.KindMain, mainItems(5))
	h.tk.HandleEvent(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	h.tk.HandleEvent(tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone))
	if len(h.taps) != 0 {
		t.Fatalf("taps = %v, want none", h.taps)
	}
}

func TestRefreshSkipsWhenClean(t *testing.T) {
	h := newHarness(t)
	l := h.tk.CreateList(nav.KindMain, mainItems(3))
	h.tk.Refresh()
	h.tk.SetItemStyle(l, 0, true)
	h.tk.SetItemStyle(l, 0, true)
	if !h.tk.dirty {
		t.Fatal("style change did not mark the screen dirty")
	}
	h.tk.Refresh()
	h.tk.SetStatus("")
	if h.tk.dirty {
		t.Fatal("unchanged status marked the screen dirty")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Subitem 1-1", 7); got != "Subitem" {
		t.Fatalf("truncate() = %q, want %q", got, "Subitem")
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight() = %q, want %q", got, "ab  ")
	}
}
