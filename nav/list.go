// Package nav is the menu core: lists, the selection model and the two-level
// navigation state machine. It never draws; it talks to a Toolkit.
package nav

import (
	"errors"
	"strconv"
)

var (
	ErrEmptyList         = errors.New("nav: list must have at least one item")
	ErrOutOfRange        = errors.New("nav: index out of range")
	ErrInvalidTransition = errors.New("nav: invalid transition")
)

// Kind tells the main list from a sub-list.
type Kind uint8

const (
	KindMain Kind = iota
	KindSub
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindSub:
		return "sub"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ListHandle identifies a list inside a Toolkit. Zero means no list.
type ListHandle uint32

// Item is one row. Index is stable for the lifetime of its List.
type Item struct {
	Index    int
	Label    string
	Terminal bool
}

// TerminalPosition is where the "Return" item sits in a sub-list.
type TerminalPosition uint8

const (
	TerminalLast TerminalPosition = iota
	TerminalFirst
)

func (p TerminalPosition) String() string {
	if p == TerminalFirst {
		return "first"
	}
	return "last"
}

// ParseTerminalPosition accepts "first" or "last".
func ParseTerminalPosition(s string) (TerminalPosition, error) {
	switch s {
	case "last", "":
		return TerminalLast, nil
	case "first":
		return TerminalFirst, nil
	}
	return TerminalLast, errors.New("nav: terminal position must be first or last, got " + strconv.Quote(s))
}

// ReturnLabel is the terminal item's label.
const ReturnLabel = "Return"

// List is an ordered, fixed-size run of items.
type List struct {
	Kind   Kind
	Items  []Item
	Parent int // main index that spawned a sub-list; -1 for the main list
	Handle ListHandle
}

func (l *List) Size() int { return len(l.Items) }

// TerminalIndex returns the position of the terminal item, or -1.
func (l *List) TerminalIndex() int {
	for i := range l.Items {
		if l.Items[i].Terminal {
			return i
		}
	}
	return -1
}

// NewMainList builds "Item 1".."Item N".
func NewMainList(size int) (*List, error) {
	if size < 1 {
		return nil, ErrEmptyList
	}
	items := make([]Item, size)
	for i := range items {
		items[i] = Item{Index: i, Label: "Item " + strconv.Itoa(i+1)}
	}
	return &List{Kind: KindMain, Items: items, Parent: -1}, nil
}

// NewSubList builds the children of main item parent: size-1 entries
// labelled "Subitem P-N" plus one terminal "Return" item.
func NewSubList(parent, size int, pos TerminalPosition) (*List, error) {
	if size < 1 {
		return nil, ErrEmptyList
	}
	items := make([]Item, 0, size)
	if pos == TerminalFirst {
		items = append(items, Item{Label: ReturnLabel, Terminal: true})
	}
	prefix := "Subitem " + strconv.Itoa(parent+1) + "-"
	for n := 1; n < size; n++ {
		items = append(items, Item{Label: prefix + strconv.Itoa(n)})
	}
	if pos == TerminalLast {
		items = append(items, Item{Label: ReturnLabel, Terminal: true})
	}
	for i := range items {
		items[i].Index = i
	}
	return &List{Kind: KindSub, Items: items, Parent: parent}, nil
}
