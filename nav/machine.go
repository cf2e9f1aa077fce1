package nav

import (
	"fmt"
	"strconv"
)

// Toolkit is the rendering collaborator that owns list widgets. The most
// recently created list is the one on screen.
type Toolkit interface {
	CreateList(kind Kind, items []Item) ListHandle
	DestroyList(h ListHandle)
}

// Config shapes the menu.
type Config struct {
	MainItems int
	SubItems  int // including the terminal item
	Terminal  TerminalPosition
	// TapSelects moves the main highlight to a tapped row before entering
	// its sub-list, so the highlight lands there on return.
	TapSelects bool
}

// DefaultConfig is five main items, three children plus "Return" last.
func DefaultConfig() Config {
	return Config{MainItems: 5, SubItems: 4, Terminal: TerminalLast}
}

// State is Showing(Main) or Showing(Sub, Parent).
type State struct {
	Kind   Kind
	Parent int
}

func (s State) String() string {
	if s.Kind == KindSub {
		return "sub(" + strconv.Itoa(s.Parent) + ")"
	}
	return "main"
}

// Result says what a dispatched event did.
type Result uint8

const (
	Ignored Result = iota
	Moved
	Entered
	Exited
)

func (r Result) String() string {
	switch r {
	case Moved:
		return "moved"
	case Entered:
		return "entered"
	case Exited:
		return "exited"
	default:
		return "ignored"
	}
}

// Machine is the two-state navigation machine. It must only be driven from
// the frame loop.
type Machine struct {
	tk  Toolkit
	cfg Config

	main    *List
	mainSel Selection
	sub     *List
	subSel  Selection
	state   State

	ignored int
	faults  int
}

// NewMachine creates the main list and starts in Showing(Main) at index 0.
func NewMachine(tk Toolkit, cfg Config) (*Machine, error) {
	if cfg.SubItems < 1 {
		return nil, fmt.Errorf("sub-list: %w", ErrEmptyList)
	}
	main, err := NewMainList(cfg.MainItems)
	if err != nil {
		return nil, fmt.Errorf("main list: %w", err)
	}
	m := &Machine{tk: tk, cfg: cfg, main: main, state: State{Kind: KindMain}}
	main.Handle = tk.CreateList(KindMain, main.Items)
	if err := m.mainSel.Bind(main.Size()); err != nil {
		return nil, err
	}
	return m, nil
}

// Dispatch routes one event. Invalid transitions are swallowed and counted.
func (m *Machine) Dispatch(ev Event) Result {
	switch ev.Kind {
	case EventEncoderStep:
		if ev.Delta == 0 {
			return Ignored
		}
		_, sel := m.Active()
		sel.Apply(ev.Delta)
		return Moved
	case EventConfirmPressed:
		// Confirm is a tap on whatever is highlighted.
		list, sel := m.Active()
		return m.tap(list.Kind, sel.Index())
	case EventItemTapped:
		return m.tap(ev.List, ev.Index)
	default:
		m.ignored++
		return Ignored
	}
}

// OnItemTapped is the toolkit callback entry point.
func (m *Machine) OnItemTapped(kind Kind, index int) Result {
	return m.Dispatch(ItemTapped(kind, index))
}

func (m *Machine) tap(kind Kind, index int) Result {
	if kind != m.state.Kind {
		// Stale tap on a list that is no longer (or not yet) showing.
		m.ignored++
		return Ignored
	}

	list, sel := m.Active()
	if index < 0 || index >= list.Size() {
		m.outOfRange(sel, index)
		return Ignored
	}

	switch kind {
	case KindMain:
		if m.cfg.TapSelects {
			if err := sel.Set(index); err != nil {
				m.outOfRange(sel, index)
			}
		}
		if err := m.enter(index); err != nil {
			m.ignored++
			return Ignored
		}
		return Entered
	case KindSub:
		if !list.Items[index].Terminal {
			return Ignored
		}
		if err := m.exit(); err != nil {
			m.ignored++
			return Ignored
		}
		return Exited
	}
	m.ignored++
	return Ignored
}

func (m *Machine) enter(parent int) error {
	if m.state.Kind != KindMain {
		return ErrInvalidTransition
	}
	sub, err := NewSubList(parent, m.cfg.SubItems, m.cfg.Terminal)
	if err != nil {
		return err
	}
	if err := m.subSel.Bind(sub.Size()); err != nil {
		return err
	}
	sub.Handle = m.tk.CreateList(KindSub, sub.Items)
	m.sub = sub
	m.state = State{Kind: KindSub, Parent: parent}
	return nil
}

func (m *Machine) exit() error {
	if m.state.Kind != KindSub || m.sub == nil {
		return ErrInvalidTransition
	}
	m.tk.DestroyList(m.sub.Handle)
	m.sub = nil
	m.subSel = Selection{}
	m.state = State{Kind: KindMain}
	return nil
}

// outOfRange applies the build's policy: strict builds panic, others clamp
// the selection back into range and count a fault.
func (m *Machine) outOfRange(sel *Selection, index int) {
	if strictRanges {
		panic(fmt.Errorf("index %d of %d: %w", index, sel.Size(), ErrOutOfRange))
	}
	m.faults++
	sel.clamp(sel.Index())
}

// Active returns the list on screen and its selection.
func (m *Machine) Active() (*List, *Selection) {
	if m.state.Kind == KindSub && m.sub != nil {
		return m.sub, &m.subSel
	}
	return m.main, &m.mainSel
}

func (m *Machine) State() State { return m.state }

// MainIndex is the main list highlight, kept while a sub-list is open.
func (m *Machine) MainIndex() int { return m.mainSel.Index() }

// Ignored counts swallowed invalid transitions and stale taps.
func (m *Machine) Ignored() int { return m.ignored }

// Faults counts out-of-range indexes clamped in non-strict builds.
func (m *Machine) Faults() int { return m.faults }
