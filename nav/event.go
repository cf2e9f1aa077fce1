package nav

import "strconv"

// EventKind enumerates what can drive the machine.
type EventKind uint8

const (
	EventItemTapped EventKind = iota + 1
	EventConfirmPressed
	EventEncoderStep
)

// Event is the single input type consumed by Machine.Dispatch.
type Event struct {
	Kind  EventKind
	List  Kind // ItemTapped: which list was hit
	Index int  // ItemTapped: which row
	Delta int  // EncoderStep: signed detents
}

func ItemTapped(list Kind, index int) Event {
	return Event{Kind: EventItemTapped, List: list, Index: index}
}

func ConfirmPressed() Event { return Event{Kind: EventConfirmPressed} }

func EncoderStep(delta int) Event { return Event{Kind: EventEncoderStep, Delta: delta} }

func (e Event) String() string {
	switch e.Kind {
	case EventItemTapped:
		return "tap " + e.List.String() + " " + strconv.Itoa(e.Index)
	case EventConfirmPressed:
		return "confirm"
	case EventEncoderStep:
		if e.Delta >= 0 {
			return "turn +" + strconv.Itoa(e.Delta)
		}
		return "turn " + strconv.Itoa(e.Delta)
	default:
		return "event(" + strconv.Itoa(int(e.Kind)) + ")"
	}
}
