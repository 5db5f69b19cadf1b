package overlay

import "image"

// Phase is the drag state of a selection in progress.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Finished
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// EventKind identifies a discrete pointer or cancel input.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	CancelInput
)

// Event is one input fed into the tracker. At is in absolute virtual-screen
// coordinates.
type Event struct {
	Kind EventKind
	At   image.Point
}

// Tracker is the pure selection state machine. The windowing layer translates
// raw platform messages into Events and never touches the transition logic,
// so the machine is testable without a display.
//
//	Idle --down--> Dragging --up--> Finished (or Cancelled if zero-area)
//	Idle/Dragging --cancel--> Cancelled
type Tracker struct {
	Phase   Phase
	Origin  image.Point
	Current image.Point
}

// Apply advances the machine by one event and returns the resulting phase.
// Events arriving after a terminal phase are ignored.
func (t *Tracker) Apply(ev Event) Phase {
	switch t.Phase {
	case Idle:
		switch ev.Kind {
		case PointerDown:
			t.Origin = ev.At
			t.Current = ev.At
			t.Phase = Dragging
		case CancelInput:
			t.Phase = Cancelled
		}
	case Dragging:
		switch ev.Kind {
		case PointerMove:
			t.Current = ev.At
		case PointerUp:
			t.Current = ev.At
			if t.Origin.X == t.Current.X || t.Origin.Y == t.Current.Y {
				// A click without a drag is not a selection.
				t.Phase = Cancelled
			} else {
				t.Phase = Finished
			}
		case CancelInput:
			t.Phase = Cancelled
		}
	}
	return t.Phase
}

// Done reports whether the machine reached a terminal phase.
func (t *Tracker) Done() bool {
	return t.Phase == Finished || t.Phase == Cancelled
}

// Reset re-arms the tracker for a fresh selection.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
