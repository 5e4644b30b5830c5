package workspace

import "fmt"

type EventKind int

const (
	EventComponentAdded EventKind = iota
	EventComponentRemoved
	EventCouplingAdded
	EventCouplingRemoved
	EventIterationCompleted
	EventActionFailed
)

func (k EventKind) String() string {
	switch k {
	case EventComponentAdded:
		return "component added"
	case EventComponentRemoved:
		return "component removed"
	case EventCouplingAdded:
		return "coupling added"
	case EventCouplingRemoved:
		return "coupling removed"
	case EventIterationCompleted:
		return "iteration completed"
	case EventActionFailed:
		return "action failed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a workspace lifecycle notification. Events are delivered on
// the update goroutine at iteration boundaries (or synchronously for
// structural changes made while idle), so a listener observing workspace
// state during an event never sees a half-updated iteration.
type Event struct {
	Kind        EventKind
	ComponentID string
	CouplingID  string
	Action      string
	Iteration   int64
	Err         error
}

// Listener consumes workspace events. Listener calls must not block the
// update goroutine for long and must not mutate workspace structure
// directly; structural calls made from a listener are queued like any
// other mid-run mutation.
type Listener interface {
	HandleWorkspaceEvent(Event)
}

// ListenerFunc adapts a function into a Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) HandleWorkspaceEvent(evt Event) { f(evt) }
