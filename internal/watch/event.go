// Package watch implements the change-event pipeline: per-path debouncing
// and coalescing, time-windowed batch emission, per-subscription rate
// limiting, and subscription fan-out keyed by connection + subscription id.
package watch

// EventType is the kind of filesystem change an Event reports.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
	EventRename EventType = "rename"
)

// priority orders events for back-pressure dropping: higher drops last.
func (t EventType) priority() int {
	switch t {
	case EventDelete:
		return 3
	case EventRename:
		return 2
	case EventCreate:
		return 1
	case EventModify:
		return 0
	default:
		return -1
	}
}

// Event is a single filesystem change notification.
type Event struct {
	Type        EventType
	Path        string
	OldPath     string // rename only
	Timestamp   int64  // milliseconds since epoch
	Size        int64
	MTime       int64
	IsDirectory bool
}

// coalesce merges a new event into the pending event for the same path,
// applying the rules: a later delete cancels a prior bare create and
// replaces it outright; create followed immediately by delete in the same
// window is suppressed entirely (reported via the ok=false return);
// consecutive modifications collapse into a single modify carrying the
// latest size/mtime; a create followed by a modify demotes the pending
// event to modify, since the path has since been observed with content
// beyond its initial creation and a later delete in the same window must
// still surface (it is no longer a pure within-window create/delete
// no-op); rename always replaces, preserving its own oldPath.
//
// prev is the pending event, next is the incoming one. It returns the
// merged event and whether anything should still be pending afterward.
func coalesce(prev, next Event) (Event, bool) {
	if prev.Type == EventCreate && next.Type == EventDelete {
		return Event{}, false
	}
	if next.Type == EventDelete {
		return next, true
	}
	if next.Type == EventRename {
		return next, true
	}
	if prev.Type == EventCreate && next.Type == EventModify {
		merged := prev
		merged.Type = EventModify
		merged.Timestamp = next.Timestamp
		merged.Size = next.Size
		merged.MTime = next.MTime
		return merged, true
	}
	return next, true
}
