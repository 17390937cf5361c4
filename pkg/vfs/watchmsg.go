package vfs

import (
	"encoding/json"

	"github.com/durablefs/vfs/internal/watch"
)

// SubscribeMessage is the wire shape of a client's subscribe request.
// Filter is an optional expression a transport bridge compiles into a
// watch.SubscribeRequest.Filter predicate; this package does not
// interpret it.
type SubscribeMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
	Filter    string `json:"filter,omitempty"`
}

// UnsubscribeMessage is the wire shape of a client's unsubscribe request.
type UnsubscribeMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// EventMessage is the wire shape of a single delivered event.
type EventMessage struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	OldPath     string `json:"oldPath,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	Size        int64  `json:"size,omitempty"`
	MTime       int64  `json:"mtime,omitempty"`
	IsDirectory bool   `json:"isDirectory,omitempty"`
}

// BatchMessage is the wire shape of a coalesced event batch delivered to a
// subscriber.
type BatchMessage struct {
	Type   string         `json:"type"`
	Events []EventMessage `json:"events"`
}

// eventMessage converts an internal watch.Event to its wire form.
func eventMessage(ev watch.Event) EventMessage {
	return EventMessage{
		Type:        string(ev.Type),
		Path:        ev.Path,
		OldPath:     ev.OldPath,
		Timestamp:   ev.Timestamp,
		Size:        ev.Size,
		MTime:       ev.MTime,
		IsDirectory: ev.IsDirectory,
	}
}

// EncodeBatch marshals events as a "batch" wire message.
func EncodeBatch(events []watch.Event) ([]byte, error) {
	msgs := make([]EventMessage, len(events))
	for i, ev := range events {
		msgs[i] = eventMessage(ev)
	}
	return json.Marshal(BatchMessage{Type: "batch", Events: msgs})
}
