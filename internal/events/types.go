// Package events provides the in-process event bus used for cross-component
// notification. Every mutation of the canonical media list is announced here so
// derived state (relationship graph, filtered views) can be recomputed.
package events

import (
	"time"
)

// EventType identifies a class of event on the bus.
type EventType string

const (
	// Media lifecycle events
	EventMediaUploaded EventType = "media.uploaded"
	EventMediaUpdated  EventType = "media.updated"
	EventMediaDeleted  EventType = "media.deleted"

	// Storage watcher events
	EventMediaFileAppeared EventType = "media.file.appeared"
	EventMediaFileMissing  EventType = "media.file.missing"

	// Guest lifecycle events
	EventGuestCreated EventType = "guest.created"
	EventGuestDeleted EventType = "guest.deleted"

	// Settings events
	EventSettingsUpdated EventType = "settings.updated"
)

// Event is a single bus message.
type Event struct {
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// MediaEventData carries media lifecycle event payloads.
type MediaEventData struct {
	MediaID   uint   `json:"media_id"`
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
}

// FileEventData carries storage watcher payloads.
type FileEventData struct {
	Path string `json:"path"`
}

// GuestEventData carries guest lifecycle payloads.
type GuestEventData struct {
	GuestID uint   `json:"guest_id"`
	Email   string `json:"email"`
}

// Handler receives events for a subscription.
type Handler func(Event)

// EventBus delivers published events to subscribers.
type EventBus interface {
	// Publish delivers the event to all handlers subscribed to its type and
	// to wildcard subscribers. Delivery is synchronous.
	Publish(event Event)

	// Subscribe registers a handler for one event type. The returned function
	// removes the subscription.
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler Handler) (unsubscribe func())
}

// New creates an Event with the timestamp set.
func New(eventType EventType, source string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
