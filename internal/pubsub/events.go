// Package pubsub provides a generic publish/subscribe event system used to fan
// out lifecycle status changes and log entries to observers.
package pubsub

import "time"

// EventType represents the type of event being published.
type EventType string

// Lifecycle status events use these to mean a record appeared, changed
// state, or was removed.
const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}
