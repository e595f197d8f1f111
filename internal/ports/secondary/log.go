package secondary

import "context"

// AuditWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type AuditWriter interface {
	// LogChange records a change to one field of an entity.
	LogChange(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue, reason string) error
}

// EventPublisher delivers emitted domain events to in-process subscribers.
type EventPublisher interface {
	// Publish hands an event to the broadcaster. Delivery is asynchronous.
	Publish(ctx context.Context, event PublishedEvent) error
}

// PublishedEvent is the broadcast form of a persisted event.
type PublishedEvent struct {
	ID            string
	Name          string
	AggregateType string
	AggregateID   string
	CommitteeID   string
	Visibility    string
	Payload       map[string]any
	CreatedAt     string
}
