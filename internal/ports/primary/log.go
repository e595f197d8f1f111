package primary

import "context"

// EventLogService defines the primary port for reading the event and audit logs.
type EventLogService interface {
	// ListEvents retrieves emitted domain events, oldest first.
	ListEvents(ctx context.Context, filters EventFilters) ([]*Event, error)

	// ListAudit retrieves audit entries, newest first.
	ListAudit(ctx context.Context, filters AuditFilters) ([]*AuditEntry, error)
}

// EventFilters contains filter options for listing events.
type EventFilters struct {
	CommitteeID string
	AggregateID string
	Name        string
	Limit       int
}

// Event represents a persisted domain event at the port boundary.
type Event struct {
	ID            string
	Name          string
	AggregateType string
	AggregateID   string
	CommitteeID   string
	Visibility    string
	ActorID       string
	Payload       string // JSON
	CreatedAt     string
}

// AuditFilters contains filter options for listing audit entries.
type AuditFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}

// AuditEntry represents an audit entry at the port boundary.
type AuditEntry struct {
	ID         string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string
	OldValue   string
	NewValue   string
	Reason     string
	CreatedAt  string
}
