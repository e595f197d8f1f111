// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// SessionRepository defines the secondary port for session persistence.
// A session is stored as one JSON document guarded by a version number.
type SessionRepository interface {
	// Create persists a new session at version 1.
	Create(ctx context.Context, session *SessionRecord) error

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id string) (*SessionRecord, error)

	// Save replaces the stored document if the stored version still equals
	// expectedVersion, and sets session.Version to the new version.
	// A stale version yields a CONCURRENT_MODIFICATION error.
	Save(ctx context.Context, session *SessionRecord, expectedVersion int) error

	// List retrieves sessions matching the given filters.
	List(ctx context.Context, filters SessionFilters) ([]*SessionRecord, error)

	// GetLive returns the committee's active or paused session, or nil.
	GetLive(ctx context.Context, committeeID string) (*SessionRecord, error)

	// GetNextID returns the next available session ID.
	GetNextID(ctx context.Context) (string, error)

	// GetNextNumber returns the next sequential session number for a committee.
	GetNextNumber(ctx context.Context, committeeID string) (int, error)
}

// SessionRecord represents a session as stored in persistence.
type SessionRecord struct {
	ID          string
	CommitteeID string
	Number      int
	Status      string
	Document    []byte // JSON-encoded session aggregate
	Version     int
	CreatedAt   string
	UpdatedAt   string
}

// SessionFilters contains filter options for querying sessions.
type SessionFilters struct {
	CommitteeID string
	Status      string
	Limit       int
}

// VotingRepository defines the secondary port for voting persistence.
type VotingRepository interface {
	// Create persists a new voting at version 1.
	Create(ctx context.Context, voting *VotingRecord) error

	// GetByID retrieves a voting by its ID.
	GetByID(ctx context.Context, id string) (*VotingRecord, error)

	// Save replaces the stored document under an optimistic version check.
	Save(ctx context.Context, voting *VotingRecord, expectedVersion int) error

	// List retrieves votings matching the given filters.
	List(ctx context.Context, filters VotingFilters) ([]*VotingRecord, error)

	// GetNextID returns the next available voting ID.
	GetNextID(ctx context.Context) (string, error)
}

// VotingRecord represents a voting as stored in persistence.
type VotingRecord struct {
	ID          string
	SessionID   string
	CommitteeID string
	Status      string
	Document    []byte // JSON-encoded voting aggregate
	Version     int
	CreatedAt   string
	UpdatedAt   string
}

// VotingFilters contains filter options for querying votings.
type VotingFilters struct {
	SessionID string
	Status    string
	Limit     int
}

// CommitteeRepository defines the secondary port for the committee roster.
type CommitteeRepository interface {
	// Create persists a new committee.
	Create(ctx context.Context, committee *CommitteeRecord) error

	// GetByID retrieves a committee by its ID.
	GetByID(ctx context.Context, id string) (*CommitteeRecord, error)

	// List retrieves every committee.
	List(ctx context.Context) ([]*CommitteeRecord, error)

	// AddCountry adds a country to a committee roster.
	AddCountry(ctx context.Context, country *CommitteeCountryRecord) error

	// ListCountries retrieves a committee's roster in insertion order.
	ListCountries(ctx context.Context, committeeID string) ([]*CommitteeCountryRecord, error)

	// GetNextID returns the next available committee ID.
	GetNextID(ctx context.Context) (string, error)
}

// CommitteeRecord represents a committee as stored in persistence.
type CommitteeRecord struct {
	ID               string
	Name             string
	MinCoalitionSize int
	CreatedAt        string
}

// CommitteeCountryRecord is one roster entry.
type CommitteeCountryRecord struct {
	CommitteeID  string
	Name         string
	Email        string
	HasVetoRight bool
}

// EventRepository defines the secondary port for the domain event log.
type EventRepository interface {
	// Append persists an emitted event.
	Append(ctx context.Context, event *EventRecord) error

	// List retrieves events matching the given filters, oldest first.
	List(ctx context.Context, filters EventFilters) ([]*EventRecord, error)
}

// EventRecord represents a domain event as stored in persistence.
type EventRecord struct {
	ID            string
	Name          string
	AggregateType string
	AggregateID   string
	CommitteeID   string
	Visibility    string
	ActorID       string
	Payload       []byte // JSON
	CreatedAt     string
}

// EventFilters contains filter options for querying events.
type EventFilters struct {
	CommitteeID string
	AggregateID string
	Name        string
	Limit       int
}

// AuditLogRepository defines the secondary port for audit log persistence.
type AuditLogRepository interface {
	// Create persists an audit entry.
	Create(ctx context.Context, entry *AuditLogRecord) error

	// List retrieves audit entries matching the given filters, newest first.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)
}

// AuditLogRecord represents an audit entry as stored in persistence.
type AuditLogRecord struct {
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

// AuditLogFilters contains filter options for querying the audit log.
type AuditLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}
