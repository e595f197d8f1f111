package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/presidium/internal/ports/secondary"
)

// EventRepository implements secondary.EventRepository with SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append persists an emitted event. An empty CreatedAt takes the database clock.
func (r *EventRepository) Append(ctx context.Context, event *secondary.EventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, name, aggregate_type, aggregate_id, committee_id, visibility, actor_id, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		event.ID,
		event.Name,
		event.AggregateType,
		event.AggregateID,
		event.CommitteeID,
		event.Visibility,
		nullString(event.ActorID),
		string(event.Payload),
		nullString(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// List retrieves events matching the given filters in emission order.
func (r *EventRepository) List(ctx context.Context, filters secondary.EventFilters) ([]*secondary.EventRecord, error) {
	query := "SELECT id, name, aggregate_type, aggregate_id, committee_id, visibility, actor_id, payload, created_at FROM events WHERE 1=1"
	args := []any{}

	if filters.CommitteeID != "" {
		query += " AND committee_id = ?"
		args = append(args, filters.CommitteeID)
	}

	if filters.AggregateID != "" {
		query += " AND aggregate_id = ?"
		args = append(args, filters.AggregateID)
	}

	if filters.Name != "" {
		query += " AND name = ?"
		args = append(args, filters.Name)
	}

	query += " ORDER BY rowid"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		var (
			actorID   sql.NullString
			payload   string
			createdAt time.Time
		)
		record := &secondary.EventRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.AggregateType,
			&record.AggregateID,
			&record.CommitteeID,
			&record.Visibility,
			&actorID,
			&payload,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		record.ActorID = actorID.String
		record.Payload = []byte(payload)
		record.CreatedAt = createdAt.Format(time.RFC3339)
		events = append(events, record)
	}

	return events, rows.Err()
}

// Ensure EventRepository implements the interface
var _ secondary.EventRepository = (*EventRepository)(nil)
