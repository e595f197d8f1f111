package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/secondary"
)

const sessionColumns = "id, committee_id, number, status, document, version, created_at, updated_at"

// SessionRepository implements secondary.SessionRepository with SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session at version 1.
func (r *SessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, committee_id, number, status, document, version) VALUES (?, ?, ?, ?, ?, 1)",
		session.ID, session.CommitteeID, session.Number, session.Status, string(session.Document),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return liveConflict("session", session.ID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.Version = 1
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	record, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, procerr.NotFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return record, nil
}

// Save replaces the stored document under an optimistic version check.
func (r *SessionRepository) Save(ctx context.Context, session *secondary.SessionRecord, expectedVersion int) error {
	version, err := saveVersioned(ctx, r.db, "sessions", "session", session.ID, session.Status, session.Document, expectedVersion)
	if err != nil {
		return err
	}
	session.Version = version
	return nil
}

// List retrieves sessions matching the given filters, newest first.
func (r *SessionRepository) List(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	query := "SELECT " + sessionColumns + " FROM sessions WHERE 1=1"
	args := []any{}

	if filters.CommitteeID != "" {
		query += " AND committee_id = ?"
		args = append(args, filters.CommitteeID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY committee_id, number DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*secondary.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, record)
	}

	return sessions, rows.Err()
}

// GetLive returns the committee's active or paused session, or nil.
func (r *SessionRepository) GetLive(ctx context.Context, committeeID string) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE committee_id = ? AND status IN ('active', 'paused')",
		committeeID,
	)
	record, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get live session: %w", err)
	}
	return record, nil
}

// GetNextID returns the next available session ID.
func (r *SessionRepository) GetNextID(ctx context.Context) (string, error) {
	return nextPrefixedID(ctx, r.db, "sessions", "SES")
}

// GetNextNumber returns the next sequential session number for a committee.
func (r *SessionRepository) GetNextNumber(ctx context.Context, committeeID string) (int, error) {
	var maxNumber int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) FROM sessions WHERE committee_id = ?",
		committeeID,
	).Scan(&maxNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to get next session number: %w", err)
	}
	return maxNumber + 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*secondary.SessionRecord, error) {
	var (
		doc       string
		createdAt time.Time
		updatedAt time.Time
	)
	record := &secondary.SessionRecord{}
	if err := row.Scan(&record.ID, &record.CommitteeID, &record.Number, &record.Status, &doc, &record.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Document = []byte(doc)
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

// Ensure SessionRepository implements the interface
var _ secondary.SessionRepository = (*SessionRepository)(nil)
