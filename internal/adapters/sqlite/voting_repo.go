package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/secondary"
)

const votingColumns = "id, session_id, committee_id, status, document, version, created_at, updated_at"

// VotingRepository implements secondary.VotingRepository with SQLite.
type VotingRepository struct {
	db *sql.DB
}

// NewVotingRepository creates a new SQLite voting repository.
func NewVotingRepository(db *sql.DB) *VotingRepository {
	return &VotingRepository{db: db}
}

// Create persists a new voting at version 1.
func (r *VotingRepository) Create(ctx context.Context, voting *secondary.VotingRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO votings (id, session_id, committee_id, status, document, version) VALUES (?, ?, ?, ?, ?, 1)",
		voting.ID, voting.SessionID, voting.CommitteeID, voting.Status, string(voting.Document),
	)
	if err != nil {
		return fmt.Errorf("failed to create voting: %w", err)
	}

	voting.Version = 1
	return nil
}

// GetByID retrieves a voting by its ID.
func (r *VotingRepository) GetByID(ctx context.Context, id string) (*secondary.VotingRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+votingColumns+" FROM votings WHERE id = ?", id)
	record, err := scanVoting(row)
	if err == sql.ErrNoRows {
		return nil, procerr.NotFound("voting", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voting: %w", err)
	}
	return record, nil
}

// Save replaces the stored document under an optimistic version check.
func (r *VotingRepository) Save(ctx context.Context, voting *secondary.VotingRecord, expectedVersion int) error {
	version, err := saveVersioned(ctx, r.db, "votings", "voting", voting.ID, voting.Status, voting.Document, expectedVersion)
	if err != nil {
		return err
	}
	voting.Version = version
	return nil
}

// List retrieves votings matching the given filters in creation order.
func (r *VotingRepository) List(ctx context.Context, filters secondary.VotingFilters) ([]*secondary.VotingRecord, error) {
	query := "SELECT " + votingColumns + " FROM votings WHERE 1=1"
	args := []any{}

	if filters.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filters.SessionID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at, id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votings: %w", err)
	}
	defer rows.Close()

	var votings []*secondary.VotingRecord
	for rows.Next() {
		record, err := scanVoting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voting: %w", err)
		}
		votings = append(votings, record)
	}

	return votings, rows.Err()
}

// GetNextID returns the next available voting ID.
func (r *VotingRepository) GetNextID(ctx context.Context) (string, error) {
	return nextPrefixedID(ctx, r.db, "votings", "VOT")
}

func scanVoting(row rowScanner) (*secondary.VotingRecord, error) {
	var (
		doc       string
		createdAt time.Time
		updatedAt time.Time
	)
	record := &secondary.VotingRecord{}
	if err := row.Scan(&record.ID, &record.SessionID, &record.CommitteeID, &record.Status, &doc, &record.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Document = []byte(doc)
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

// Ensure VotingRepository implements the interface
var _ secondary.VotingRepository = (*VotingRepository)(nil)
