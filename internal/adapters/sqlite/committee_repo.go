package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/secondary"
)

// CommitteeRepository implements secondary.CommitteeRepository with SQLite.
type CommitteeRepository struct {
	db *sql.DB
}

// NewCommitteeRepository creates a new SQLite committee repository.
func NewCommitteeRepository(db *sql.DB) *CommitteeRepository {
	return &CommitteeRepository{db: db}
}

// Create persists a new committee.
func (r *CommitteeRepository) Create(ctx context.Context, committee *secondary.CommitteeRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO committees (id, name, min_coalition_size) VALUES (?, ?, ?)",
		committee.ID, committee.Name, committee.MinCoalitionSize,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return procerr.New(procerr.CodeInvalidArgument, "committee %q already exists", committee.Name)
		}
		return fmt.Errorf("failed to create committee: %w", err)
	}

	return nil
}

// GetByID retrieves a committee by its ID.
func (r *CommitteeRepository) GetByID(ctx context.Context, id string) (*secondary.CommitteeRecord, error) {
	var createdAt time.Time

	record := &secondary.CommitteeRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, min_coalition_size, created_at FROM committees WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &record.MinCoalitionSize, &createdAt)

	if err == sql.ErrNoRows {
		return nil, procerr.NotFound("committee", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get committee: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// List retrieves every committee ordered by ID.
func (r *CommitteeRepository) List(ctx context.Context) ([]*secondary.CommitteeRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, min_coalition_size, created_at FROM committees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list committees: %w", err)
	}
	defer rows.Close()

	var committees []*secondary.CommitteeRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.CommitteeRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.MinCoalitionSize, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan committee: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		committees = append(committees, record)
	}

	return committees, rows.Err()
}

// AddCountry appends a country to a committee roster.
func (r *CommitteeRepository) AddCountry(ctx context.Context, country *secondary.CommitteeCountryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO committee_countries (committee_id, name, email, has_veto_right, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM committee_countries WHERE committee_id = ?))`,
		country.CommitteeID, country.Name, nullString(country.Email), country.HasVetoRight, country.CommitteeID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return procerr.New(procerr.CodeInvalidArgument, "%s (or its email) is already on the roster of %s", country.Name, country.CommitteeID)
		}
		return fmt.Errorf("failed to add country: %w", err)
	}

	return nil
}

// ListCountries retrieves a committee's roster in insertion order.
func (r *CommitteeRepository) ListCountries(ctx context.Context, committeeID string) ([]*secondary.CommitteeCountryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT committee_id, name, email, has_veto_right FROM committee_countries WHERE committee_id = ? ORDER BY position",
		committeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var countries []*secondary.CommitteeCountryRecord
	for rows.Next() {
		var email sql.NullString
		record := &secondary.CommitteeCountryRecord{}
		if err := rows.Scan(&record.CommitteeID, &record.Name, &email, &record.HasVetoRight); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		record.Email = email.String
		countries = append(countries, record)
	}

	return countries, rows.Err()
}

// GetNextID returns the next available committee ID.
func (r *CommitteeRepository) GetNextID(ctx context.Context) (string, error) {
	return nextPrefixedID(ctx, r.db, "committees", "COM")
}

// Ensure CommitteeRepository implements the interface
var _ secondary.CommitteeRepository = (*CommitteeRepository)(nil)
