// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/example/presidium/internal/core/procerr"
)

// saveVersioned replaces a document row only if its version still matches.
// Returns the new version.
func saveVersioned(ctx context.Context, db *sql.DB, table, kind, id, status string, doc []byte, expectedVersion int) (int, error) {
	result, err := db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET document = ?, status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND version = ?", table),
		string(doc), status, id, expectedVersion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, liveConflict(kind, id)
		}
		return 0, fmt.Errorf("failed to save %s: %w", kind, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 1 {
		return expectedVersion + 1, nil
	}

	var current int
	err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s WHERE id = ?", table), id).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, procerr.NotFound(kind, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check %s version: %w", kind, err)
	}
	return 0, procerr.WithMetadata(procerr.CodeConcurrentModification,
		fmt.Sprintf("%s %s was modified concurrently (expected version %d, found %d)", kind, id, expectedVersion, current),
		map[string]string{
			"entity":           kind,
			"id":               id,
			"expected_version": fmt.Sprint(expectedVersion),
			"current_version":  fmt.Sprint(current),
		})
}

// nextPrefixedID returns prefix-NNN one past the highest existing id.
func nextPrefixedID(ctx context.Context, db *sql.DB, table, prefix string) (string, error) {
	var maxID int
	err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", len(prefix)+2, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", table, err)
	}

	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func liveConflict(kind, id string) error {
	return procerr.WithMetadata(procerr.CodeInvalidState,
		fmt.Sprintf("%s %s conflicts with an existing record", kind, id),
		map[string]string{"entity": kind, "id": id})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
