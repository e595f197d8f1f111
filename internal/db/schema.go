package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// SchemaSQL is the complete modern schema for fresh presidium installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run the sqlite adapter tests to verify alignment
//
// Aggregates (sessions, votings) are stored as one JSON document per row.
// The scalar columns next to the document exist for filtering and for the
// live-session constraint; the document is authoritative.
const SchemaSQL = `
-- Committees (roster collaborator)
CREATE TABLE IF NOT EXISTS committees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	min_coalition_size INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS committee_countries (
	committee_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	has_veto_right INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL,
	PRIMARY KEY (committee_id, name),
	FOREIGN KEY (committee_id) REFERENCES committees(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_committee_countries_email ON committee_countries(committee_id, email) WHERE email IS NOT NULL AND email != '';

-- Sessions (one document per session, optimistic version)
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	committee_id TEXT NOT NULL,
	number INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('inactive', 'active', 'paused', 'completed')) DEFAULT 'inactive',
	document TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (committee_id) REFERENCES committees(id),
	UNIQUE (committee_id, number)
);

CREATE INDEX IF NOT EXISTS idx_sessions_committee ON sessions(committee_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_live ON sessions(committee_id) WHERE status IN ('active', 'paused');

-- Votings
CREATE TABLE IF NOT EXISTS votings (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	committee_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'active', 'completed', 'cancelled')) DEFAULT 'pending',
	document TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_votings_session ON votings(session_id);
CREATE INDEX IF NOT EXISTS idx_votings_status ON votings(status);

-- Domain events (outbox, append-only)
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	aggregate_type TEXT NOT NULL CHECK(aggregate_type IN ('session', 'voting')),
	aggregate_id TEXT NOT NULL,
	committee_id TEXT NOT NULL,
	visibility TEXT NOT NULL CHECK(visibility IN ('public', 'presidium', 'after-completion')) DEFAULT 'public',
	actor_id TEXT,
	payload TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_aggregate ON events(aggregate_id);
CREATE INDEX IF NOT EXISTS idx_events_committee ON events(committee_id);

-- Audit log (presidium corrections and procedural changes)
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_actor ON audit_log(actor_id);
`

// InitSchema creates the database schema.
// Fresh databases get SchemaSQL directly with every migration marked applied;
// existing databases run pending migrations.
func InitSchema(db *sql.DB, logger *slog.Logger) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db, logger)
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
