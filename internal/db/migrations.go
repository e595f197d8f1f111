package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_committees_sessions_votings",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_events_outbox",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_audit_log",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_live_session_index",
		Up:      migrationV4,
	},
}

// SchemaVersion returns the newest migration version.
func SchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// AppliedVersion returns the newest migration recorded in the database,
// or 0 for a database that was never initialized.
func AppliedVersion(db *sql.DB) (int, error) {
	var tables int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tables); err != nil {
		return 0, err
	}
	if tables == 0 {
		return 0, nil
	}
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		logger.Info("migration completed", "version", migration.Version)
	}

	return nil
}

// migrationV1 creates the roster and aggregate tables.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	return err
}

// migrationV2 adds the append-only domain event log.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	return err
}

// migrationV3 adds the audit log for presidium corrections.
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
	`)
	return err
}

// migrationV4 enforces at most one live session per committee.
func migrationV4(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_live ON sessions(committee_id) WHERE status IN ('active', 'paused')`)
	return err
}
