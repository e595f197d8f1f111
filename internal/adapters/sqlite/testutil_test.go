// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/presidium/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedCommittee inserts a test committee and returns its ID.
func seedCommittee(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "COM-001"
	}
	if name == "" {
		name = "Test Committee"
	}
	_, err := db.Exec("INSERT INTO committees (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		t.Fatalf("failed to seed committee: %v", err)
	}
	return id
}

// seedSession inserts a test session document and returns its ID.
func seedSession(t *testing.T, db *sql.DB, id, committeeID string, number int, status string) string {
	t.Helper()
	if id == "" {
		id = "SES-001"
	}
	if committeeID == "" {
		committeeID = "COM-001"
	}
	if status == "" {
		status = "inactive"
	}
	_, err := db.Exec(
		"INSERT INTO sessions (id, committee_id, number, status, document) VALUES (?, ?, ?, ?, '{}')",
		id, committeeID, number, status,
	)
	if err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return id
}
