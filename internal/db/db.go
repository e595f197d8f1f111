package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db     *sql.DB
	dbPath string
	logger = slog.New(slog.DiscardHandler)
	mu     sync.Mutex
)

// Configure sets the database path and migration logger used by GetDB.
// It must be called before the first GetDB.
func Configure(path string, l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	dbPath = path
	if l != nil {
		logger = l
	}
}

// GetDB returns the database connection, initializing if needed
func GetDB() (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}
	if dbPath == "" {
		return nil, fmt.Errorf("database path not configured")
	}

	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	db = conn
	return db, nil
}

// Open opens a SQLite database at path with foreign keys enabled.
// Use ":memory:" for an in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if path != ":memory:" {
		dsn += "?_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection per process; an in-memory database lives on it.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return conn, nil
}

// Close closes the database connection
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetDBPath returns the configured database path
func GetDBPath() string {
	mu.Lock()
	defer mu.Unlock()
	return dbPath
}
