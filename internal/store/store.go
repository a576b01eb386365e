package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial runs table
// 1 - Added index on runs(fingerprint, id)
const currentSchemaVersion = 1

// Store records filter runs in a SQLite database.
// WAL mode lets history listings read while a run is being recorded.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Pragmas and migrations are applied on every open.
//
// The database is configured with:
//   - WAL journaling, so readers do not block the writer
//   - NORMAL synchronous mode; a crash may lose the last run, never corrupt older ones
//   - a 5-second busy timeout when another process holds the lock
//
// Opening an existing database is safe; nothing recorded is touched.
func Open(path string) (*Store, error) {
	// The file is created on first open.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sql.Open is lazy; Ping surfaces a bad path now.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool: SQLite allows a single writer, and pragmas such as
	// busy_timeout are per connection, so every query shares one.
	db.SetMaxOpenConns(1) // one writer, no SQLITE_BUSY between our own connections
	db.SetMaxIdleConns(1) // keep it open so the pragmas stay applied

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	// Tables first, then migrations on top.
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
// A zero Store closes without error.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query executes a read query. Callers close the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// applyPragmas sets the journal, sync and locking configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// Running it twice is a no-op.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	// Bring databases created by older versions up to date.
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// Each step runs once, in order, for databases below its version.
	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	// Record the version only after every step succeeded.
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes runs by fingerprint for history filtering.
// schema.sql carries only the table, so new and version-0 databases both
// get the index here.
func migrateToV1(db *sql.DB) error {
	// IF NOT EXISTS keeps the step safe on a database that already has it.
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_fingerprint
		ON runs(fingerprint, id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
