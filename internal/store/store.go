package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations upgrade an existing database one user_version at a time.
// Entry i moves the schema from version i to i+1.
var migrations = []string{
	// 1: ancestry walks follow parent links
	`CREATE INDEX IF NOT EXISTS idx_snapshots_parent ON snapshots(parent_id)`,
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = len(migrations)

// connPragmas configure the single connection. WAL keeps readers off the
// writer's lock and foreign keys enforce parent links.
var connPragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

var (
	// ErrSnapshotNotFound is returned when no snapshot has the requested id.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrTransactionLogNotFound is returned when a snapshot has no stored
	// transaction log. Root snapshots never have one.
	ErrTransactionLogNotFound = errors.New("transaction log not found")

	// ErrNotAncestor is returned when a history range does not describe a
	// path through the parent links.
	ErrNotAncestor = errors.New("base is not an ancestor of tip")

	// ErrUnlistedNodes is returned when a commit's transaction log updates
	// nodes that its own node listing does not contain.
	ErrUnlistedNodes = errors.New("transaction log updates nodes missing from snapshot")
)

// Store provides durable storage for snapshots and transaction logs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path, then configures the
// connection and brings the schema up to date. Opening an existing database
// again is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to snapshot database: %w", err)
	}

	// One connection: SQLite has a single writer, and streamed listings
	// hold it until they finish.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range connPragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p.name, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the connection. A zero Store closes without error.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate runs every migration past the stored user_version, recording the
// new version after each step.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrate schema to v%d: %w", v+1, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			return fmt.Errorf("record schema v%d: %w", v+1, err)
		}
	}
	return nil
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
