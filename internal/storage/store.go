// Package storage persists versioned state slices in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Load when no slice is stored under the key.
var ErrNotFound = errors.New("slice not found")

// Slice is a stored slice: its schema version and JSON encoding.
type Slice struct {
	Version int
	Data    []byte
}

// SQLiteStore stores slices in a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	load *sql.Stmt
	save *sql.Stmt
}

// Open opens (creating if needed) the database at path, applies migrations
// and prepares the store. ":memory:" yields a private in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore creates a store from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	var err error
	s.load, err = db.Prepare(`SELECT version, data FROM slices WHERE key = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare load: %w", err)
	}
	s.save, err = db.Prepare(`
		INSERT INTO slices (key, version, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		s.load.Close()
		return nil, fmt.Errorf("prepare save: %w", err)
	}
	return s, nil
}

// Load returns the slice stored under key, or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, key string) (Slice, error) {
	var (
		sl   Slice
		data string
	)
	err := s.load.QueryRowContext(ctx, key).Scan(&sl.Version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Slice{}, ErrNotFound
	}
	if err != nil {
		return Slice{}, fmt.Errorf("load slice %q: %w", key, err)
	}
	sl.Data = []byte(data)
	return sl, nil
}

// Save stores sl under key, replacing any previous value.
func (s *SQLiteStore) Save(ctx context.Context, key string, sl Slice) error {
	if _, err := s.save.ExecContext(ctx, key, sl.Version, string(sl.Data)); err != nil {
		return fmt.Errorf("save slice %q: %w", key, err)
	}
	return nil
}

// Close releases the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	s.load.Close()
	s.save.Close()
	return s.db.Close()
}
