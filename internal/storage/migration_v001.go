package storage

import "database/sql"

// migrateV001 creates the table of persisted state slices. One row per
// slice; version is the slice's own schema version, not the database's.
func migrateV001(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS slices (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		data       TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}
