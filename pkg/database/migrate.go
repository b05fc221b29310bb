package database

import (
	"database/sql"
	_ "embed"
	"fmt"
)

// SchemaVersion is stamped into the database via PRAGMA user_version so a
// stored catalog can be recognized across releases.
const SchemaVersion = 1

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema and stamps the schema version.
// A database stamped with a newer version than this build understands is
// refused rather than silently read.
func Migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version;`).Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, SchemaVersion)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, SchemaVersion)); err != nil {
		return fmt.Errorf("stamp user_version: %w", err)
	}
	return nil
}
