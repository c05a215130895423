package database

import (
	"fmt"
	"log/slog"
	"time"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at BIGINT
	);
`

// migrationsFor returns the migration list in the given dialect.
// created_at is stored as unix nanoseconds on both dialects so ordering is
// numeric and identical everywhere.
func migrationsFor(driver string) []Migration {
	payloadType := "TEXT"
	notesAlter := `ALTER TABLE results ADD COLUMN reviewer_notes TEXT NOT NULL DEFAULT '';`
	if driver == DriverPostgres {
		payloadType = "JSONB"
		notesAlter = `ALTER TABLE results ADD COLUMN IF NOT EXISTS reviewer_notes TEXT NOT NULL DEFAULT '';`
	}

	return []Migration{
		{
			Version: 1,
			Name:    "create_results_table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS results (
					id TEXT PRIMARY KEY,
					collection TEXT NOT NULL,
					label TEXT NOT NULL,
					confidence REAL NOT NULL,
					credibility_score INTEGER NOT NULL,
					source_text TEXT NOT NULL,
					payload %s NOT NULL,
					created_at BIGINT NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_results_collection_created
					ON results(collection, created_at DESC);
			`, payloadType),
		},
		{
			Version: 2,
			Name:    "create_schema_version_table",
			SQL:     schemaVersionSQL,
		},
		{
			Version: 3,
			Name:    "add_reviewer_notes_column",
			SQL:     notesAlter,
		},
	}
}

// Migrate runs all pending migrations for the connection's dialect.
func (db *DB) Migrate() error {
	// Ensure schema_version table exists before asking for the version.
	if _, err := db.conn.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	slog.Info("checking schema version", "current", currentVersion, "driver", db.driver)

	for _, migration := range migrationsFor(db.driver) {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration", "version", migration.Version, "name", migration.Name)
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(db.rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"),
			migration.Version, time.Now().UnixNano()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
