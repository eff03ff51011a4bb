package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS episodes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    episode INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    started_at TEXT NOT NULL,
    duration_ns INTEGER NOT NULL,
    ticks INTEGER NOT NULL,
    total_energy_mev REAL NOT NULL,
    total_fusions INTEGER NOT NULL,
    peak_fusion_rate INTEGER NOT NULL,
    outcome TEXT NOT NULL,  -- 'wall_failure', 'ignition', 'breakeven', 'subcritical', 'cold'
    score REAL NOT NULL,
    final_telemetry TEXT NOT NULL,  -- JSON
    settings TEXT NOT NULL,         -- JSON
    recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_score ON episodes(score DESC);
CREATE INDEX IF NOT EXISTS idx_episodes_outcome ON episodes(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// InitSchema creates the schema if absent and rejects databases from a newer version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// schema_version missing: fresh database
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", currentVersion, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
