package history

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
)

const (
	SchemaVersion = 1

	// SQL statements derived from schema
	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS scans (
	       id             TEXT PRIMARY KEY,
	       timestamp      INTEGER NOT NULL CHECK (typeof(timestamp) = 'integer'),
	       hostname       TEXT NOT NULL,
	       overall_score  REAL,
	       overall_status TEXT
	   );
	   CREATE INDEX IF NOT EXISTS scans_timestamp ON scans (timestamp);
	   CREATE TABLE IF NOT EXISTS component_scores (
	       scan_id   TEXT NOT NULL REFERENCES scans (id) ON DELETE CASCADE,
	       position  INTEGER NOT NULL,
	       component TEXT NOT NULL,
	       score     REAL NOT NULL CHECK (score BETWEEN 0 AND 100),
	       status    TEXT NOT NULL CHECK (status IN ('GOOD', 'FAIR', 'POOR')),
	       summary   TEXT NOT NULL,
	       fallback  INTEGER NOT NULL CHECK (fallback IN (0, 1)),
	       PRIMARY KEY (scan_id, position)
	   );
	   CREATE TABLE IF NOT EXISTS predictions (
	       scan_id         TEXT NOT NULL REFERENCES scans (id) ON DELETE CASCADE,
	       position        INTEGER NOT NULL,
	       component       TEXT NOT NULL,
	       device          TEXT NOT NULL,
	       label           TEXT NOT NULL,
	       remaining_years REAL NOT NULL,
	       remaining_life  TEXT NOT NULL,
	       risk            TEXT NOT NULL CHECK (risk IN ('LOW', 'MEDIUM', 'HIGH')),
	       PRIMARY KEY (scan_id, position)
	   );`

	insertScanSQL = `
    INSERT INTO scans (id, timestamp, hostname, overall_score, overall_status)
    VALUES (?, ?, ?, ?, ?)`

	insertComponentSQL = `
    INSERT INTO component_scores (scan_id, position, component, score, status, summary, fallback)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertPredictionSQL = `
    INSERT INTO predictions (scan_id, position, component, device, label, remaining_years, remaining_life, risk)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectRecentScansSQL = `
    SELECT id, timestamp, hostname, overall_score, overall_status
    FROM scans
    ORDER BY timestamp DESC, rowid DESC
    LIMIT ?`

	selectComponentsSQL = `
    SELECT component, score, status, summary, fallback
    FROM component_scores
    WHERE scan_id = ?
    ORDER BY position`

	selectPredictionsSQL = `
    SELECT component, device, label, remaining_years, remaining_life, risk
    FROM predictions
    WHERE scan_id = ?
    ORDER BY position`
)

var dataTables = []string{"predictions", "component_scores", "scans", "schema_versions"}

// InitSchema creates a new database schema with the current version
func InitSchema(ctx context.Context, db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				// Only log if it's not the "already committed" error
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err).WithData("create_tables")
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err).WithData("record_version")
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, or 0 for an empty
// database.
func GetSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(ctx, db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err).WithData("get_version")
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().Wrap(ErrSchemaValidationFailed, err).WithData(tableName)
	}
	return exists, nil
}
