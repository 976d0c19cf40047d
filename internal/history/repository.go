package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/hwhealth/internal/engine"
	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config
	mu     sync.Mutex
	closed bool
}

func newRepository(ctx context.Context, cfg Config, log logger.Logger) (*repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err).WithData("create_directory")
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2&_foreign_keys=1"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err).WithData("open_database")
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// the scanner and HTTP readers.
	db.SetMaxOpenConns(1)

	backupDir := cfg.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(cfg.DBPath), "backups")
	}

	if err := ValidateAndUpdateSchema(ctx, db, backupDir, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err).WithData("schema_version")
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Scan history initialized")

	return &repository{db: db, logger: log, cfg: cfg}, nil
}

func (r *repository) Enabled() bool {
	return true
}

func (r *repository) Record(ctx context.Context, res engine.Result) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	if r.closed {
		return "", errFactory.New(ErrClosed)
	}

	id := uuid.NewString()
	ts := res.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var score, status any
	if res.Overall != nil {
		score, status = res.Overall.MeanScore, string(res.Overall.Status)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errFactory.Wrap(ErrTransactionFailed, err)
	}

	rollback := func(cause error) (string, error) {
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return "", errFactory.Wrap(ErrRecord, cause)
	}

	if _, err := tx.ExecContext(ctx, insertScanSQL, id, ts.UnixMilli(), res.Platform.Hostname, score, status); err != nil {
		return rollback(err)
	}

	for i, c := range res.Components {
		if _, err := tx.ExecContext(ctx, insertComponentSQL,
			id, i, string(c.ID), c.Score, string(c.Status), c.Summary, boolToInt(c.Fallback()),
		); err != nil {
			return rollback(err)
		}
	}

	for i, p := range res.Predictions {
		if _, err := tx.ExecContext(ctx, insertPredictionSQL,
			id, i, string(p.ComponentID), p.Device, p.Label, p.RemainingYears, p.RemainingLife, string(p.Risk),
		); err != nil {
			return rollback(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().
		Str("scan_id", id).
		Int("components", len(res.Components)).
		Int("predictions", len(res.Predictions)).
		Msg("Recorded scan")

	return id, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	if r.closed {
		return nil, errFactory.New(ErrClosed)
	}
	if limit <= 0 {
		return []Entry{}, nil
	}

	rows, err := r.db.QueryContext(ctx, selectRecentScansSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrQuery, err)
	}

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e      Entry
			millis int64
			score  sql.NullFloat64
			status sql.NullString
		)
		if err := rows.Scan(&e.ID, &millis, &e.Hostname, &score, &status); err != nil {
			rows.Close()
			return nil, errFactory.Wrap(ErrQuery, err)
		}
		e.Timestamp = time.UnixMilli(millis).UTC()
		if score.Valid {
			v := score.Float64
			e.OverallScore = &v
		}
		e.OverallStatus = status.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errFactory.Wrap(ErrQuery, err)
	}
	rows.Close()

	// Child rows are read after the scan cursor is closed; the pool has a
	// single connection.
	for i := range entries {
		if entries[i].Components, err = r.components(ctx, entries[i].ID); err != nil {
			return nil, errFactory.Wrap(ErrQuery, err)
		}
		if entries[i].Predictions, err = r.predictions(ctx, entries[i].ID); err != nil {
			return nil, errFactory.Wrap(ErrQuery, err)
		}
	}

	return entries, nil
}

func (r *repository) components(ctx context.Context, scanID string) ([]ComponentScore, error) {
	rows, err := r.db.QueryContext(ctx, selectComponentsSQL, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ComponentScore{}
	for rows.Next() {
		var (
			c        ComponentScore
			fallback int
		)
		if err := rows.Scan(&c.Component, &c.Score, &c.Status, &c.Summary, &fallback); err != nil {
			return nil, err
		}
		c.Fallback = fallback == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) predictions(ctx context.Context, scanID string) ([]PredictionEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectPredictionsSQL, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PredictionEntry{}
	for rows.Next() {
		var p PredictionEntry
		if err := rows.Scan(&p.Component, &p.Device, &p.Label, &p.RemainingYears, &p.RemainingLife, &p.Risk); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.db.Close()
		return errors.New().Wrap(ErrStorageClose, err).WithData("checkpoint_wal")
	}

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err).WithData("close_database")
	}

	r.logger.Info().Msg("Scan history closed gracefully")

	return nil
}
