// Package store persists pipeline runs in an SQLite database.
//
// A run is written in a single transaction: the run header, the canonical
// enrollment table and every aggregated table in long form (one row per
// cell). Readers either see the whole run or nothing of it.
//
// Usage:
//
//	st, err := store.Open(cfg.Paths.Database, store.WithMkdirAll())
//	defer st.Close()
//	err = st.SaveRun(ctx, result)
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	years          TEXT NOT NULL,
	loaded_years   TEXT NOT NULL,
	reference_year INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
	run_id            TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	year              INTEGER NOT NULL,
	region            TEXT NOT NULL,
	state             TEXT NOT NULL,
	municipality_name TEXT NOT NULL,
	municipality_code TEXT NOT NULL,
	admin_category    INTEGER,
	area_name         TEXT NOT NULL,
	area_code         TEXT NOT NULL,
	institution_id    TEXT NOT NULL,
	total_enrolled    INTEGER,
	female_enrolled   INTEGER,
	male_enrolled     INTEGER,
	entrants          INTEGER,
	graduates         INTEGER,
	in_target         INTEGER NOT NULL,
	target_group      TEXT NOT NULL,
	institution_type  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_enrollments_run_year ON enrollments(run_id, year, region);

CREATE TABLE IF NOT EXISTS aggregate_rows (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	table_name  TEXT NOT NULL,
	row_index   INTEGER NOT NULL,
	column_idx  INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	value       TEXT NOT NULL,
	PRIMARY KEY (run_id, table_name, row_index, column_idx)
);
`

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
	logger      *slog.Logger
}

func defaults() config {
	return config{
		busyTimeout: 10_000,
		synchronous: "NORMAL",
	}
}

// Option customises Open
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates the parent directories of the database path
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithLogger sets the store logger
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// Store is an open census database
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the database at path and applies the schema
func Open(path string, opts ...Option) (*Store, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, apperrors.NewStorageError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("open database", err)
	}
	// One writer; also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, apperrors.NewStorageError(p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("apply schema", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("ping database", err)
	}

	return &Store{
		db:     db,
		logger: cfg.logger.With(slog.String("component", "store"), slog.String("path", path)),
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
