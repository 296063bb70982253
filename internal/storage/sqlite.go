package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chis/tagwatch/internal/logging"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS poll_runs (
	id              TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	duration_ms     INTEGER NOT NULL,
	private_ok      INTEGER NOT NULL,
	private_err     INTEGER NOT NULL,
	mirror_repos    INTEGER NOT NULL,
	mirror_releases INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_poll_runs_started_at ON poll_runs(started_at DESC);
`

// NewSQLiteStorage opens (or creates) the database at dbPath, enables
// WAL mode, and creates the schema.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Logger.Info("database initialized", zap.String("path", dbPath))
	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// RecordPollRun saves one completed run.
func (s *SQLiteStorage) RecordPollRun(ctx context.Context, run PollRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_runs (id, started_at, duration_ms, private_ok, private_err, mirror_repos, mirror_releases)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.DurationMs,
		run.PrivateOK,
		run.PrivateErr,
		run.MirrorRepos,
		run.MirrorReleases,
	)
	if err != nil {
		return fmt.Errorf("failed to record poll run: %w", err)
	}
	return nil
}

// ListPollRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListPollRuns(ctx context.Context, limit int) ([]PollRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, private_ok, private_err, mirror_repos, mirror_releases
		FROM poll_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll runs: %w", err)
	}
	defer rows.Close()

	runs := []PollRun{}
	for rows.Next() {
		var run PollRun
		var startedAt string
		if err := rows.Scan(&run.ID, &startedAt, &run.DurationMs,
			&run.PrivateOK, &run.PrivateErr, &run.MirrorRepos, &run.MirrorReleases); err != nil {
			return nil, fmt.Errorf("failed to scan poll run: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
		}
		run.StartedAt = ts
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate poll runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
