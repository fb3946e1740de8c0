// Package history keeps an append-only SQLite ledger of build and clean
// invocations, read back by the `history` command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome values recorded per invocation.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Record is one build or clean invocation.
type Record struct {
	RunID       string
	Command     string // build, clean, clobber
	Device      string
	Backends    string // comma-separated enabled backends, e.g. "pt,tf"
	Outcome     string
	FailedStage string // empty on success
	ExitCode    int    // 0 on success
	Duration    time.Duration
	StartedAt   time.Time
}

// Store implements the ledger on SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the ledger at dbPath.
// Use ":memory:" for an in-memory database in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		command TEXT NOT NULL,
		device TEXT NOT NULL,
		backends TEXT NOT NULL,
		outcome TEXT NOT NULL,
		failed_stage TEXT,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds one invocation record to the ledger.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, command, device, backends, outcome, failed_stage, exit_code, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Command, rec.Device, rec.Backends, rec.Outcome,
		rec.FailedStage, rec.ExitCode, rec.Duration.Milliseconds(), rec.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, command, device, backends, outcome, failed_stage, exit_code, duration_ms, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var failedStage sql.NullString
		var durationMS, startedAt int64
		if err := rows.Scan(&rec.RunID, &rec.Command, &rec.Device, &rec.Backends,
			&rec.Outcome, &failedStage, &rec.ExitCode, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.FailedStage = failedStage.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.StartedAt = time.Unix(startedAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
