// Package history records one row per dispatched backend operation so
// the CLI can show what was sent and how it went. It is an audit trail,
// not a cache: responses are never stored or replayed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one dispatched operation.
type Record struct {
	ID         string
	Operation  string
	Status     int
	ErrMessage string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Store is a SQLite-backed history log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		status INTEGER NOT NULL,
		error TEXT,
		duration_ns INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	return err
}

// Append stores one record, assigning an ID and timestamp if unset.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (id, operation, status, error, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Operation, rec.Status, rec.ErrMessage, rec.Duration.Nanoseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, status, error, duration_ns, created_at
		 FROM calls ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var durationNS int64
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.Status, &rec.ErrMessage, &durationNS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Duration = time.Duration(durationNS)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
