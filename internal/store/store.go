package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavelanni/papergen/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the sqlite-backed audit log of generation calls.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// :memory: databases are per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_calls (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL DEFAULT '',
		backend TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_generation_calls_request
		ON generation_calls(request_id);

	CREATE TABLE IF NOT EXISTS server_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordCall stores one generation call. It satisfies llm.Recorder.
func (s *Store) RecordCall(ctx context.Context, c model.GenerationCall) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_calls (id, request_id, backend, model, prompt, response, error, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RequestID, c.Backend, c.Model, c.Prompt, c.Response, c.Error, c.LatencyMs, c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert generation call: %w", err)
	}
	return nil
}

// CallFilter narrows ListCalls. Zero values match everything.
type CallFilter struct {
	RequestID  string
	FailedOnly bool
	Limit      int
}

// ListCalls returns recorded calls, oldest first.
func (s *Store) ListCalls(ctx context.Context, f CallFilter) ([]model.GenerationCall, error) {
	query := `SELECT id, request_id, backend, model, prompt, response, error, latency_ms, created_at
		FROM generation_calls WHERE 1=1`
	var args []any
	if f.RequestID != "" {
		query += ` AND request_id = ?`
		args = append(args, f.RequestID)
	}
	if f.FailedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY created_at ASC, rowid ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []model.GenerationCall
	for rows.Next() {
		var c model.GenerationCall
		if err := rows.Scan(&c.ID, &c.RequestID, &c.Backend, &c.Model, &c.Prompt, &c.Response, &c.Error, &c.LatencyMs, &c.CreatedAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// CallCount returns the number of recorded calls.
func (s *Store) CallCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_calls`).Scan(&n)
	return n, err
}
