package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SetMetadata upserts a key-value pair in the server_metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO server_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM server_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// AllMetadata returns every metadata pair.
func (s *Store) AllMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM server_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// RecordServerStart stores the backend and model the server was started with.
func (s *Store) RecordServerStart(ctx context.Context, backend, model string, at time.Time) error {
	pairs := []struct{ k, v string }{
		{"backend", backend},
		{"model", model},
		{"started_at", at.UTC().Format(time.RFC3339)},
	}
	for _, p := range pairs {
		if err := s.SetMetadata(ctx, p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}
