package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_artifacts_expires ON artifacts(expires_at)
	WHERE expires_at IS NOT NULL;
`

// SQLite is a durable Store backed by a local SQLite database. It survives
// process restarts, unlike the in-memory store, and is suitable for
// single-node deployments.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and if needed initializes) a SQLite-backed store at
// path. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent use.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Put stores data under id with an optional ttl.
func (s *SQLite) Put(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		id, data, expiresAt)
	if err != nil {
		return fmt.Errorf("store put %s: %w", id, err)
	}
	return nil
}

// Get returns the data stored under id, or ErrNotFound when missing or
// expired.
func (s *SQLite) Get(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM artifacts WHERE id = ?`, id).
		Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store get %s: %w", id, err)
	}

	if expiresAt.Valid && s.now().Unix() > expiresAt.Int64 {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
		return nil, ErrNotFound
	}
	return data, nil
}

// Delete removes the entry for id.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store delete %s: %w", id, err)
	}
	return nil
}

// Sweep removes all expired entries.
func (s *SQLite) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE expires_at IS NOT NULL AND expires_at < ?`,
		s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("store sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store sweep: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
