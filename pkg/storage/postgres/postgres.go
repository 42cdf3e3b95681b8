// Package postgres implements the storage layer on PostgreSQL through
// database/sql. Statements use $1 placeholders and stay portable enough
// that the test suite exercises them against in-memory SQLite.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/platinummonkey/docvault/pkg/storage"
)

// Store is the SQL-backed storage.Store implementation.
type Store struct {
	db *sql.DB
}

// New connects to PostgreSQL, verifies the connection and applies pending
// migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection without migrating. Tests use it
// with SQLite.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// translateErr maps driver constraint violations onto the storage
// sentinels. The string checks cover SQLite in tests.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return storage.ErrConflict
		case "23503": // foreign_key_violation
			return storage.ErrNotFound
		}
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return storage.ErrConflict
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return storage.ErrNotFound
	}
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

var _ storage.Store = (*Store)(nil)
