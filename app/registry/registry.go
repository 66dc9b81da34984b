// Package registry persists the mapping from lookup codes to media handles.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/codegate/core/logger"
)

// DefaultTimeout bounds a single registry call.
const DefaultTimeout = 3 * time.Second

const (
	selectHandleSQL = `SELECT handle FROM media_codes WHERE code = ?`
	upsertSQL       = `INSERT INTO media_codes (code, handle, bound_by, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (code) DO UPDATE SET
	handle = excluded.handle,
	bound_by = excluded.bound_by,
	updated_at = CURRENT_TIMESTAMP`
	countSQL = `SELECT COUNT(*) FROM media_codes`
)

// Entry binds a code to a media handle.
type Entry struct {
	Code    string `db:"code"`
	Handle  string `db:"handle"`
	BoundBy int64  `db:"bound_by"`
}

// Store is a durable code -> handle map backed by Postgres or SQLite.
// Writers to the same code are last-writer-wins.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration

	getQuery    string
	upsertQuery string
}

// Option customises a Store.
type Option func(*Store)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps an open database. Placeholders are rebound for the db's driver.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		timeout:     DefaultTimeout,
		getQuery:    db.Rebind(selectHandleSQL),
		upsertQuery: db.Rebind(upsertSQL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the handle bound to code. A missing code is (""; false; nil).
func (s *Store) Get(ctx context.Context, code string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var handle string
	err := s.db.GetContext(ctx, &handle, s.getQuery, code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		logger.Debug(ctx, "registry", "registry.get",
			slog.String("status", "ok"),
			slog.String("code", code),
			slog.Bool("found", false),
			slog.Duration("duration", time.Since(start)),
		)
		return "", false, nil
	case err != nil:
		logger.Error(ctx, "registry", "registry.get",
			slog.String("status", "fail"),
			slog.String("code", code),
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return "", false, &StorageError{Op: "get", Err: err}
	}
	logger.Debug(ctx, "registry", "registry.get",
		slog.String("status", "ok"),
		slog.String("code", code),
		slog.Bool("found", true),
		slog.Duration("duration", time.Since(start)),
	)
	return handle, true, nil
}

// Upsert binds e.Code to e.Handle, replacing any previous binding.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var boundBy sql.NullInt64
	if e.BoundBy != 0 {
		boundBy = sql.NullInt64{Int64: e.BoundBy, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, e.Code, e.Handle, boundBy); err != nil {
		logger.Error(ctx, "registry", "registry.upsert",
			slog.String("status", "fail"),
			slog.String("code", e.Code),
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return &StorageError{Op: "upsert", Err: err}
	}
	logger.Info(ctx, "registry", "registry.upsert",
		slog.String("status", "ok"),
		slog.String("code", e.Code),
		slog.String("handle", e.Handle),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Count returns how many codes are bound.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int
	if err := s.db.GetContext(ctx, &n, countSQL); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}
