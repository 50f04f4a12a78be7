// Package postgres implements the silk store contracts on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend on PostgreSQL.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
	logger   *slog.Logger
}

// NewBackend returns a detached PostgreSQL backend. A nil logger discards
// backend logs.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{logger: logger}
}

// Attach connects to config.DSN, verifies the connection, and applies the
// schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendPostgres {
		return fmt.Errorf("%w: postgres backend cannot attach %q", types.ErrBackendUnknown, config.Backend)
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return fmt.Errorf("postgres: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("postgres: failed to ping database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}

	b.db = db
	b.attached = true
	b.logger.Debug("postgres backend attached")
	return nil
}

// Detach closes the connection pool. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.attached = false
	if err != nil {
		return fmt.Errorf("postgres: failed to close database: %w", err)
	}
	b.logger.Debug("postgres backend detached")
	return nil
}

// conn returns the pool, or ErrBackendDetached. The read lock is held until
// release is called.
func (b *Backend) conn() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrBackendDetached
	}
	return b.db, b.mu.RUnlock, nil
}

func (b *Backend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, release, err := b.conn()
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// SQLSTATE codes the store maps to sentinel errors.
const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// duplicate maps a unique constraint failure to ErrInvalidData.
func duplicate(err error, what string) error {
	if pqCode(err) == uniqueViolation {
		return fmt.Errorf("%w: %s exists", types.ErrInvalidData, what)
	}
	return fmt.Errorf("postgres: %w", err)
}

func notFound(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	return nil
}

var dialect = sqlquery.Postgres
