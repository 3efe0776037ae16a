// Package warehouse is the star-schema analytics store for ingested videos:
// the Channel, Video, Transcript Segment and Calendar Date dimensions and the
// append-only statistics fact table.
//
// A Store wraps a *sql.DB opened by one of the backend subpackages. Every
// write and read is defined on Queries, which runs either directly against
// the pool or inside a Tx, so the same operations serve per-video ingestion
// transactions and single-transaction enrichment runs.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/tubestar/pkg/logger"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every warehouse operation bound to a connection or transaction.
type Queries struct {
	db      DBTX
	backend Backend
	logger  *slog.Logger
}

// Store owns the database handle for the lifetime of a command.
type Store struct {
	*Queries

	db      *sql.DB
	onClose []func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for schema evolution and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithOnClose registers a hook that runs after the database handle is
// closed, e.g. to release a connection pool the handle was built from.
func WithOnClose(fn func()) Option {
	return func(s *Store) {
		s.onClose = append(s.onClose, fn)
	}
}

// New wraps an opened database handle.
func New(db *sql.DB, backend Backend, opts ...Option) *Store {
	s := &Store{
		Queries: &Queries{
			db:      db,
			backend: backend,
			logger:  logger.Nop(),
		},
		db: db,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	err := s.db.Close()
	for _, fn := range s.onClose {
		fn()
	}
	return err
}

// Tx is a Queries bound to an open transaction.
type Tx struct {
	*Queries

	tx *sql.Tx
}

// Begin opens a transaction. Callers must Commit or Rollback it.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{
		Queries: &Queries{db: tx, backend: s.backend, logger: s.logger},
		tx:      tx,
	}, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// Savepoint marks a point the transaction can be rolled back to without
// aborting the work done before it.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "SAVEPOINT ", name)
}

// RollbackTo undoes everything after the named savepoint.
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "ROLLBACK TO SAVEPOINT ", name)
}

// Release forgets the named savepoint, keeping its work.
func (t *Tx) Release(ctx context.Context, name string) error {
	return t.savepointStmt(ctx, "RELEASE SAVEPOINT ", name)
}

func (t *Tx) savepointStmt(ctx context.Context, verb, name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: savepoint %q", ErrInvalidIdentifier, name)
	}
	if _, err := t.db.ExecContext(ctx, verb+name); err != nil {
		return fmt.Errorf("%s%s: %w", verb, name, err)
	}
	return nil
}

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// builder returns ent's statement builder for this backend.
func (q *Queries) builder() *entsql.DialectBuilder {
	return entsql.Dialect(q.backend.Name())
}

func (q *Queries) rebind(query string) string {
	return rebind(q.backend.Name(), query)
}

// IsPostgres reports whether the store runs on PostgreSQL.
func (q *Queries) IsPostgres() bool {
	return q.backend.Name() == dialect.Postgres
}
