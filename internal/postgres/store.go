// Package postgres implements service.Store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopflow/shopflow/internal/service"
)

// DBTX is the subset of pgx shared by pools and transactions, so every query
// method runs unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed service.Store.
type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

// Compile-time check that Store implements service.Store.
var _ service.Store = (*Store)(nil)

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx runs fn against a transactional Store. The transaction commits when
// fn returns nil and rolls back otherwise. Nesting is not supported.
func (s *Store) WithTx(ctx context.Context, fn func(service.Store) error) error {
	if s.pool == nil {
		return errors.New("postgres: nested transactions are not supported")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
