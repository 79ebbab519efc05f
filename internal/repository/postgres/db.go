package postgres

import (
	"context"
	"database/sql"

	"taxi/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Store bundles the PostgreSQL repositories into a repository.Runner.
type Store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound directly to the connection pool.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Users:        NewUserRepository(s.db),
		Rides:        NewRideRepository(s.db),
		Transactions: NewTransactionRepository(s.db),
	}
}

// Atomic runs fn against transaction-scoped repositories. The transaction
// commits iff fn returns nil.
func (s *Store) Atomic(ctx context.Context, fn func(repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repos{
		Users:        NewUserRepositoryWithTx(tx),
		Rides:        NewRideRepositoryWithTx(tx),
		Transactions: NewTransactionRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.Runner = (*Store)(nil)
