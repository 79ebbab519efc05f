package memory

import (
	"context"

	"taxi/internal/repository"
)

// Store bundles the in-memory repositories into a repository.Runner.
type Store struct {
	repos repository.Repos
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{repos: repository.Repos{
		Users:        NewUserRepository(),
		Rides:        NewRideRepository(),
		Transactions: NewTransactionRepository(),
	}}
}

// Repos returns the repositories.
func (s *Store) Repos() repository.Repos {
	return s.repos
}

// Atomic runs fn directly. The in-memory store has no transactions;
// atomicity comes from the registry's per-entity locks.
func (s *Store) Atomic(ctx context.Context, fn func(repository.Repos) error) error {
	return fn(s.repos)
}

var _ repository.Runner = (*Store)(nil)
