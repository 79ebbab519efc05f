package repository

import "context"

// Repos bundles the repositories a storage scope operates on.
type Repos struct {
	Users        UserRepository
	Rides        RideRepository
	Transactions TransactionRepository
}

// Runner executes functions against the repositories. Atomic gives the
// function commit-or-nothing semantics where the backend supports it
// (a transaction on PostgreSQL, a plain call for the in-memory store,
// which relies on the registry's per-entity serialization instead).
type Runner interface {
	// Repos returns the plain, non-transactional repositories.
	Repos() Repos

	// Atomic runs fn against a single atomic storage scope.
	Atomic(ctx context.Context, fn func(Repos) error) error
}
