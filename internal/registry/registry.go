// Package registry is the single source of truth for users, drivers, and
// rides. All mutations go through it, and it serializes access per entity
// id: two concurrent operations on the same ride cannot interleave, while
// operations on different ids proceed in parallel.
package registry

import (
	"context"
	"fmt"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// Registry wraps a storage backend with per-entity-id locking.
type Registry struct {
	runner repository.Runner
	locks  *KeyedMutex
}

// New creates a registry over the given storage backend.
func New(runner repository.Runner) *Registry {
	return &Registry{
		runner: runner,
		locks:  NewKeyedMutex(),
	}
}

// Repos returns the plain repositories for lock-free reads.
func (r *Registry) Repos() repository.Repos {
	return r.runner.Repos()
}

// NextRideID issues a strictly increasing ride identifier starting at 1.
func (r *Registry) NextRideID(ctx context.Context) (int64, error) {
	return r.runner.Repos().Rides.NextID(ctx)
}

// WithRide runs fn holding the ride's lock, inside one atomic storage
// scope. Lock ordering: a ride lock may be followed by user locks via
// LockUser/LockUsers, never the reverse.
func (r *Registry) WithRide(ctx context.Context, rideID int64, fn func(repository.Repos) error) error {
	unlock := r.locks.Lock(rideKey(rideID))
	defer unlock()
	return r.runner.Atomic(ctx, fn)
}

// WithUser runs fn holding the user's lock, inside one atomic storage
// scope.
func (r *Registry) WithUser(ctx context.Context, userID int64, fn func(repository.Repos) error) error {
	unlock := r.locks.Lock(userKey(userID))
	defer unlock()
	return r.runner.Atomic(ctx, fn)
}

// LockUser acquires a user's lock for nesting inside WithRide. The caller
// must invoke the returned function to release it.
func (r *Registry) LockUser(userID int64) func() {
	return r.locks.Lock(userKey(userID))
}

// LockUsers acquires two user locks in ascending id order, so concurrent
// sections over the same pair cannot deadlock.
func (r *Registry) LockUsers(a, b int64) func() {
	if a == b {
		return r.LockUser(a)
	}
	if b < a {
		a, b = b, a
	}
	unlockA := r.locks.Lock(userKey(a))
	unlockB := r.locks.Lock(userKey(b))
	return func() {
		unlockB()
		unlockA()
	}
}

// CreateUser persists a new user under no entity lock; the id does not
// exist yet, so nothing can race it.
func (r *Registry) CreateUser(ctx context.Context, user *domain.User) error {
	return r.runner.Repos().Users.Create(ctx, user)
}

// CreateRide persists a new ride the same way.
func (r *Registry) CreateRide(ctx context.Context, ride *domain.Ride) error {
	return r.runner.Repos().Rides.Create(ctx, ride)
}

func rideKey(id int64) string {
	return fmt.Sprintf("ride:%d", id)
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
