// Package memory provides in-memory repository implementations. They back
// the registry when no database is configured and are the storage used by
// the test suites.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// UserRepository is an in-memory implementation of repository.UserRepository.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	nextID int64
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*domain.User)}
}

// Create persists a new user and assigns its identifier.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = atomic.AddInt64(&r.nextID, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy so callers cannot mutate the store directly.
	out := *user
	return &out, nil
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Phone == phone {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out := *u
		result = append(result, &out)
	}
	return result, nil
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// AvailableDrivers returns a snapshot of active drivers marked available,
// ordered by ascending ID so pool iteration order is deterministic.
func (r *UserRepository) AvailableDrivers(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var maxID int64
	for id := range r.users {
		if id > maxID {
			maxID = id
		}
	}

	var result []*domain.User
	for id := int64(1); id <= maxID; id++ {
		u, ok := r.users[id]
		if !ok || !u.IsDriver() || !u.Active || !u.Available {
			continue
		}
		out := *u
		result = append(result, &out)
	}
	return result, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
