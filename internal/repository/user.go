package repository

import (
	"context"

	"taxi/internal/domain"
)

// UserRepository defines the persistence operations for users (riders,
// drivers, admins).
type UserRepository interface {
	// Create persists a new user and assigns its identifier.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// AvailableDrivers returns a snapshot of active drivers currently
	// marked available.
	AvailableDrivers(ctx context.Context) ([]*domain.User, error)
}
