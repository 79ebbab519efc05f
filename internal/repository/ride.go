package repository

import (
	"context"

	"taxi/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// NextID issues a strictly increasing ride identifier, starting at 1.
	NextID(ctx context.Context) (int64, error)

	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id int64) (*domain.Ride, error)

	// GetAll retrieves all rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error
}
