package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// RideRepository is an in-memory implementation of repository.RideRepository.
type RideRepository struct {
	mu     sync.RWMutex
	rides  map[int64]*domain.Ride
	nextID int64
}

// NewRideRepository creates an empty in-memory ride repository.
func NewRideRepository() *RideRepository {
	return &RideRepository{rides: make(map[int64]*domain.Ride)}
}

// NextID issues a strictly increasing ride identifier, starting at 1.
func (r *RideRepository) NextID(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&r.nextID, 1), nil
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *ride
	r.rides[ride.ID] = &stored
	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ride, ok := r.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *ride
	return &out, nil
}

// GetAll retrieves all rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(r.rides))
	for _, ride := range r.rides {
		out := *ride
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *ride
	r.rides[ride.ID] = &stored
	return nil
}

var _ repository.RideRepository = (*RideRepository)(nil)
