package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for driver location
// operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID int64, lat, lng float64) error
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID int64) error
}

// LockStoreInterface defines the interface for distributed booking locks.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID int64, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID int64) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
