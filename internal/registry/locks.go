package registry

import (
	"context"
	"sync"
	"time"
)

// DriverLocks is an in-process booking lock map with the same acquire and
// release semantics as the Redis lock store, for single-node deployments
// and tests.
type DriverLocks struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

// NewDriverLocks creates an empty lock map.
func NewDriverLocks() *DriverLocks {
	return &DriverLocks{held: make(map[int64]struct{})}
}

// AcquireDriverLock attempts to acquire the booking lock for a driver.
// Returns true if acquired, false if already held. The TTL is ignored;
// in-process locks are always released explicitly.
func (l *DriverLocks) AcquireDriverLock(ctx context.Context, driverID int64, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[driverID]; ok {
		return false, nil
	}
	l.held[driverID] = struct{}{}
	return true, nil
}

// ReleaseDriverLock releases the booking lock for a driver.
func (l *DriverLocks) ReleaseDriverLock(ctx context.Context, driverID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, driverID)
	return nil
}
