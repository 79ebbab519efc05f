package service

import (
	"context"
	"sort"

	"taxi/internal/domain"
	"taxi/internal/geo"
	"taxi/internal/redis"
)

// SelectionPolicy orders a candidate driver pool before the scan. It is a
// first-class, swappable policy: the matcher itself only takes the first
// available driver in the order the policy produces.
type SelectionPolicy interface {
	Order(ctx context.Context, pickup domain.Point, pool []*domain.User) []*domain.User
}

// PoolOrder keeps the pool's own iteration order.
type PoolOrder struct{}

// Order returns the pool unchanged.
func (PoolOrder) Order(ctx context.Context, pickup domain.Point, pool []*domain.User) []*domain.User {
	return pool
}

// NearestFirst sorts the pool by great-circle distance to the pickup point.
type NearestFirst struct{}

// Order returns a copy of the pool sorted nearest first. Ties keep the
// pool's relative order.
func (NearestFirst) Order(ctx context.Context, pickup domain.Point, pool []*domain.User) []*domain.User {
	ordered := make([]*domain.User, len(pool))
	copy(ordered, pool)

	p := geo.Point{Lat: pickup.Lat, Lng: pickup.Lng}
	sort.SliceStable(ordered, func(i, j int) bool {
		di := geo.DistanceKm(p, geo.Point{Lat: ordered[i].Lat, Lng: ordered[i].Lng})
		dj := geo.DistanceKm(p, geo.Point{Lat: ordered[j].Lat, Lng: ordered[j].Lng})
		return di < dj
	})
	return ordered
}

// GeoIndexNearest orders the pool by the Redis GEO index ranking around the
// pickup point. Drivers missing from the index sort after indexed ones in
// pool order; if the index is unreachable the whole pool falls back to
// haversine ordering.
type GeoIndexNearest struct {
	Locations redis.LocationStoreInterface
	RadiusKm  float64
}

// Order returns the pool reordered by index proximity.
func (g GeoIndexNearest) Order(ctx context.Context, pickup domain.Point, pool []*domain.User) []*domain.User {
	radius := g.RadiusKm
	if radius <= 0 {
		radius = 10.0
	}

	nearby, err := g.Locations.FindNearbyDrivers(ctx, pickup.Lat, pickup.Lng, radius)
	if err != nil {
		return NearestFirst{}.Order(ctx, pickup, pool)
	}

	rank := make(map[int64]int, len(nearby))
	for i, loc := range nearby {
		rank[loc.DriverID] = i
	}

	ordered := make([]*domain.User, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iOK := rank[ordered[i].ID]
		rj, jOK := rank[ordered[j].ID]
		if iOK != jOK {
			return iOK // indexed drivers first
		}
		return ri < rj
	})
	return ordered
}

// MatchingService selects a driver for a searching ride. It is
// side-effect-free: marking the chosen driver unavailable is the caller's
// responsibility, performed atomically with the ride transition.
type MatchingService struct {
	policy SelectionPolicy
}

// NewMatchingService creates a MatchingService with the given policy.
func NewMatchingService(policy SelectionPolicy) *MatchingService {
	if policy == nil {
		policy = PoolOrder{}
	}
	return &MatchingService{policy: policy}
}

// Candidates returns the pool in selection order.
func (s *MatchingService) Candidates(ctx context.Context, pickup domain.Point, pool []*domain.User) []*domain.User {
	return s.policy.Order(ctx, pickup, pool)
}

// FindDriver returns the id of the first available driver in selection
// order, or ErrNoDriverAvailable.
func (s *MatchingService) FindDriver(ctx context.Context, pickup domain.Point, pool []*domain.User) (int64, error) {
	for _, driver := range s.Candidates(ctx, pickup, pool) {
		if driver.Available && driver.Active {
			return driver.ID, nil
		}
	}
	return 0, ErrNoDriverAvailable
}
