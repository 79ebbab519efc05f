package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const driverLocationKey = "drivers:locations"

// DriverLocation represents a driver's position.
type DriverLocation struct {
	DriverID int64
	Lat      float64
	Lng      float64
}

// LocationStore handles driver location operations in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID int64, lat, lng float64) error {
	return s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(driverID, 10),
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyDrivers returns drivers within the given radius in kilometres,
// nearest first.
func (s *LocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error) {
	results, err := s.client.GeoRadius(ctx, driverLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]DriverLocation, 0, len(results))
	for _, r := range results {
		id, err := strconv.ParseInt(r.Name, 10, 64)
		if err != nil {
			// Skip entries written by an incompatible producer.
			continue
		}
		locations = append(locations, DriverLocation{
			DriverID: id,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}

	return locations, nil
}

// RemoveLocation removes a driver's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID int64) error {
	return s.client.ZRem(ctx, driverLocationKey, strconv.FormatInt(driverID, 10)).Err()
}
