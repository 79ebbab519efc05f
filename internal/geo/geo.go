// Package geo provides address resolution, straight-line distance, and map
// imagery URLs. Routing and ETA computation are out of scope; great-circle
// distance is used as the distance proxy.
package geo

import (
	"context"
	"errors"
)

var (
	// ErrUnresolvable is returned when an address does not resolve to
	// coordinates.
	ErrUnresolvable = errors.New("address could not be resolved")

	// ErrUnavailable is returned when the upstream geocoding provider
	// fails or times out. Callers may retry with backoff.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Service resolves addresses and renders map imagery URLs. Distance is a
// pure computation and lives at package level (DistanceKm), not behind the
// provider.
type Service interface {
	// Geocode resolves a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (Point, error)

	// StaticMapURL returns an image URL centered on a point. The core
	// treats the result as an opaque string.
	StaticMapURL(p Point) string

	// RouteMapURL returns an image URL showing both endpoints of a trip.
	RouteMapURL(a, b Point) string
}
