package domain

import "time"

// Receipt summarizes a completed ride for the rider.
type Receipt struct {
	ID           string
	RideID       int64
	RiderID      int64
	DriverID     int64
	VehicleClass VehicleClass
	DistanceKm   float64
	Price        float64
	RouteMapURL  string
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	CreatedAt    time.Time
}
