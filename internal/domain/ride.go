package domain

import "time"

// RideStatus represents the current lifecycle state of a ride.
type RideStatus string

const (
	RideStatusSearching  RideStatus = "searching"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RideEvent is an action that advances a ride through its lifecycle.
type RideEvent string

const (
	// EventDriverMatched commits a driver to a searching ride.
	EventDriverMatched RideEvent = "driver_matched"
	// EventDeparted is informational: the driver is on the way to pickup.
	// It never changes the ride status.
	EventDeparted RideEvent = "departed"
	// EventStarted marks the trip as underway.
	EventStarted RideEvent = "started"
	// EventCompleted finishes the trip.
	EventCompleted RideEvent = "completed"
	// EventCancelled aborts a searching or accepted ride.
	EventCancelled RideEvent = "cancelled"
)

// Point is a geographic position with an optional human-readable address.
type Point struct {
	Lat     float64
	Lng     float64
	Address string
}

// Ride represents one trip request.
//
// Invariants, maintained by the state machine and the dispatcher:
//   - DriverID is non-zero iff Status is accepted, in_progress, or completed.
//   - Price is fixed at creation time and never recomputed.
//   - Each timestamp is set exactly once, and they strictly increase.
type Ride struct {
	ID           int64
	RiderID      int64
	DriverID     int64 // 0 until a driver is matched
	Pickup       Point
	Dropoff      Point
	VehicleClass VehicleClass
	DistanceKm   float64
	Price        float64
	Status       RideStatus
	Rating       int // 1..5 once rated, 0 otherwise

	CreatedAt   time.Time
	AcceptedAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	CancelledAt time.Time
}
