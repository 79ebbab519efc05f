package service

import "errors"

var (
	// ErrInvalidVehicleClass is returned when a vehicle class is not in
	// the catalog.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")

	// ErrInvalidDistance is returned when a trip distance is not positive.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidTransition is returned when an event arrives for a state
	// that has no outgoing edge for it.
	ErrInvalidTransition = errors.New("invalid ride state transition")

	// ErrAlreadyTerminal is returned when an event arrives for a
	// completed or cancelled ride. The ride is left unchanged; this is
	// reported, never silently ignored, so callers can distinguish
	// "already done" from "succeeded".
	ErrAlreadyTerminal = errors.New("ride already in terminal state")

	// ErrUnauthorized is returned when the acting user is not a party to
	// the ride.
	ErrUnauthorized = errors.New("actor is not a party to this ride")

	// ErrNoDriverAvailable is returned when no driver can be matched.
	// Non-fatal: the ride stays in searching and the caller may retry.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrGeoUnavailable is returned when geocoding fails or times out.
	// Recoverable: the caller may retry with backoff; no ride state is
	// mutated.
	ErrGeoUnavailable = errors.New("geocoding unavailable")

	// ErrUnresolvableAddress is returned when an address does not resolve
	// to coordinates. Rejected before any mutation.
	ErrUnresolvableAddress = errors.New("address could not be resolved")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidEvent is returned for an unknown ride event name.
	ErrInvalidEvent = errors.New("invalid ride event")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrAlreadyRated is returned when a ride already has a rating.
	ErrAlreadyRated = errors.New("ride already rated")

	// ErrRideNotCompleted is returned when rating a ride that has not
	// completed.
	ErrRideNotCompleted = errors.New("ride not completed")

	// ErrInvalidAmount is returned when a deposit or withdrawal amount is
	// not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// balance. Ride debits are exempt; see the dispatcher.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotDriver is returned when a driver operation targets a user
	// without the driver role.
	ErrNotDriver = errors.New("user is not a driver")

	// ErrDriverUnavailable is returned when committing a driver who is no
	// longer available.
	ErrDriverUnavailable = errors.New("driver is not available")

	// ErrUserInactive is returned when a deactivated user initiates an
	// operation.
	ErrUserInactive = errors.New("user is deactivated")

	// ErrInvalidRole is returned when registering with an unknown role.
	ErrInvalidRole = errors.New("invalid role")
)
