package service

import (
	"time"

	"taxi/internal/domain"
)

// Clock abstracts time so the lifecycle tests can control it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// rideTransitions is the lifecycle transition table. A missing edge means
// the event is rejected with ErrInvalidTransition. Terminal states have no
// entries: they are guarded separately and rejected with ErrAlreadyTerminal.
var rideTransitions = map[domain.RideStatus]map[domain.RideEvent]domain.RideStatus{
	domain.RideStatusSearching: {
		domain.EventDriverMatched: domain.RideStatusAccepted,
		domain.EventCancelled:     domain.RideStatusCancelled,
	},
	domain.RideStatusAccepted: {
		domain.EventDeparted:  domain.RideStatusAccepted, // informational, no status change
		domain.EventStarted:   domain.RideStatusInProgress,
		domain.EventCancelled: domain.RideStatusCancelled,
	},
	domain.RideStatusInProgress: {
		domain.EventCompleted: domain.RideStatusCompleted,
	},
}

// StateMachine owns a ride's lifecycle: it validates transitions and stamps
// the lifecycle timestamps. Side effects beyond the ride itself (driver
// availability, balance movement) belong to the dispatcher, which performs
// them atomically with the transition.
type StateMachine struct {
	clock Clock
}

// NewStateMachine creates a StateMachine using the given clock.
func NewStateMachine(clock Clock) *StateMachine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StateMachine{clock: clock}
}

// Apply advances the ride by one event. On rejection the ride is left
// completely unchanged.
func (m *StateMachine) Apply(ride *domain.Ride, event domain.RideEvent) error {
	if ride.Status.Terminal() {
		return ErrAlreadyTerminal
	}

	next, ok := rideTransitions[ride.Status][event]
	if !ok {
		return ErrInvalidTransition
	}

	// Guard: a trip cannot start without a committed driver.
	if event == domain.EventStarted && ride.DriverID == 0 {
		return ErrInvalidTransition
	}

	now := m.clock.Now()

	switch event {
	case domain.EventDriverMatched:
		ride.AcceptedAt = now
	case domain.EventStarted:
		ride.StartedAt = now
	case domain.EventCompleted:
		ride.CompletedAt = now
	case domain.EventCancelled:
		ride.CancelledAt = now
	}

	ride.Status = next
	return nil
}

// ParseRideEvent maps a caller-facing event name to a RideEvent. Only the
// driver-initiated progress events are exposed here; matching and
// cancellation have dedicated operations.
func ParseRideEvent(s string) (domain.RideEvent, error) {
	switch domain.RideEvent(s) {
	case domain.EventDeparted, domain.EventStarted, domain.EventCompleted:
		return domain.RideEvent(s), nil
	default:
		return "", ErrInvalidEvent
	}
}
