package service

import (
	"context"
	"errors"
	"time"

	"taxi/internal/domain"
	"taxi/internal/geo"
	"taxi/internal/redis"
	"taxi/internal/registry"
	"taxi/internal/repository"
)

// driverLockTTL bounds how long a booking lock can outlive a crashed
// assignment attempt.
const driverLockTTL = 10 * time.Second

// DispatchService orchestrates the ride lifecycle: geocoding, pricing,
// matching, and the driver/rider-initiated transitions. It holds no ride
// state of its own; everything lives in the registry, so the dispatcher is
// trivially restartable.
type DispatchService struct {
	registry  *registry.Registry
	geo       geo.Service
	pricing   *PricingService
	matching  *MatchingService
	machine   *StateMachine
	wallet    *WalletService
	receipts  *ReceiptService
	notifier  NotificationSink
	locations redis.LocationStoreInterface // optional geo index
	locks     redis.LockStoreInterface     // driver booking locks
	clock     Clock
}

// DispatchDeps contains the collaborators of a DispatchService.
type DispatchDeps struct {
	Registry  *registry.Registry
	Geo       geo.Service
	Pricing   *PricingService
	Matching  *MatchingService
	Machine   *StateMachine
	Wallet    *WalletService
	Receipts  *ReceiptService
	Notifier  NotificationSink
	Locations redis.LocationStoreInterface
	Locks     redis.LockStoreInterface
	Clock     Clock
}

// NewDispatchService creates a DispatchService.
func NewDispatchService(deps DispatchDeps) *DispatchService {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Locks == nil {
		deps.Locks = registry.NewDriverLocks()
	}
	return &DispatchService{
		registry:  deps.Registry,
		geo:       deps.Geo,
		pricing:   deps.Pricing,
		matching:  deps.Matching,
		machine:   deps.Machine,
		wallet:    deps.Wallet,
		receipts:  deps.Receipts,
		notifier:  deps.Notifier,
		locations: deps.Locations,
		locks:     deps.Locks,
		clock:     deps.Clock,
	}
}

// PointInput is a trip endpoint given either as coordinates or as a
// free-text address to geocode.
type PointInput struct {
	Lat     float64
	Lng     float64
	Address string
}

// RequestRideInput contains the parameters for requesting a ride.
type RequestRideInput struct {
	RiderID      int64
	Pickup       PointInput
	Dropoff      PointInput
	VehicleClass domain.VehicleClass
}

// RequestRideResult contains the created ride and the matching outcome.
type RequestRideResult struct {
	Ride           *domain.Ride
	DriverAssigned bool
}

// RequestRide prices and creates a ride, then attempts to match a driver.
// All validation and geocoding happens before the ride record exists: a
// failed request creates nothing. A ride with no available driver is not
// an error; it stays in searching and the caller may retry matching by
// having drivers respond.
func (s *DispatchService) RequestRide(ctx context.Context, req RequestRideInput) (*RequestRideResult, error) {
	rider, err := s.registry.Repos().Users.GetByID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if !rider.Active {
		return nil, ErrUserInactive
	}

	if _, ok := domain.VehicleMultiplier(req.VehicleClass); !ok {
		return nil, ErrInvalidVehicleClass
	}

	pickup, err := s.resolvePoint(ctx, req.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := s.resolvePoint(ctx, req.Dropoff)
	if err != nil {
		return nil, err
	}

	distance := geo.DistanceKm(
		geo.Point{Lat: pickup.Lat, Lng: pickup.Lng},
		geo.Point{Lat: dropoff.Lat, Lng: dropoff.Lng},
	)

	price, err := s.pricing.Quote(distance, req.VehicleClass)
	if err != nil {
		return nil, err
	}

	id, err := s.registry.NextRideID(ctx)
	if err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:           id,
		RiderID:      req.RiderID,
		Pickup:       pickup,
		Dropoff:      dropoff,
		VehicleClass: req.VehicleClass,
		DistanceKm:   distance,
		Price:        price,
		Status:       domain.RideStatusSearching,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.registry.CreateRide(ctx, ride); err != nil {
		return nil, err
	}

	s.notify(ctx, ride.RiderID, NotificationRideRequested, map[string]any{
		"ride_id": ride.ID,
		"price":   ride.Price,
	})

	matched, err := s.matchRide(ctx, ride)
	if err != nil {
		if errors.Is(err, ErrNoDriverAvailable) {
			return &RequestRideResult{Ride: ride, DriverAssigned: false}, nil
		}
		return nil, err
	}

	return &RequestRideResult{Ride: matched, DriverAssigned: true}, nil
}

// QuotesResult contains per-class quotes for a prospective trip.
type QuotesResult struct {
	Pickup       domain.Point
	Dropoff      domain.Point
	DistanceKm   float64
	Quotes       map[domain.VehicleClass]float64
	PickupMapURL string
}

// ListVehicleQuotes prices a prospective trip for every vehicle class.
func (s *DispatchService) ListVehicleQuotes(ctx context.Context, pickupIn, dropoffIn PointInput) (*QuotesResult, error) {
	pickup, err := s.resolvePoint(ctx, pickupIn)
	if err != nil {
		return nil, err
	}
	dropoff, err := s.resolvePoint(ctx, dropoffIn)
	if err != nil {
		return nil, err
	}

	distance := geo.DistanceKm(
		geo.Point{Lat: pickup.Lat, Lng: pickup.Lng},
		geo.Point{Lat: dropoff.Lat, Lng: dropoff.Lng},
	)

	quotes, err := s.pricing.QuoteAll(distance)
	if err != nil {
		return nil, err
	}

	var mapURL string
	if s.geo != nil {
		mapURL = s.geo.StaticMapURL(geo.Point{Lat: pickup.Lat, Lng: pickup.Lng})
	}

	return &QuotesResult{
		Pickup:       pickup,
		Dropoff:      dropoff,
		DistanceKm:   distance,
		Quotes:       quotes,
		PickupMapURL: mapURL,
	}, nil
}

// ActivateDriver marks a driver available at the given location.
func (s *DispatchService) ActivateDriver(ctx context.Context, driverID int64, lat, lng float64) (*domain.User, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}

	var updated *domain.User
	err := s.registry.WithUser(ctx, driverID, func(repos repository.Repos) error {
		driver, err := repos.Users.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !driver.IsDriver() {
			return ErrNotDriver
		}
		if !driver.Active {
			return ErrUserInactive
		}

		driver.Available = true
		driver.Lat = lat
		driver.Lng = lng
		if err := repos.Users.Update(ctx, driver); err != nil {
			return err
		}

		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.locations != nil {
		_ = s.locations.UpdateLocation(ctx, driverID, lat, lng)
	}

	return updated, nil
}

// DeactivateDriver takes a driver out of the matching pool.
func (s *DispatchService) DeactivateDriver(ctx context.Context, driverID int64) (*domain.User, error) {
	var updated *domain.User
	err := s.registry.WithUser(ctx, driverID, func(repos repository.Repos) error {
		driver, err := repos.Users.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !driver.IsDriver() {
			return ErrNotDriver
		}

		driver.Available = false
		if err := repos.Users.Update(ctx, driver); err != nil {
			return err
		}

		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.locations != nil {
		_ = s.locations.RemoveLocation(ctx, driverID)
	}

	return updated, nil
}

// DriverRespond handles a driver's answer to a searching ride. A decline
// has no side effects: the ride stays in searching and the driver stays
// available.
func (s *DispatchService) DriverRespond(ctx context.Context, driverID, rideID int64, accept bool) (*domain.Ride, error) {
	driver, err := s.registry.Repos().Users.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsDriver() {
		return nil, ErrNotDriver
	}

	if !accept {
		return s.registry.Repos().Rides.GetByID(ctx, rideID)
	}

	return s.acceptWithLock(ctx, rideID, driverID)
}

// AdvanceRide applies a driver-initiated progress event. The departed
// event is informational: it notifies the rider without changing status.
func (s *DispatchService) AdvanceRide(ctx context.Context, actorID, rideID int64, event domain.RideEvent) (*domain.Ride, error) {
	var out *domain.Ride
	var receiptRide *domain.Ride

	err := s.registry.WithRide(ctx, rideID, func(repos repository.Repos) error {
		ride, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		// Progress events belong to the committed driver.
		if actorID != ride.DriverID {
			return ErrUnauthorized
		}

		if err := s.machine.Apply(ride, event); err != nil {
			return err
		}

		if event == domain.EventCompleted {
			unlock := s.registry.LockUsers(ride.RiderID, ride.DriverID)
			defer unlock()

			if err := s.wallet.settleRide(ctx, repos, ride); err != nil {
				return err
			}
			receiptRide = ride
		}

		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}

		out = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch event {
	case domain.EventDeparted:
		s.notify(ctx, out.RiderID, NotificationDriverDeparted, map[string]any{"ride_id": out.ID})
	case domain.EventStarted:
		s.notify(ctx, out.RiderID, NotificationTripStarted, map[string]any{"ride_id": out.ID})
	case domain.EventCompleted:
		s.notify(ctx, out.RiderID, NotificationTripCompleted, map[string]any{"ride_id": out.ID, "price": out.Price})
		s.notify(ctx, out.DriverID, NotificationTripCompleted, map[string]any{"ride_id": out.ID, "price": out.Price})
	}

	if receiptRide != nil && s.receipts != nil {
		s.receipts.Generate(ctx, receiptRide)
	}

	return out, nil
}

// CancelRide cancels a searching or accepted ride on behalf of a party to
// it. Cancelling an accepted ride returns the driver to the pool.
func (s *DispatchService) CancelRide(ctx context.Context, actorID, rideID int64) (*domain.Ride, error) {
	var out *domain.Ride
	var notifyID int64

	err := s.registry.WithRide(ctx, rideID, func(repos repository.Repos) error {
		ride, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if actorID != ride.RiderID && actorID != ride.DriverID {
			return ErrUnauthorized
		}

		hadDriver := ride.Status == domain.RideStatusAccepted
		driverID := ride.DriverID

		if err := s.machine.Apply(ride, domain.EventCancelled); err != nil {
			return err
		}

		if hadDriver {
			unlock := s.registry.LockUser(driverID)
			defer unlock()

			driver, err := repos.Users.GetByID(ctx, driverID)
			if err != nil {
				return err
			}
			driver.Available = true
			if err := repos.Users.Update(ctx, driver); err != nil {
				return err
			}

			// A cancelled ride carries no driver; the booking is undone.
			ride.DriverID = 0
		}

		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}

		// Notify the other party, if any.
		if actorID == ride.RiderID {
			notifyID = driverID
		} else {
			notifyID = ride.RiderID
		}

		out = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notifyID != 0 {
		s.notify(ctx, notifyID, NotificationRideCancelled, map[string]any{
			"ride_id":      out.ID,
			"cancelled_by": actorID,
		})
	}

	return out, nil
}

// RateRide records the rider's rating for a completed ride, exactly once,
// and folds it into the driver's running average.
func (s *DispatchService) RateRide(ctx context.Context, riderID, rideID int64, stars int) (*domain.Ride, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}

	var out *domain.Ride
	err := s.registry.WithRide(ctx, rideID, func(repos repository.Repos) error {
		ride, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if riderID != ride.RiderID {
			return ErrUnauthorized
		}
		if ride.Status != domain.RideStatusCompleted {
			return ErrRideNotCompleted
		}
		if ride.Rating != 0 {
			return ErrAlreadyRated
		}

		ride.Rating = stars
		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}

		unlock := s.registry.LockUser(ride.DriverID)
		defer unlock()

		driver, err := repos.Users.GetByID(ctx, ride.DriverID)
		if err != nil {
			return err
		}
		total := driver.Rating*float64(driver.RatedRides) + float64(stars)
		driver.RatedRides++
		driver.Rating = total / float64(driver.RatedRides)
		if err := repos.Users.Update(ctx, driver); err != nil {
			return err
		}

		out = ride
		return nil
	})
	return out, err
}

// GetRide retrieves a ride by ID.
func (s *DispatchService) GetRide(ctx context.Context, rideID int64) (*domain.Ride, error) {
	return s.registry.Repos().Rides.GetByID(ctx, rideID)
}

// matchRide scans a snapshot of available drivers in policy order and
// commits the first one that survives the booking lock and availability
// re-check. The snapshot can be stale by the time a candidate is locked,
// so availability is always re-verified inside the critical section.
func (s *DispatchService) matchRide(ctx context.Context, ride *domain.Ride) (*domain.Ride, error) {
	pool, err := s.registry.Repos().Users.AvailableDrivers(ctx)
	if err != nil {
		return nil, err
	}

	for _, candidate := range s.matching.Candidates(ctx, ride.Pickup, pool) {
		if !candidate.Available || !candidate.Active {
			continue
		}

		matched, err := s.acceptWithLock(ctx, ride.ID, candidate.ID)
		if err != nil {
			if errors.Is(err, ErrDriverUnavailable) {
				// Lost the driver to a concurrent assignment; try the next.
				continue
			}
			return nil, err
		}
		return matched, nil
	}

	return nil, ErrNoDriverAvailable
}

// acceptWithLock acquires the driver's booking lock, commits the
// searching -> accepted transition, and releases the lock.
func (s *DispatchService) acceptWithLock(ctx context.Context, rideID, driverID int64) (*domain.Ride, error) {
	locked, err := s.locks.AcquireDriverLock(ctx, driverID, driverLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		// Another assignment is in flight for this driver.
		return nil, ErrDriverUnavailable
	}
	defer func() {
		_ = s.locks.ReleaseDriverLock(ctx, driverID)
	}()

	return s.commitAccept(ctx, rideID, driverID)
}

// commitAccept performs the accept transition atomically: set the driver,
// stamp accepted_at, and mark the driver unavailable, all inside the
// ride's critical section. The availability re-check under the driver's
// lock is what makes double-booking impossible.
func (s *DispatchService) commitAccept(ctx context.Context, rideID, driverID int64) (*domain.Ride, error) {
	var out *domain.Ride
	err := s.registry.WithRide(ctx, rideID, func(repos repository.Repos) error {
		ride, err := repos.Rides.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		unlock := s.registry.LockUser(driverID)
		defer unlock()

		driver, err := repos.Users.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !driver.IsDriver() {
			return ErrNotDriver
		}
		if !driver.Available || !driver.Active {
			return ErrDriverUnavailable
		}

		ride.DriverID = driverID
		if err := s.machine.Apply(ride, domain.EventDriverMatched); err != nil {
			ride.DriverID = 0
			return err
		}

		driver.Available = false
		if err := repos.Users.Update(ctx, driver); err != nil {
			return err
		}
		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}

		out = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, out.RiderID, NotificationDriverAssigned, map[string]any{
		"ride_id":   out.ID,
		"driver_id": driverID,
	})
	s.notify(ctx, driverID, NotificationDriverAssigned, map[string]any{
		"ride_id":  out.ID,
		"rider_id": out.RiderID,
	})

	return out, nil
}

// resolvePoint turns a PointInput into coordinates, geocoding the address
// when no coordinates were supplied.
func (s *DispatchService) resolvePoint(ctx context.Context, in PointInput) (domain.Point, error) {
	if in.Lat == 0 && in.Lng == 0 && in.Address != "" {
		if s.geo == nil {
			return domain.Point{}, ErrGeoUnavailable
		}
		p, err := s.geo.Geocode(ctx, in.Address)
		if err != nil {
			switch {
			case errors.Is(err, geo.ErrUnresolvable):
				return domain.Point{}, ErrUnresolvableAddress
			default:
				return domain.Point{}, ErrGeoUnavailable
			}
		}
		return domain.Point{Lat: p.Lat, Lng: p.Lng, Address: in.Address}, nil
	}

	if !isValidLatitude(in.Lat) || !isValidLongitude(in.Lng) {
		return domain.Point{}, ErrInvalidLocation
	}
	if in.Lat == 0 && in.Lng == 0 {
		return domain.Point{}, ErrInvalidLocation
	}

	return domain.Point{Lat: in.Lat, Lng: in.Lng, Address: in.Address}, nil
}

// notify delivers an event without blocking the caller on failures; the
// sink itself is fire-and-forget.
func (s *DispatchService) notify(ctx context.Context, userID int64, event NotificationEvent, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, event, payload)
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
