package tests

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"taxi/internal/domain"
	"taxi/internal/geo"
	"taxi/internal/registry"
	"taxi/internal/repository/memory"
	"taxi/internal/service"
)

// fixture wires a full dispatch stack over in-memory storage.
type fixture struct {
	reg      *registry.Registry
	dispatch *service.DispatchService
	wallet   *service.WalletService
	geo      *MockGeo
	sink     *RecorderSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg := registry.New(memory.NewStore())
	mockGeo := NewMockGeo()
	sink := NewRecorderSink()

	pricing := service.NewPricingService(service.DefaultBaseRatePerKm)
	wallet := service.NewWalletService(reg, nil)
	dispatch := service.NewDispatchService(service.DispatchDeps{
		Registry: reg,
		Geo:      mockGeo,
		Pricing:  pricing,
		Matching: service.NewMatchingService(service.NearestFirst{}),
		Machine:  service.NewStateMachine(nil),
		Wallet:   wallet,
		Receipts: service.NewReceiptService(mockGeo, sink, nil),
		Notifier: sink,
		Locks:    registry.NewDriverLocks(),
	})

	return &fixture{reg: reg, dispatch: dispatch, wallet: wallet, geo: mockGeo, sink: sink}
}

var phoneSeq int64

func nextPhone() string {
	return fmt.Sprintf("+2010%08d", atomic.AddInt64(&phoneSeq, 1))
}

func (f *fixture) addRider(t *testing.T, balance float64) int64 {
	t.Helper()

	user := &domain.User{
		FullName: "Rider",
		Phone:    nextPhone(),
		Role:     domain.RoleRider,
		Rating:   domain.DefaultRating,
		Active:   true,
	}
	if err := f.reg.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create rider: %v", err)
	}
	if balance > 0 {
		if _, err := f.wallet.Deposit(context.Background(), user.ID, balance); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	return user.ID
}

func (f *fixture) addDriver(t *testing.T, lat, lng float64) int64 {
	t.Helper()

	user := &domain.User{
		FullName: "Driver",
		Phone:    nextPhone(),
		Role:     domain.RoleDriver,
		Rating:   domain.DefaultRating,
		Active:   true,
	}
	if err := f.reg.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	if _, err := f.dispatch.ActivateDriver(context.Background(), user.ID, lat, lng); err != nil {
		t.Fatalf("activate driver: %v", err)
	}
	return user.ID
}

func (f *fixture) getUser(t *testing.T, id int64) *domain.User {
	t.Helper()
	user, err := f.reg.Repos().Users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	return user
}

var (
	downtownPickup  = service.PointInput{Lat: 30.0444, Lng: 31.2357}
	downtownDropoff = service.PointInput{Lat: 30.0566, Lng: 31.2411}
)

// ──────────────────────────────────────────────
// 1. FULL RIDE LIFECYCLE
// ──────────────────────────────────────────────

func TestDispatch_FullLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	riderID := f.addRider(t, 20)
	driverID := f.addDriver(t, 30.0450, 31.2360)

	result, err := f.dispatch.RequestRide(ctx, service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if !result.DriverAssigned {
		t.Fatal("expected a driver to be assigned")
	}

	ride := result.Ride
	if ride.ID != 1 {
		t.Errorf("expected first ride id 1, got %d", ride.ID)
	}
	if ride.Status != domain.RideStatusAccepted {
		t.Fatalf("expected status accepted, got %s", ride.Status)
	}
	if ride.DriverID != driverID {
		t.Fatalf("expected driver %d, got %d", driverID, ride.DriverID)
	}

	// Price is the haversine distance times base rate times class multiplier.
	const wantPrice = 0.7263670396121858
	if math.Abs(ride.Price-wantPrice) > 1e-12 {
		t.Errorf("expected price %v, got %v", wantPrice, ride.Price)
	}

	// The matched driver leaves the pool.
	if f.getUser(t, driverID).Available {
		t.Error("expected matched driver to be unavailable")
	}

	// departed is informational only.
	ride, err = f.dispatch.AdvanceRide(ctx, driverID, ride.ID, domain.EventDeparted)
	if err != nil {
		t.Fatalf("departed: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected status accepted after departed, got %s", ride.Status)
	}
	if f.sink.CountFor(riderID, service.NotificationDriverDeparted) != 1 {
		t.Error("expected rider to be told the driver departed")
	}

	ride, err = f.dispatch.AdvanceRide(ctx, driverID, ride.ID, domain.EventStarted)
	if err != nil {
		t.Fatalf("started: %v", err)
	}
	if ride.Status != domain.RideStatusInProgress {
		t.Fatalf("expected in_progress, got %s", ride.Status)
	}

	ride, err = f.dispatch.AdvanceRide(ctx, driverID, ride.ID, domain.EventCompleted)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Fatalf("expected completed, got %s", ride.Status)
	}

	// Fare moved from rider to driver, at the price fixed on creation.
	rider := f.getUser(t, riderID)
	driver := f.getUser(t, driverID)
	if math.Abs(rider.Balance-(20-wantPrice)) > 1e-9 {
		t.Errorf("expected rider balance %v, got %v", 20-wantPrice, rider.Balance)
	}
	if math.Abs(driver.Balance-wantPrice) > 1e-9 {
		t.Errorf("expected driver balance %v, got %v", wantPrice, driver.Balance)
	}

	// Both sides have a ledger entry for the ride.
	riderTxns, err := f.wallet.Statement(ctx, riderID)
	if err != nil {
		t.Fatalf("rider statement: %v", err)
	}
	var sawPayment bool
	for _, txn := range riderTxns {
		if txn.Type == domain.TransactionPayment {
			sawPayment = true
		}
	}
	if !sawPayment {
		t.Error("expected a payment entry in the rider's ledger")
	}

	if f.sink.CountFor(riderID, service.NotificationReceiptReady) != 1 {
		t.Error("expected a receipt notification for the rider")
	}
}

// ──────────────────────────────────────────────
// 2. REQUEST EDGE CASES
// ──────────────────────────────────────────────

func TestDispatch_NoDriver_RideKeepsSearching(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	if result.DriverAssigned {
		t.Fatal("expected no driver assignment")
	}
	if result.Ride.Status != domain.RideStatusSearching {
		t.Errorf("expected searching, got %s", result.Ride.Status)
	}
	if result.Ride.DriverID != 0 {
		t.Errorf("expected no driver id, got %d", result.Ride.DriverID)
	}
}

func TestDispatch_UnresolvableDropoff_NoRideCreated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	f.geo.AddAddress("Tahrir Square", geo.Point{Lat: 30.0444, Lng: 31.2357})

	_, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       service.PointInput{Address: "Tahrir Square"},
		Dropoff:      service.PointInput{Address: "no such place"},
		VehicleClass: domain.VehicleEconomy,
	})
	if !errors.Is(err, service.ErrUnresolvableAddress) {
		t.Fatalf("expected ErrUnresolvableAddress, got: %v", err)
	}

	// Nothing was created and no id was burned visibly.
	if _, err := f.dispatch.GetRide(context.Background(), 1); err == nil {
		t.Error("expected no ride to exist")
	}
}

func TestDispatch_GeocoderDown_NoRideCreated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	f.geo.GeocodeError = geo.ErrUnavailable

	_, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       service.PointInput{Address: "Tahrir Square"},
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if !errors.Is(err, service.ErrGeoUnavailable) {
		t.Fatalf("expected ErrGeoUnavailable, got: %v", err)
	}
}

func TestDispatch_UnknownVehicleClass_Rejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)

	_, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleClass("limousine"),
	})
	if !errors.Is(err, service.ErrInvalidVehicleClass) {
		t.Fatalf("expected ErrInvalidVehicleClass, got: %v", err)
	}
}

func TestDispatch_GeocodedAddressRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	f.addDriver(t, 30.0450, 31.2360)
	f.geo.AddAddress("Tahrir Square", geo.Point{Lat: 30.0444, Lng: 31.2357})
	f.geo.AddAddress("Cairo Tower", geo.Point{Lat: 30.0566, Lng: 31.2411})

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       service.PointInput{Address: "Tahrir Square"},
		Dropoff:      service.PointInput{Address: "Cairo Tower"},
		VehicleClass: domain.VehicleBusiness,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	if result.Ride.Pickup.Address != "Tahrir Square" {
		t.Errorf("expected pickup address preserved, got %q", result.Ride.Pickup.Address)
	}
	const wantPrice = 1.4527340792243717 // business = distance * 0.5 * 2.0
	if math.Abs(result.Ride.Price-wantPrice) > 1e-12 {
		t.Errorf("expected price %v, got %v", wantPrice, result.Ride.Price)
	}
}

// ──────────────────────────────────────────────
// 3. DRIVER RESPONSES
// ──────────────────────────────────────────────

func TestDispatch_Decline_IsANoOp(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	driverID := f.addDriver(t, 30.0450, 31.2360)

	ride, err := f.dispatch.DriverRespond(context.Background(), driverID, result.Ride.ID, false)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if ride.Status != domain.RideStatusSearching {
		t.Errorf("expected ride still searching, got %s", ride.Status)
	}
	if !f.getUser(t, driverID).Available {
		t.Error("expected declining driver to stay available")
	}

	// The same driver can still accept afterwards.
	ride, err = f.dispatch.DriverRespond(context.Background(), driverID, result.Ride.ID, true)
	if err != nil {
		t.Fatalf("accept after decline: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected accepted, got %s", ride.Status)
	}
}

func TestDispatch_AcceptTerminalRide_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if _, err := f.dispatch.CancelRide(context.Background(), riderID, result.Ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	driverID := f.addDriver(t, 30.0450, 31.2360)
	_, err = f.dispatch.DriverRespond(context.Background(), driverID, result.Ride.ID, true)
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. CANCELLATION
// ──────────────────────────────────────────────

func TestDispatch_CancelAccepted_FreesDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	driverID := f.addDriver(t, 30.0450, 31.2360)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if !result.DriverAssigned {
		t.Fatal("expected assignment")
	}

	ride, err := f.dispatch.CancelRide(context.Background(), riderID, result.Ride.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ride.Status != domain.RideStatusCancelled {
		t.Fatalf("expected cancelled, got %s", ride.Status)
	}
	if ride.DriverID != 0 {
		t.Errorf("expected cancelled ride to carry no driver, got %d", ride.DriverID)
	}
	if !f.getUser(t, driverID).Available {
		t.Error("expected driver returned to the pool")
	}
	if f.sink.CountFor(driverID, service.NotificationRideCancelled) != 1 {
		t.Error("expected the driver to be told about the cancellation")
	}

	// No money moved.
	if f.getUser(t, riderID).Balance != 20 {
		t.Errorf("expected untouched balance, got %v", f.getUser(t, riderID).Balance)
	}
}

func TestDispatch_CancelByStranger_Unauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	strangerID := f.addRider(t, 0)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	_, err = f.dispatch.CancelRide(context.Background(), strangerID, result.Ride.ID)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestDispatch_CancelTwice_ReportsAlreadyTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	if _, err := f.dispatch.CancelRide(context.Background(), riderID, result.Ride.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err = f.dispatch.CancelRide(context.Background(), riderID, result.Ride.ID)
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got: %v", err)
	}
}

// assertDriverIDMatchesStatus checks that a ride carries a driver id
// exactly when its status says a driver is committed.
func assertDriverIDMatchesStatus(t *testing.T, ride *domain.Ride) {
	t.Helper()

	switch ride.Status {
	case domain.RideStatusAccepted, domain.RideStatusInProgress, domain.RideStatusCompleted:
		if ride.DriverID == 0 {
			t.Errorf("status %s but no driver id", ride.Status)
		}
	default:
		if ride.DriverID != 0 {
			t.Errorf("status %s but driver id %d (must be 0)", ride.Status, ride.DriverID)
		}
	}
}

func TestDispatch_DriverIDMatchesStatusAfterEveryTransition(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// Completed path: searching -> accepted -> in_progress -> completed.
	riderID := f.addRider(t, 20)
	driverID := f.addDriver(t, 30.0450, 31.2360)

	if _, err := f.dispatch.DeactivateDriver(ctx, driverID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	result, err := f.dispatch.RequestRide(ctx, service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	assertDriverIDMatchesStatus(t, result.Ride)

	if _, err := f.dispatch.ActivateDriver(ctx, driverID, 30.0450, 31.2360); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ride, err := f.dispatch.DriverRespond(ctx, driverID, result.Ride.ID, true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	assertDriverIDMatchesStatus(t, ride)

	for _, event := range []domain.RideEvent{domain.EventStarted, domain.EventCompleted} {
		ride, err = f.dispatch.AdvanceRide(ctx, driverID, ride.ID, event)
		if err != nil {
			t.Fatalf("%s: %v", event, err)
		}
		assertDriverIDMatchesStatus(t, ride)
	}

	// Cancelled paths: from searching and from accepted.
	if _, err := f.dispatch.ActivateDriver(ctx, driverID, 30.0450, 31.2360); err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	accepted, err := f.dispatch.RequestRide(ctx, service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if !accepted.DriverAssigned {
		t.Fatal("expected assignment")
	}
	cancelled, err := f.dispatch.CancelRide(ctx, riderID, accepted.Ride.ID)
	if err != nil {
		t.Fatalf("cancel accepted: %v", err)
	}
	assertDriverIDMatchesStatus(t, cancelled)

	// Take the driver off shift so the next ride stays in searching.
	if _, err := f.dispatch.DeactivateDriver(ctx, driverID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	searching, err := f.dispatch.RequestRide(ctx, service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	cancelled, err = f.dispatch.CancelRide(ctx, riderID, searching.Ride.ID)
	if err != nil {
		t.Fatalf("cancel searching: %v", err)
	}
	assertDriverIDMatchesStatus(t, cancelled)

	// The stored rides agree with the returned copies.
	for _, id := range []int64{result.Ride.ID, accepted.Ride.ID, searching.Ride.ID} {
		stored, err := f.dispatch.GetRide(ctx, id)
		if err != nil {
			t.Fatalf("get ride %d: %v", id, err)
		}
		assertDriverIDMatchesStatus(t, stored)
	}
}

// ──────────────────────────────────────────────
// 5. PROGRESS AUTHORIZATION
// ──────────────────────────────────────────────

func TestDispatch_OnlyAssignedDriverMayAdvance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	f.addDriver(t, 30.0450, 31.2360)
	otherDriver := f.addDriver(t, 30.1, 31.3)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if result.Ride.DriverID == otherDriver {
		t.Fatal("expected the nearer driver to win the assignment")
	}

	_, err = f.dispatch.AdvanceRide(context.Background(), otherDriver, result.Ride.ID, domain.EventStarted)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
	_, err = f.dispatch.AdvanceRide(context.Background(), riderID, result.Ride.ID, domain.EventStarted)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for the rider, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 6. RATING
// ──────────────────────────────────────────────

func completeRide(t *testing.T, f *fixture, riderID, driverID int64) *domain.Ride {
	t.Helper()
	ctx := context.Background()

	result, err := f.dispatch.RequestRide(ctx, service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}
	if !result.DriverAssigned || result.Ride.DriverID != driverID {
		t.Fatalf("expected driver %d assigned, got %+v", driverID, result)
	}
	if _, err := f.dispatch.AdvanceRide(ctx, driverID, result.Ride.ID, domain.EventStarted); err != nil {
		t.Fatalf("start: %v", err)
	}
	ride, err := f.dispatch.AdvanceRide(ctx, driverID, result.Ride.ID, domain.EventCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return ride
}

func TestDispatch_RateOnce_UpdatesDriverAverage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	driverID := f.addDriver(t, 30.0450, 31.2360)
	ride := completeRide(t, f, riderID, driverID)

	rated, err := f.dispatch.RateRide(context.Background(), riderID, ride.ID, 3)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating != 3 {
		t.Errorf("expected rating 3, got %d", rated.Rating)
	}

	// First rated ride replaces the default 5.0 seed: (5*0 + 3) / 1.
	driver := f.getUser(t, driverID)
	if driver.Rating != 3 || driver.RatedRides != 1 {
		t.Errorf("expected driver rating 3 over 1 ride, got %v over %d", driver.Rating, driver.RatedRides)
	}

	_, err = f.dispatch.RateRide(context.Background(), riderID, ride.ID, 5)
	if !errors.Is(err, service.ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got: %v", err)
	}
	if f.getUser(t, driverID).RatedRides != 1 {
		t.Error("expected rejected rating to leave the average untouched")
	}
}

func TestDispatch_RateValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	driverID := f.addDriver(t, 30.0450, 31.2360)
	ride := completeRide(t, f, riderID, driverID)

	for _, stars := range []int{0, 6, -1} {
		if _, err := f.dispatch.RateRide(context.Background(), riderID, ride.ID, stars); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("stars %d: expected ErrInvalidRating, got: %v", stars, err)
		}
	}

	if _, err := f.dispatch.RateRide(context.Background(), driverID, ride.ID, 4); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for the driver, got: %v", err)
	}
}

func TestDispatch_RateUnfinishedRide_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 20)
	f.addDriver(t, 30.0450, 31.2360)

	result, err := f.dispatch.RequestRide(context.Background(), service.RequestRideInput{
		RiderID:      riderID,
		Pickup:       downtownPickup,
		Dropoff:      downtownDropoff,
		VehicleClass: domain.VehicleEconomy,
	})
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	_, err = f.dispatch.RateRide(context.Background(), riderID, result.Ride.ID, 5)
	if !errors.Is(err, service.ErrRideNotCompleted) {
		t.Fatalf("expected ErrRideNotCompleted, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 7. WALLET SEMANTICS
// ──────────────────────────────────────────────

func TestDispatch_CompletionMayOverdraw(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 0) // no funds
	driverID := f.addDriver(t, 30.0450, 31.2360)

	completeRide(t, f, riderID, driverID)

	rider := f.getUser(t, riderID)
	if rider.Balance >= 0 {
		t.Errorf("expected a negative balance, got %v", rider.Balance)
	}
}

func TestWallet_WithdrawRequiresFunds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 5)

	if _, err := f.wallet.Withdraw(context.Background(), riderID, 10); !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got: %v", err)
	}
	if _, err := f.wallet.Withdraw(context.Background(), riderID, 5); err != nil {
		t.Fatalf("expected withdrawal within balance to succeed, got: %v", err)
	}
	if got := f.getUser(t, riderID).Balance; got != 0 {
		t.Errorf("expected zero balance, got %v", got)
	}
}

func TestWallet_RejectsNonPositiveAmounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	riderID := f.addRider(t, 5)

	for _, amount := range []float64{0, -3} {
		if _, err := f.wallet.Deposit(context.Background(), riderID, amount); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("deposit %v: expected ErrInvalidAmount, got: %v", amount, err)
		}
		if _, err := f.wallet.Withdraw(context.Background(), riderID, amount); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("withdraw %v: expected ErrInvalidAmount, got: %v", amount, err)
		}
	}
}
