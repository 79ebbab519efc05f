package service

import (
	"context"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/geo"
)

// ReceiptService generates receipts for completed rides.
type ReceiptService struct {
	geo      geo.Service
	notifier NotificationSink
	clock    Clock
}

// NewReceiptService creates a ReceiptService.
func NewReceiptService(geoService geo.Service, notifier NotificationSink, clock Clock) *ReceiptService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReceiptService{geo: geoService, notifier: notifier, clock: clock}
}

// Generate builds a receipt for a completed ride and notifies the rider.
func (s *ReceiptService) Generate(ctx context.Context, ride *domain.Ride) *domain.Receipt {
	var routeURL string
	if s.geo != nil {
		routeURL = s.geo.RouteMapURL(
			geo.Point{Lat: ride.Pickup.Lat, Lng: ride.Pickup.Lng},
			geo.Point{Lat: ride.Dropoff.Lat, Lng: ride.Dropoff.Lng},
		)
	}

	receipt := &domain.Receipt{
		ID:           uuid.New().String(),
		RideID:       ride.ID,
		RiderID:      ride.RiderID,
		DriverID:     ride.DriverID,
		VehicleClass: ride.VehicleClass,
		DistanceKm:   ride.DistanceKm,
		Price:        ride.Price,
		RouteMapURL:  routeURL,
		StartedAt:    ride.StartedAt,
		CompletedAt:  ride.CompletedAt,
		Duration:     ride.CompletedAt.Sub(ride.StartedAt),
		CreatedAt:    s.clock.Now(),
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, ride.RiderID, NotificationReceiptReady, map[string]any{
			"receipt_id": receipt.ID,
			"ride_id":    ride.ID,
			"price":      ride.Price,
			"route_map":  routeURL,
		})
	}

	return receipt
}
