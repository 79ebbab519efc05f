package service

import "taxi/internal/domain"

// DefaultBaseRatePerKm is the per-kilometre base rate used when none is
// configured.
const DefaultBaseRatePerKm = 0.5

// PricingService converts distance and vehicle class into a price quote.
// It is a pure function of its inputs: no side effects, no hidden state,
// so quotes are deterministic and reproducible.
type PricingService struct {
	baseRatePerKm float64
}

// NewPricingService creates a PricingService with the given per-kilometre
// base rate.
func NewPricingService(baseRatePerKm float64) *PricingService {
	if baseRatePerKm <= 0 {
		baseRatePerKm = DefaultBaseRatePerKm
	}
	return &PricingService{baseRatePerKm: baseRatePerKm}
}

// Quote returns the price for a trip of the given distance in the given
// vehicle class: distanceKm * baseRate * multiplier[class].
func (s *PricingService) Quote(distanceKm float64, class domain.VehicleClass) (float64, error) {
	if distanceKm <= 0 {
		return 0, ErrInvalidDistance
	}

	multiplier, ok := domain.VehicleMultiplier(class)
	if !ok {
		return 0, ErrInvalidVehicleClass
	}

	return distanceKm * s.baseRatePerKm * multiplier, nil
}

// QuoteAll returns a quote for every class in the catalog.
func (s *PricingService) QuoteAll(distanceKm float64) (map[domain.VehicleClass]float64, error) {
	if distanceKm <= 0 {
		return nil, ErrInvalidDistance
	}

	quotes := make(map[domain.VehicleClass]float64)
	for _, class := range domain.VehicleClasses() {
		price, err := s.Quote(distanceKm, class)
		if err != nil {
			return nil, err
		}
		quotes[class] = price
	}
	return quotes, nil
}
