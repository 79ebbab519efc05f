package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	dispatch *service.DispatchService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(dispatch *service.DispatchService) *RideHandler {
	return &RideHandler{dispatch: dispatch}
}

// PointRequest is a trip endpoint in a request body: either coordinates
// or a free-text address.
type PointRequest struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

func (p PointRequest) toInput() service.PointInput {
	return service.PointInput{Lat: p.Lat, Lng: p.Lng, Address: p.Address}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	RiderID      int64        `json:"rider_id"`
	Pickup       PointRequest `json:"pickup"`
	Dropoff      PointRequest `json:"dropoff"`
	VehicleClass string       `json:"vehicle_class"`
}

// PointResponse is a trip endpoint in a response body.
type PointResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID           int64         `json:"id"`
	RiderID      int64         `json:"rider_id"`
	DriverID     int64         `json:"driver_id,omitempty"`
	Pickup       PointResponse `json:"pickup"`
	Dropoff      PointResponse `json:"dropoff"`
	VehicleClass string        `json:"vehicle_class"`
	DistanceKm   float64       `json:"distance_km"`
	Price        float64       `json:"price"`
	Status       string        `json:"status"`
	Rating       int           `json:"rating,omitempty"`
	CreatedAt    string        `json:"created_at"`
	AcceptedAt   string        `json:"accepted_at,omitempty"`
	StartedAt    string        `json:"started_at,omitempty"`
	CompletedAt  string        `json:"completed_at,omitempty"`
	CancelledAt  string        `json:"cancelled_at,omitempty"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:       r.ID,
		RiderID:  r.RiderID,
		DriverID: r.DriverID,
		Pickup:   PointResponse{Lat: r.Pickup.Lat, Lng: r.Pickup.Lng, Address: r.Pickup.Address},
		Dropoff:  PointResponse{Lat: r.Dropoff.Lat, Lng: r.Dropoff.Lng, Address: r.Dropoff.Address},

		VehicleClass: string(r.VehicleClass),
		DistanceKm:   r.DistanceKm,
		Price:        r.Price,
		Status:       string(r.Status),
		Rating:       r.Rating,
		CreatedAt:    formatTime(r.CreatedAt),
		AcceptedAt:   formatTime(r.AcceptedAt),
		StartedAt:    formatTime(r.StartedAt),
		CompletedAt:  formatTime(r.CompletedAt),
		CancelledAt:  formatTime(r.CancelledAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Request handles POST /v1/rides
func (h *RideHandler) Request(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.RiderID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rider_id is required"})
		return
	}

	result, err := h.dispatch.RequestRide(c.Request.Context(), service.RequestRideInput{
		RiderID:      req.RiderID,
		Pickup:       req.Pickup.toInput(),
		Dropoff:      req.Dropoff.toInput(),
		VehicleClass: domain.VehicleClass(req.VehicleClass),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ride":            toRideResponse(result.Ride),
		"driver_assigned": result.DriverAssigned,
	})
}

// Get handles GET /v1/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ride, err := h.dispatch.GetRide(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// QuotesRequest is the HTTP request body for pricing a prospective trip.
type QuotesRequest struct {
	Pickup  PointRequest `json:"pickup"`
	Dropoff PointRequest `json:"dropoff"`
}

// Quotes handles POST /v1/rides/quotes
func (h *RideHandler) Quotes(c *gin.Context) {
	var req QuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.dispatch.ListVehicleQuotes(c.Request.Context(), req.Pickup.toInput(), req.Dropoff.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	quotes := make(map[string]float64, len(result.Quotes))
	for class, price := range result.Quotes {
		quotes[string(class)] = price
	}

	c.JSON(http.StatusOK, gin.H{
		"pickup":         PointResponse{Lat: result.Pickup.Lat, Lng: result.Pickup.Lng, Address: result.Pickup.Address},
		"dropoff":        PointResponse{Lat: result.Dropoff.Lat, Lng: result.Dropoff.Lng, Address: result.Dropoff.Address},
		"distance_km":    result.DistanceKm,
		"quotes":         quotes,
		"pickup_map_url": result.PickupMapURL,
	})
}

// AdvanceRequest is the HTTP request body for a ride progress event.
type AdvanceRequest struct {
	ActorID int64  `json:"actor_id"`
	Event   string `json:"event"`
}

// Advance handles POST /v1/rides/:id/advance
func (h *RideHandler) Advance(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	event, err := service.ParseRideEvent(req.Event)
	if err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.dispatch.AdvanceRide(c.Request.Context(), req.ActorID, rideID, event)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// CancelRequest is the HTTP request body for cancelling a ride.
type CancelRequest struct {
	ActorID int64 `json:"actor_id"`
}

// Cancel handles POST /v1/rides/:id/cancel
func (h *RideHandler) Cancel(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatch.CancelRide(c.Request.Context(), req.ActorID, rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// RateRequest is the HTTP request body for rating a completed ride.
type RateRequest struct {
	RiderID int64 `json:"rider_id"`
	Rating  int   `json:"rating"`
}

// Rate handles POST /v1/rides/:id/rate
func (h *RideHandler) Rate(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatch.RateRide(c.Request.Context(), req.RiderID, rideID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}
