package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi/internal/service"
)

// DriverHandler handles HTTP requests for driver availability and ride
// responses.
type DriverHandler struct {
	dispatch *service.DispatchService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(dispatch *service.DispatchService) *DriverHandler {
	return &DriverHandler{dispatch: dispatch}
}

// ActivateRequest is the HTTP request body for going on shift.
type ActivateRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activate handles POST /v1/drivers/:id/activate
func (h *DriverHandler) Activate(c *gin.Context) {
	driverID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.dispatch.ActivateDriver(c.Request.Context(), driverID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(driver))
}

// Deactivate handles POST /v1/drivers/:id/deactivate
func (h *DriverHandler) Deactivate(c *gin.Context) {
	driverID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	driver, err := h.dispatch.DeactivateDriver(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(driver))
}

// RespondRequest is the HTTP request body for answering a ride offer.
type RespondRequest struct {
	RideID int64 `json:"ride_id"`
	Accept bool  `json:"accept"`
}

// Respond handles POST /v1/drivers/:id/respond
func (h *DriverHandler) Respond(c *gin.Context) {
	driverID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.RideID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ride_id is required"})
		return
	}

	ride, err := h.dispatch.DriverRespond(c.Request.Context(), driverID, req.RideID, req.Accept)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}
