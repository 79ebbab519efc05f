package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxi/internal/repository"
	"taxi/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidVehicleClass),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrUnresolvableAddress):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotDriver),
		errors.Is(err, service.ErrUserInactive):
		return http.StatusForbidden

	// Conflict errors - valid request, wrong state
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrRideNotCompleted),
		errors.Is(err, service.ErrDriverUnavailable),
		errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusConflict

	// Service unavailable - retry later
	case errors.Is(err, service.ErrNoDriverAvailable),
		errors.Is(err, service.ErrGeoUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
