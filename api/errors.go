package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salokhin/flightbooking/internal/domain"
)

// writeError maps domain sentinels to HTTP statuses. Anything unrecognized
// is a store failure and stays a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrAirportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrFlightNumberTaken),
		errors.Is(err, domain.ErrAirportCodeTaken),
		errors.Is(err, domain.ErrCapacityBelowBooked),
		errors.Is(err, domain.ErrBookingNotCancellable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrSameAirports):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
