package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/service/booking"
	"github.com/salokhin/flightbooking/internal/service/flights"
	"github.com/salokhin/flightbooking/internal/service/status"
)

// AdminHandler serves the administrative surface: flight management, all
// bookings, and the manual status engine trigger.
type AdminHandler struct {
	flights  flights.FlightUseCase
	bookings booking.BookingUseCase
	engine   *status.Engine
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func NewAdminHandler(flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, engine *status.Engine) *AdminHandler {
	return &AdminHandler{flights: flightSvc, bookings: bookingSvc, engine: engine}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights", h.createFlight)
	router.PUT("/flights/:id", h.updateFlight)
	router.DELETE("/flights/:id", h.deleteFlight)
	router.POST("/flights/:id/status", h.setFlightStatus)
	router.POST("/flights/update-statuses", h.triggerStatusUpdate)
	router.GET("/flights/status-stats", h.statusStats)
	router.GET("/bookings", h.listBookings)
	router.GET("/bookings/:reference", h.getBooking)
}

func (h *AdminHandler) createFlight(c *gin.Context) {
	var input flights.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.flights.CreateFlight(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) updateFlight(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input flights.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.flights.UpdateFlight(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) deleteFlight(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.flights.DeleteFlight(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) setFlightStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.flights.SetFlightStatus(c.Request.Context(), id, domain.FlightStatus(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight status updated"})
}

// triggerStatusUpdate runs the same evaluation pass the worker runs on its
// timer.
func (h *AdminHandler) triggerStatusUpdate(c *gin.Context) {
	summary, err := h.engine.RunOnce(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) statusStats(c *gin.Context) {
	summary, ok := h.engine.LastSummary(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "no evaluation pass has run yet"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) listBookings(c *gin.Context) {
	bookings, err := h.bookings.ListAllBookings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) getBooking(c *gin.Context) {
	found, err := h.bookings.GetBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}
