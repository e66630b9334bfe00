package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID       int64  `json:"flight_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	Seats          int    `json:"seats"`
}

type bookingResponse struct {
	Reference        string `json:"reference"`
	FlightID         int64  `json:"flight_id"`
	PassengerName    string `json:"passenger_name"`
	PassengerEmail   string `json:"passenger_email"`
	PassengerPhone   string `json:"passenger_phone,omitempty"`
	Seats            int    `json:"seats"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	Status           string `json:"status"`
	BookingDate      string `json:"booking_date"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.listMine)
	router.GET("/:reference", h.get)
	router.PUT("/:reference/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:         currentUserID(c),
		FlightID:       req.FlightID,
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		PassengerPhone: req.PassengerPhone,
		Seats:          req.Seats,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	bookings, err := h.service.ListUserBookings(c.Request.Context(), currentUserID(c))
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

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	if found.UserID != currentUserID(c) && !isAdmin(c) {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("reference"), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference:        b.Reference,
		FlightID:         b.FlightID,
		PassengerName:    b.PassengerName,
		PassengerEmail:   b.PassengerEmail,
		PassengerPhone:   b.PassengerPhone,
		Seats:            b.Seats,
		TotalAmountCents: b.TotalAmountCents,
		Status:           string(b.Status),
		BookingDate:      b.BookingDate.Format(time.RFC3339),
	}
}
