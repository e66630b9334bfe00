package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires every handler under /api. Customer routes require a valid
// token; admin routes additionally require the ADMIN role.
func NewRouter(jwtSecret string, flightH *FlightHandler, bookingH *BookingHandler, airportH *AirportHandler, adminH *AdminHandler) *gin.Engine {
	router := gin.Default()

	authorized := router.Group("/api", Auth(jwtSecret))
	flightH.Register(authorized.Group("/flights"))
	bookingH.Register(authorized.Group("/bookings"))
	airportH.Register(authorized.Group("/airports"))

	admin := authorized.Group("/admin", RequireRole(RoleAdmin))
	adminH.Register(admin)
	airportH.RegisterAdmin(admin.Group("/airports"))

	return router
}
