package kafka

import "time"

const (
	EventBookingConfirmed    = "booking_confirmed"
	EventBookingCancelled    = "booking_cancelled"
	EventFlightStatusChanged = "flight_status_changed"
)

type BookingEvent struct {
	Type             string    `json:"type"`
	Reference        string    `json:"reference"`
	FlightID         int64     `json:"flight_id"`
	Seats            int       `json:"seats"`
	PassengerEmail   string    `json:"passenger_email"`
	Status           string    `json:"status"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	BookingDate      time.Time `json:"booking_date"`
}

type FlightEvent struct {
	Type          string    `json:"type"`
	FlightID      int64     `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Status        string    `json:"status"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}
