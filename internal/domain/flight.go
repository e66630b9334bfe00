package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCompleted FlightStatus = "COMPLETED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

type Flight struct {
	ID                 int64
	FlightNumber       string
	Airline            string
	DepartureAirportID int64
	ArrivalAirportID   int64
	DepartureTime      time.Time
	ArrivalTime        time.Time
	PriceCents         int64
	TotalSeats         int
	AvailableSeats     int
	Status             FlightStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
