package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type Booking struct {
	ID               int64
	Reference        string
	UserID           int64
	FlightID         int64
	PassengerName    string
	PassengerEmail   string
	PassengerPhone   string
	Seats            int
	TotalAmountCents int64
	Status           BookingStatus
	BookingDate      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
