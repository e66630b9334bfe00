// Package email renders notification messages for booking and flight events.
// Delivery is a stand-in: messages are written to the log, real SMTP sits
// behind the same Send signature.
package email

import (
	"context"
	"fmt"
	"log"

	"github.com/salokhin/flightbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendBooking(ctx context.Context, event kafka.BookingEvent) error {
	var subject string
	switch event.Type {
	case kafka.EventBookingConfirmed:
		subject = fmt.Sprintf("Booking %s confirmed", event.Reference)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled", event.Reference)
	default:
		subject = fmt.Sprintf("Booking %s update", event.Reference)
	}
	log.Printf("email: to=%s subject=%q flight=%d seats=%d amount=%d",
		event.PassengerEmail, subject, event.FlightID, event.Seats, event.TotalAmountCents)
	return nil
}

func (s *Sender) SendFlight(ctx context.Context, event kafka.FlightEvent) error {
	log.Printf("email: flight %s is now %s (departure %s)",
		event.FlightNumber, event.Status, event.DepartureTime)
	return nil
}
