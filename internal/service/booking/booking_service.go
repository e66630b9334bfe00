package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/kafka"
	"github.com/salokhin/flightbooking/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, reference string, userID int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListAllBookings(ctx context.Context) ([]domain.Booking, error)
}

// Inventory is the seat inventory manager. Seat counts are never mutated
// through any other path.
type Inventory interface {
	Reserve(ctx context.Context, flightID int64, count int) error
	Release(ctx context.Context, flightID int64, count int) error
}

// FlightStore is the slice of the flight repository the booking flow needs:
// the flight is only loaded to freeze the fare.
type FlightStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            FlightStore
	inventory          Inventory
	tx                 repository.Transactor
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	referenceRetries   int
}

type CreateBookingInput struct {
	UserID         int64  `json:"user_id"`
	FlightID       int64  `json:"flight_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	Seats          int    `json:"seats"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.referenceRetries = n
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights FlightStore,
	inventory Inventory,
	tx repository.Transactor,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:         bookings,
		flights:          flights,
		inventory:        inventory,
		tx:               tx,
		producer:         producer,
		bookingTopic:     bookingTopic,
		referenceRetries: 3,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves seats, freezes the fare at the current flight price
// and persists a CONFIRMED booking. Any failure after the reservation puts
// the seats back, so no partial state survives.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.Seats < 1 {
		return nil, domain.ErrInvalidSeatCount
	}
	if strings.TrimSpace(input.PassengerName) == "" {
		return nil, fmt.Errorf("%w: passenger name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.PassengerEmail) == "" {
		return nil, fmt.Errorf("%w: passenger email is required", domain.ErrInvalidInput)
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	if err := s.inventory.Reserve(ctx, input.FlightID, input.Seats); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		UserID:           input.UserID,
		FlightID:         input.FlightID,
		PassengerName:    input.PassengerName,
		PassengerEmail:   input.PassengerEmail,
		PassengerPhone:   input.PassengerPhone,
		Seats:            input.Seats,
		TotalAmountCents: flight.PriceCents * int64(input.Seats),
	}

	// A reference collision regenerates and retries instead of failing the
	// booking.
	for attempt := 0; ; attempt++ {
		booking.Reference = newReference()
		err = s.bookings.Create(ctx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateReference) && attempt < s.referenceRetries {
			continue
		}
		if relErr := s.inventory.Release(ctx, input.FlightID, input.Seats); relErr != nil {
			log.Printf("booking: failed to release %d seats on flight %d after create error: %v", input.Seats, input.FlightID, relErr)
		}
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

// CancelBooking flips the booking to CANCELLED and returns its seats in one
// transaction, so neither change is ever applied without the other.
func (s *BookingService) CancelBooking(ctx context.Context, reference string, userID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	if current.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if current.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrBookingNotCancellable
	}

	var cancelled *domain.Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		cancelled, err = s.bookings.Cancel(ctx, reference)
		if err != nil {
			return err
		}
		return s.inventory.Release(ctx, cancelled.FlightID, cancelled.Seats)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCancelled, cancelled)
	return cancelled, nil
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.FindByUser(ctx, userID)
}

func (s *BookingService) ListAllBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

// publish is fire-and-forget: a broker failure never rolls back a booking.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		Reference:        booking.Reference,
		FlightID:         booking.FlightID,
		Seats:            booking.Seats,
		PassengerEmail:   booking.PassengerEmail,
		Status:           string(booking.Status),
		TotalAmountCents: booking.TotalAmountCents,
		BookingDate:      booking.BookingDate,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("booking: failed to publish %s event for %s: %v", eventType, booking.Reference, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			log.Printf("booking: failed to publish %s notification for %s: %v", eventType, booking.Reference, err)
		}
	}
}

func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

var _ BookingUseCase = (*BookingService)(nil)
