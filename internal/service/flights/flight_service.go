package flights

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/repository"
)

type FlightUseCase interface {
	CreateFlight(ctx context.Context, input FlightInput) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error)
	DeleteFlight(ctx context.Context, id int64) error
	SetFlightStatus(ctx context.Context, id int64, status domain.FlightStatus) error
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, departureCode, arrivalCode string, day time.Time) ([]domain.Flight, error)
}

// SearchCache caches flight search results. Misses and cache failures fall
// through to the database.
type SearchCache interface {
	GetSearch(ctx context.Context, key string) ([]domain.Flight, error)
	SetSearch(ctx context.Context, key string, flights []domain.Flight) error
	InvalidateSearches(ctx context.Context) error
}

// Inventory is the slice of the seat inventory manager this service needs:
// capacity changes go through it, so the service never writes the seat
// counter itself.
type Inventory interface {
	Resize(ctx context.Context, flightID int64, totalSeats int) error
}

type FlightService struct {
	flights   repository.FlightRepository
	airports  repository.AirportRepository
	inventory Inventory
	cache     SearchCache
}

type FlightInput struct {
	FlightNumber       string    `json:"flight_number"`
	Airline            string    `json:"airline"`
	DepartureAirportID int64     `json:"departure_airport_id"`
	ArrivalAirportID   int64     `json:"arrival_airport_id"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	PriceCents         int64     `json:"price_cents"`
	TotalSeats         int       `json:"total_seats"`
}

func NewFlightService(flights repository.FlightRepository, airports repository.AirportRepository, inventory Inventory, cache SearchCache) *FlightService {
	return &FlightService{flights: flights, airports: airports, inventory: inventory, cache: cache}
}

// CreateFlight registers a new flight with every seat available.
func (s *FlightService) CreateFlight(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:       strings.ToUpper(strings.TrimSpace(input.FlightNumber)),
		Airline:            input.Airline,
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		PriceCents:         input.PriceCents,
		TotalSeats:         input.TotalSeats,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

// UpdateFlight is an administrative edit of schedule, capacity and price.
// The seat counter never passes through here: a capacity change is a guarded
// delta applied by the inventory manager, so a reservation landing mid-update
// is never clobbered.
func (s *FlightService) UpdateFlight(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	if input.TotalSeats != flight.TotalSeats {
		if err := s.inventory.Resize(ctx, id, input.TotalSeats); err != nil {
			return nil, err
		}
	}

	flight.FlightNumber = strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	flight.Airline = input.Airline
	flight.DepartureAirportID = input.DepartureAirportID
	flight.ArrivalAirportID = input.ArrivalAirportID
	flight.DepartureTime = input.DepartureTime
	flight.ArrivalTime = input.ArrivalTime
	flight.PriceCents = input.PriceCents

	if err := s.flights.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) DeleteFlight(ctx context.Context, id int64) error {
	if err := s.flights.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetFlightStatus is the administrative override and the only way a flight
// becomes CANCELLED.
func (s *FlightService) SetFlightStatus(ctx context.Context, id int64, status domain.FlightStatus) error {
	switch status {
	case domain.FlightStatusScheduled, domain.FlightStatusDelayed, domain.FlightStatusCompleted, domain.FlightStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown flight status %q", domain.ErrInvalidInput, status)
	}
	if err := s.flights.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.flights.List(ctx)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

// Search returns SCHEDULED flights with open seats between two airports on
// one day, newest departures last.
func (s *FlightService) Search(ctx context.Context, departureCode, arrivalCode string, day time.Time) ([]domain.Flight, error) {
	departure, err := s.airports.GetByCode(ctx, departureCode)
	if err != nil {
		return nil, err
	}
	arrival, err := s.airports.GetByCode(ctx, arrivalCode)
	if err != nil {
		return nil, err
	}

	key := searchKey(departure.Code, arrival.Code, day)
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.FindAvailable(ctx, departure.ID, arrival.ID, day)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, key, flights); err != nil {
			log.Printf("flights: failed to cache search %s: %v", key, err)
		}
	}
	return flights, nil
}

func (s *FlightService) validate(ctx context.Context, input FlightInput) error {
	if strings.TrimSpace(input.FlightNumber) == "" {
		return fmt.Errorf("%w: flight number is required", domain.ErrInvalidInput)
	}
	if input.TotalSeats < 1 {
		return fmt.Errorf("%w: total seats must be at least 1", domain.ErrInvalidInput)
	}
	if input.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidInput)
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return fmt.Errorf("%w: arrival time must be after departure time", domain.ErrInvalidInput)
	}
	if input.DepartureAirportID == input.ArrivalAirportID {
		return domain.ErrSameAirports
	}
	if _, err := s.airports.GetByID(ctx, input.DepartureAirportID); err != nil {
		return fmt.Errorf("departure airport: %w", err)
	}
	if _, err := s.airports.GetByID(ctx, input.ArrivalAirportID); err != nil {
		return fmt.Errorf("arrival airport: %w", err)
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearches(ctx); err != nil {
		log.Printf("flights: failed to invalidate search cache: %v", err)
	}
}

func searchKey(departureCode, arrivalCode string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", departureCode, arrivalCode, day.Format("2006-01-02"))
}

var _ FlightUseCase = (*FlightService)(nil)
