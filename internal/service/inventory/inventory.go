// Package inventory owns every mutation of a flight's available seat count.
// Nothing else in the codebase touches available_seats.
package inventory

import (
	"context"
	"errors"
	"log"

	"github.com/salokhin/flightbooking/internal/domain"
)

// SeatStore is the slice of the flight repository the manager needs. Both
// operations are single guarded statements, so the check-then-update is
// atomic relative to any concurrent caller on the same flight.
type SeatStore interface {
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
	ResizeCapacity(ctx context.Context, flightID int64, totalSeats int) error
}

type Manager struct {
	flights SeatStore
}

func NewManager(flights SeatStore) *Manager {
	return &Manager{flights: flights}
}

// Reserve takes count seats from the flight or fails without side effects.
// Returns domain.ErrFlightNotFound, domain.ErrInsufficientSeats or a store error.
func (m *Manager) Reserve(ctx context.Context, flightID int64, count int) error {
	if count < 1 {
		return domain.ErrInvalidSeatCount
	}
	return m.flights.ReserveSeats(ctx, flightID, count)
}

// Release returns count seats to the flight. An over-release is clamped at
// total capacity by the store; it points at a caller bug, so it is logged
// and surfaced rather than swallowed.
func (m *Manager) Release(ctx context.Context, flightID int64, count int) error {
	if count < 1 {
		return domain.ErrInvalidSeatCount
	}
	err := m.flights.ReleaseSeats(ctx, flightID, count)
	if errors.Is(err, domain.ErrSeatOverRelease) {
		log.Printf("inventory: release of %d seats on flight %d exceeded capacity, clamped", count, flightID)
	}
	return err
}

// Resize changes a flight's total capacity, shifting available seats by the
// same delta. Fails with domain.ErrCapacityBelowBooked when the new capacity
// cannot cover the seats already booked.
func (m *Manager) Resize(ctx context.Context, flightID int64, totalSeats int) error {
	if totalSeats < 1 {
		return domain.ErrInvalidSeatCount
	}
	return m.flights.ResizeCapacity(ctx, flightID, totalSeats)
}
