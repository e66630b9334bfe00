// Package domain holds the entities shared by every layer and the sentinel
// errors that services and handlers dispatch on.
package domain

import "errors"

var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrAirportNotFound = errors.New("airport not found")

	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrInvalidSeatCount  = errors.New("seat count must be at least 1")

	// ErrInvalidInput wraps request validation failures so handlers can map
	// them to a 400 without enumerating every message.
	ErrInvalidInput = errors.New("invalid input")

	ErrUnauthorized     = errors.New("not authorized to access this booking")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrDuplicateReference is retried internally by the booking service;
	// callers only see it if every regeneration attempt collides.
	ErrDuplicateReference = errors.New("booking reference already exists")

	// ErrSeatOverRelease reports a release that would push available seats
	// past total capacity. The count is clamped, the caller bug is not hidden.
	ErrSeatOverRelease = errors.New("seat release exceeds total capacity")

	// ErrCapacityBelowBooked rejects a capacity resize that would leave fewer
	// total seats than are already booked.
	ErrCapacityBelowBooked = errors.New("total seats cannot drop below seats already booked")

	// ErrBookingNotCancellable covers bookings in a terminal state other than
	// CANCELLED, which get their own ErrAlreadyCancelled.
	ErrBookingNotCancellable = errors.New("booking can no longer be cancelled")

	ErrFlightNumberTaken = errors.New("flight number already exists")
	ErrAirportCodeTaken  = errors.New("airport code already exists")
	ErrSameAirports      = errors.New("departure and arrival airports cannot be the same")

	// ErrStatusConflict means a guarded status update matched no row because
	// another writer transitioned the flight first.
	ErrStatusConflict = errors.New("flight status changed concurrently")
)
