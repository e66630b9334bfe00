package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salokhin/flightbooking/internal/domain"
)

const bookingColumns = `id, reference, user_id, flight_id, passenger_name, passenger_email, passenger_phone, seats, total_amount_cents, status, booking_date, created_at, updated_at`

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	FindByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	Cancel(ctx context.Context, reference string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	b.Status = domain.BookingStatusConfirmed
	err := q(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (reference, user_id, flight_id, passenger_name, passenger_email, passenger_phone, seats, total_amount_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, booking_date, created_at, updated_at`,
		b.Reference, b.UserID, b.FlightID, b.PassengerName, b.PassengerEmail, b.PassengerPhone, b.Seats, b.TotalAmountCents, b.Status).
		Scan(&b.ID, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateReference
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := q(ctx, r.db).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference)
	return scanBooking(row)
}

func (r *PGBookingRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := q(ctx, r.db).Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY booking_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("find bookings by user: %w", err)
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := q(ctx, r.db).Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return scanBookings(rows)
}

// Cancel flips a CONFIRMED booking to CANCELLED. The status guard in the
// WHERE clause makes a concurrent double-cancel lose cleanly. A miss is
// re-read to report the actual state instead of a blanket "already cancelled".
func (r *PGBookingRepository) Cancel(ctx context.Context, reference string) (*domain.Booking, error) {
	row := q(ctx, r.db).QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE reference=$1 AND status=$3 RETURNING `+bookingColumns,
		reference, domain.BookingStatusCancelled, domain.BookingStatusConfirmed)
	b, err := scanBooking(row)
	if errors.Is(err, domain.ErrBookingNotFound) {
		current, getErr := r.GetByReference(ctx, reference)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == domain.BookingStatusCancelled {
			return nil, domain.ErrAlreadyCancelled
		}
		return nil, domain.ErrBookingNotCancellable
	}
	return b, err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.FlightID, &b.PassengerName, &b.PassengerEmail, &b.PassengerPhone, &b.Seats, &b.TotalAmountCents, &b.Status, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.UserID, &b.FlightID, &b.PassengerName, &b.PassengerEmail, &b.PassengerPhone, &b.Seats, &b.TotalAmountCents, &b.Status, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
