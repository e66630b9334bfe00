package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salokhin/flightbooking/internal/domain"
)

const flightColumns = `id, flight_number, airline, departure_airport_id, arrival_airport_id, departure_time, arrival_time, price_cents, total_seats, available_seats, status, created_at, updated_at`

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	FindByStatusIn(ctx context.Context, statuses []domain.FlightStatus) ([]domain.Flight, error)
	FindAvailable(ctx context.Context, departureAirportID, arrivalAirportID int64, day time.Time) ([]domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
	ResizeCapacity(ctx context.Context, flightID int64, totalSeats int) error
	UpdateStatus(ctx context.Context, flightID int64, from, to domain.FlightStatus) error
	SetStatus(ctx context.Context, flightID int64, status domain.FlightStatus) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := q(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (flight_number, airline, departure_airport_id, arrival_airport_id, departure_time, arrival_time, price_cents, total_seats, available_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9)
		RETURNING id, available_seats, created_at, updated_at`,
		f.FlightNumber, f.Airline, f.DepartureAirportID, f.ArrivalAirportID, f.DepartureTime, f.ArrivalTime, f.PriceCents, f.TotalSeats, domain.FlightStatusScheduled).
		Scan(&f.ID, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrFlightNumberTaken
	}
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	f.Status = domain.FlightStatusScheduled
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := q(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	return scanFlight(row)
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	row := q(ctx, r.db).QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number=$1`, number)
	return scanFlight(row)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := q(ctx, r.db).Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return scanFlights(rows)
}

// Update never touches the seat columns; available_seats only moves through
// the guarded statements below and total_seats through ResizeCapacity.
func (r *PGFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET flight_number=$2, airline=$3, departure_airport_id=$4, arrival_airport_id=$5, departure_time=$6, arrival_time=$7, price_cents=$8, status=$9, updated_at=now() WHERE id=$1`,
		f.ID, f.FlightNumber, f.Airline, f.DepartureAirportID, f.ArrivalAirportID, f.DepartureTime, f.ArrivalTime, f.PriceCents, f.Status)
	if isUniqueViolation(err) {
		return domain.ErrFlightNumberTaken
	}
	if err != nil {
		return fmt.Errorf("update flight: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) FindByStatusIn(ctx context.Context, statuses []domain.FlightStatus) ([]domain.Flight, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	rows, err := q(ctx, r.db).Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE status = ANY($1) ORDER BY departure_time`, values)
	if err != nil {
		return nil, fmt.Errorf("find flights by status: %w", err)
	}
	return scanFlights(rows)
}

func (r *PGFlightRepository) FindAvailable(ctx context.Context, departureAirportID, arrivalAirportID int64, day time.Time) ([]domain.Flight, error) {
	rows, err := q(ctx, r.db).Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE departure_airport_id=$1 AND arrival_airport_id=$2
		AND departure_time::date = $3::date
		AND status=$4 AND available_seats > 0
		ORDER BY departure_time ASC`,
		departureAirportID, arrivalAirportID, day, domain.FlightStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return scanFlights(rows)
}

// ReserveSeats decrements available seats in one guarded statement, so a
// concurrent reservation on the same flight can never overbook.
func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, flightID, count)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, flightID); err != nil {
			return err
		}
		return domain.ErrInsufficientSeats
	}
	return nil
}

// ReleaseSeats increments available seats. A release that would exceed total
// capacity is clamped to total_seats and reported as ErrSeatOverRelease.
func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1 AND available_seats + $2 <= total_seats`, flightID, count)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, flightID); err != nil {
		return err
	}
	if _, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET available_seats = total_seats, updated_at = now() WHERE id=$1`, flightID); err != nil {
		return fmt.Errorf("clamp released seats: %w", err)
	}
	return domain.ErrSeatOverRelease
}

// ResizeCapacity changes total_seats and shifts available_seats by the same
// delta in one guarded statement, so concurrent reservations are never
// clobbered by a stale counter. Both SET expressions read the old row values.
func (r *PGFlightRepository) ResizeCapacity(ctx context.Context, flightID int64, totalSeats int) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET total_seats = $2, available_seats = available_seats + ($2 - total_seats), updated_at = now() WHERE id=$1 AND available_seats + ($2 - total_seats) >= 0`, flightID, totalSeats)
	if err != nil {
		return fmt.Errorf("resize capacity: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, flightID); err != nil {
			return err
		}
		return domain.ErrCapacityBelowBooked
	}
	return nil
}

// UpdateStatus transitions a flight only if it still holds the expected
// status, which makes re-running the status engine a no-op.
func (r *PGFlightRepository) UpdateStatus(ctx context.Context, flightID int64, from, to domain.FlightStatus) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`, flightID, from, to)
	if err != nil {
		return fmt.Errorf("update flight status: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

// SetStatus is the administrative override, the only path to CANCELLED.
func (r *PGFlightRepository) SetStatus(ctx context.Context, flightID int64, status domain.FlightStatus) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE flights SET status=$2, updated_at=now() WHERE id=$1`, flightID, status)
	if err != nil {
		return fmt.Errorf("set flight status: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureAirportID, &f.ArrivalAirportID, &f.DepartureTime, &f.ArrivalTime, &f.PriceCents, &f.TotalSeats, &f.AvailableSeats, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flight: %w", err)
	}
	return &f, nil
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.DepartureAirportID, &f.ArrivalAirportID, &f.DepartureTime, &f.ArrivalTime, &f.PriceCents, &f.TotalSeats, &f.AvailableSeats, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ FlightRepository = (*PGFlightRepository)(nil)
