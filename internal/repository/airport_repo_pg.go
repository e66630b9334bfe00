package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salokhin/flightbooking/internal/domain"
)

type AirportRepository interface {
	Create(ctx context.Context, airport *domain.Airport) error
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	GetByCode(ctx context.Context, code string) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
	Update(ctx context.Context, airport *domain.Airport) error
	Delete(ctx context.Context, id int64) error
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) Create(ctx context.Context, a *domain.Airport) error {
	a.Code = strings.ToUpper(a.Code)
	err := q(ctx, r.db).QueryRow(ctx, `INSERT INTO airports (code, name, city, country)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		a.Code, a.Name, a.City, a.Country).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrAirportCodeTaken
	}
	if err != nil {
		return fmt.Errorf("insert airport: %w", err)
	}
	return nil
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	row := q(ctx, r.db).QueryRow(ctx, `SELECT id, code, name, city, country, created_at, updated_at FROM airports WHERE id=$1`, id)
	return scanAirport(row)
}

func (r *PGAirportRepository) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	row := q(ctx, r.db).QueryRow(ctx, `SELECT id, code, name, city, country, created_at, updated_at FROM airports WHERE code=$1`, strings.ToUpper(code))
	return scanAirport(row)
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := q(ctx, r.db).Query(ctx, `SELECT id, code, name, city, country, created_at, updated_at FROM airports ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGAirportRepository) Update(ctx context.Context, a *domain.Airport) error {
	res, err := q(ctx, r.db).Exec(ctx, `UPDATE airports SET code=$2, name=$3, city=$4, country=$5, updated_at=now() WHERE id=$1`,
		a.ID, strings.ToUpper(a.Code), a.Name, a.City, a.Country)
	if isUniqueViolation(err) {
		return domain.ErrAirportCodeTaken
	}
	if err != nil {
		return fmt.Errorf("update airport: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrAirportNotFound
	}
	return nil
}

func (r *PGAirportRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).Exec(ctx, `DELETE FROM airports WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete airport: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrAirportNotFound
	}
	return nil
}

func scanAirport(row pgx.Row) (*domain.Airport, error) {
	var a domain.Airport
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.City, &a.Country, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAirportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan airport: %w", err)
	}
	return &a, nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)
