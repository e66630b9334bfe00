package airports

import (
	"context"
	"fmt"
	"strings"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/repository"
)

type AirportUseCase interface {
	Create(ctx context.Context, input AirportInput) (*domain.Airport, error)
	Update(ctx context.Context, id int64, input AirportInput) (*domain.Airport, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
}

type AirportService struct {
	airports repository.AirportRepository
}

type AirportInput struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func NewAirportService(airports repository.AirportRepository) *AirportService {
	return &AirportService{airports: airports}
}

func (s *AirportService) Create(ctx context.Context, input AirportInput) (*domain.Airport, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	airport := &domain.Airport{
		Code:    input.Code,
		Name:    input.Name,
		City:    input.City,
		Country: input.Country,
	}
	if err := s.airports.Create(ctx, airport); err != nil {
		return nil, err
	}
	return airport, nil
}

func (s *AirportService) Update(ctx context.Context, id int64, input AirportInput) (*domain.Airport, error) {
	airport, err := s.airports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(input); err != nil {
		return nil, err
	}
	airport.Code = strings.ToUpper(input.Code)
	airport.Name = input.Name
	airport.City = input.City
	airport.Country = input.Country
	if err := s.airports.Update(ctx, airport); err != nil {
		return nil, err
	}
	return airport, nil
}

func (s *AirportService) Delete(ctx context.Context, id int64) error {
	return s.airports.Delete(ctx, id)
}

func (s *AirportService) List(ctx context.Context) ([]domain.Airport, error) {
	return s.airports.List(ctx)
}

func (s *AirportService) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	return s.airports.GetByID(ctx, id)
}

func validate(input AirportInput) error {
	code := strings.TrimSpace(input.Code)
	if len(code) != 3 {
		return fmt.Errorf("%w: airport code must be 3 letters", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: airport name is required", domain.ErrInvalidInput)
	}
	return nil
}

var _ AirportUseCase = (*AirportService)(nil)
