package airports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/salokhin/flightbooking/internal/domain"
)

type MockAirportRepository struct {
	mock.Mock
}

func (m *MockAirportRepository) Create(ctx context.Context, airport *domain.Airport) error {
	args := m.Called(ctx, airport)
	return args.Error(0)
}

func (m *MockAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func (m *MockAirportRepository) Update(ctx context.Context, airport *domain.Airport) error {
	args := m.Called(ctx, airport)
	return args.Error(0)
}

func (m *MockAirportRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAirportService_Create_Success(t *testing.T) {
	mockRepo := &MockAirportRepository{}
	service := NewAirportService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Airport")).Return(nil)

	airport, err := service.Create(context.Background(), AirportInput{
		Code:    "SVO",
		Name:    "Sheremetyevo",
		City:    "Moscow",
		Country: "Russia",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SVO", airport.Code)
	mockRepo.AssertExpectations(t)
}

func TestAirportService_Create_Validation(t *testing.T) {
	mockRepo := &MockAirportRepository{}
	service := NewAirportService(mockRepo)

	tests := []struct {
		name  string
		input AirportInput
	}{
		{"code too short", AirportInput{Code: "SV", Name: "Sheremetyevo"}},
		{"code too long", AirportInput{Code: "SVOX", Name: "Sheremetyevo"}},
		{"missing name", AirportInput{Code: "SVO", Name: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	mockRepo.AssertNotCalled(t, "Create")
}

func TestAirportService_Create_CodeTaken(t *testing.T) {
	mockRepo := &MockAirportRepository{}
	service := NewAirportService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Airport")).
		Return(domain.ErrAirportCodeTaken)

	_, err := service.Create(context.Background(), AirportInput{Code: "SVO", Name: "Sheremetyevo"})

	assert.ErrorIs(t, err, domain.ErrAirportCodeTaken)
	mockRepo.AssertExpectations(t)
}

func TestAirportService_Update_NotFound(t *testing.T) {
	mockRepo := &MockAirportRepository{}
	service := NewAirportService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrAirportNotFound)

	_, err := service.Update(context.Background(), 9, AirportInput{Code: "SVO", Name: "Sheremetyevo"})

	assert.ErrorIs(t, err, domain.ErrAirportNotFound)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestAirportService_Update_Success(t *testing.T) {
	mockRepo := &MockAirportRepository{}
	service := NewAirportService(mockRepo)

	existing := &domain.Airport{ID: 3, Code: "LED", Name: "Pulkovo", City: "Saint Petersburg", Country: "Russia"}
	mockRepo.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, existing).Return(nil)

	airport, err := service.Update(context.Background(), 3, AirportInput{
		Code: "led",
		Name: "Pulkovo Airport",
		City: "Saint Petersburg",
	})

	assert.NoError(t, err)
	assert.Equal(t, "LED", airport.Code)
	assert.Equal(t, "Pulkovo Airport", airport.Name)
	mockRepo.AssertExpectations(t)
}
