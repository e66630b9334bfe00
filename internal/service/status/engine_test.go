package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/salokhin/flightbooking/internal/domain"
)

// fakeFlightStore keeps flights in memory with the same guarded-transition
// semantics as the Postgres repository.
type fakeFlightStore struct {
	mu      sync.Mutex
	flights map[int64]*domain.Flight
	failIDs map[int64]bool
}

func newFakeFlightStore(flights ...*domain.Flight) *fakeFlightStore {
	store := &fakeFlightStore{flights: map[int64]*domain.Flight{}, failIDs: map[int64]bool{}}
	for _, f := range flights {
		store.flights[f.ID] = f
	}
	return store
}

func (s *fakeFlightStore) FindByStatusIn(ctx context.Context, statuses []domain.FlightStatus) ([]domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Flight
	for _, f := range s.flights {
		for _, status := range statuses {
			if f.Status == status {
				out = append(out, *f)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeFlightStore) UpdateStatus(ctx context.Context, flightID int64, from, to domain.FlightStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[flightID] {
		return errors.New("store unavailable")
	}
	f, ok := s.flights[flightID]
	if !ok {
		return domain.ErrFlightNotFound
	}
	if f.Status != from {
		return domain.ErrStatusConflict
	}
	f.Status = to
	return nil
}

func (s *fakeFlightStore) statusOf(flightID int64) domain.FlightStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flights[flightID].Status
}

func fixedClock(at time.Time) EngineOption {
	return WithClock(func() time.Time { return at })
}

func scheduledFlight(id int64, departure, arrival time.Time) *domain.Flight {
	return &domain.Flight{
		ID:            id,
		FlightNumber:  "FB100",
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Status:        domain.FlightStatusScheduled,
	}
}

func TestEngine_RunOnce_Transitions(t *testing.T) {
	departure := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	arrival := departure.Add(2 * time.Hour)

	testCases := []struct {
		name     string
		now      time.Time
		start    domain.FlightStatus
		expected domain.FlightStatus
	}{
		{
			name:     "before departure stays scheduled",
			now:      departure.Add(-time.Hour),
			start:    domain.FlightStatusScheduled,
			expected: domain.FlightStatusScheduled,
		},
		{
			name:     "past departure becomes delayed",
			now:      departure.Add(time.Hour),
			start:    domain.FlightStatusScheduled,
			expected: domain.FlightStatusDelayed,
		},
		{
			name:     "past arrival becomes completed",
			now:      arrival.Add(time.Hour),
			start:    domain.FlightStatusScheduled,
			expected: domain.FlightStatusCompleted,
		},
		{
			name:     "delayed flight completes after arrival",
			now:      arrival.Add(time.Hour),
			start:    domain.FlightStatusDelayed,
			expected: domain.FlightStatusCompleted,
		},
		{
			name:     "delayed flight stays delayed before arrival",
			now:      arrival.Add(-time.Minute),
			start:    domain.FlightStatusDelayed,
			expected: domain.FlightStatusDelayed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			flight := scheduledFlight(1, departure, arrival)
			flight.Status = tc.start
			store := newFakeFlightStore(flight)

			engine := NewEngine(store, fixedClock(tc.now))
			_, err := engine.RunOnce(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, store.statusOf(1))
		})
	}
}

func TestEngine_RunOnce_Idempotent(t *testing.T) {
	departure := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	now := departure.Add(time.Hour)
	store := newFakeFlightStore(scheduledFlight(1, departure, departure.Add(2*time.Hour)))
	engine := NewEngine(store, fixedClock(now))

	first, err := engine.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Delayed)
	assert.Equal(t, domain.FlightStatusDelayed, store.statusOf(1))

	second, err := engine.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Delayed)
	assert.Equal(t, 0, second.Completed)
	assert.Equal(t, domain.FlightStatusDelayed, store.statusOf(1))
}

func TestEngine_RunOnce_FailureIsolatedPerFlight(t *testing.T) {
	departure := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	arrival := departure.Add(2 * time.Hour)
	store := newFakeFlightStore(
		scheduledFlight(1, departure, arrival),
		scheduledFlight(2, departure, arrival),
		scheduledFlight(3, departure, arrival),
	)
	store.failIDs[2] = true

	engine := NewEngine(store, fixedClock(arrival.Add(time.Hour)))
	summary, err := engine.RunOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.Evaluated)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.FlightStatusCompleted, store.statusOf(1))
	assert.Equal(t, domain.FlightStatusScheduled, store.statusOf(2))
	assert.Equal(t, domain.FlightStatusCompleted, store.statusOf(3))
}

func TestEngine_LastSummary(t *testing.T) {
	store := newFakeFlightStore()
	engine := NewEngine(store)
	ctx := context.Background()

	_, ok := engine.LastSummary(ctx)
	assert.False(t, ok)

	_, err := engine.RunOnce(ctx)
	assert.NoError(t, err)

	summary, ok := engine.LastSummary(ctx)
	assert.True(t, ok)
	assert.Equal(t, 0, summary.Evaluated)
}

// fakeSummaryStore stands in for the redis-backed store shared between the
// worker and the app.
type fakeSummaryStore struct {
	mu   sync.Mutex
	last *Summary
}

func (s *fakeSummaryStore) SetStatusSummary(ctx context.Context, summary Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &summary
	return nil
}

func (s *fakeSummaryStore) GetStatusSummary(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

// A pass run by one engine must be visible through another engine sharing
// the same store, as happens between the worker's timer loop and the app's
// stats endpoint.
func TestEngine_LastSummary_SharedAcrossEngines(t *testing.T) {
	departure := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	store := newFakeFlightStore(scheduledFlight(1, departure, departure.Add(2*time.Hour)))
	summaries := &fakeSummaryStore{}
	ctx := context.Background()

	runner := NewEngine(store, fixedClock(departure.Add(3*time.Hour)), WithSummaryStore(summaries))
	observer := NewEngine(store, WithSummaryStore(summaries))

	_, ok := observer.LastSummary(ctx)
	assert.False(t, ok)

	_, err := runner.RunOnce(ctx)
	assert.NoError(t, err)

	summary, ok := observer.LastSummary(ctx)
	assert.True(t, ok)
	assert.Equal(t, 1, summary.Evaluated)
	assert.Equal(t, 1, summary.Completed)
}

func TestNextStatus_CompletedTakesPrecedence(t *testing.T) {
	departure := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	flight := *scheduledFlight(1, departure, departure.Add(2*time.Hour))

	// Past arrival, never marked delayed: completion wins outright.
	next, changed := nextStatus(flight, departure.Add(3*time.Hour))
	assert.True(t, changed)
	assert.Equal(t, domain.FlightStatusCompleted, next)

	// Exactly at departure nothing happens yet.
	_, changed = nextStatus(flight, departure)
	assert.False(t, changed)
}
