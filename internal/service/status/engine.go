// Package status advances flights through their operational states as
// wall-clock time passes their departure and arrival times.
package status

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/kafka"
)

type FlightStore interface {
	FindByStatusIn(ctx context.Context, statuses []domain.FlightStatus) ([]domain.Flight, error)
	UpdateStatus(ctx context.Context, flightID int64, from, to domain.FlightStatus) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// SummaryStore shares the result of the latest pass across processes: the
// timer loop runs in the worker while the admin stats endpoint is served by
// the app.
type SummaryStore interface {
	SetStatusSummary(ctx context.Context, summary Summary) error
	GetStatusSummary(ctx context.Context) (*Summary, error)
}

// Summary reports what one evaluation pass did.
type Summary struct {
	RanAt     time.Time `json:"ran_at"`
	Evaluated int       `json:"evaluated"`
	Delayed   int       `json:"delayed"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
}

type Engine struct {
	flights FlightStore
	now     func() time.Time

	producer Producer
	topic    string
	store    SummaryStore

	mu   sync.Mutex
	last *Summary
}

type EngineOption func(*Engine)

// WithClock replaces the wall clock, used by tests to pin evaluation time.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithProducer(producer Producer, topic string) EngineOption {
	return func(e *Engine) {
		e.producer = producer
		e.topic = topic
	}
}

func WithSummaryStore(store SummaryStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

func NewEngine(flights FlightStore, opts ...EngineOption) *Engine {
	engine := &Engine{
		flights: flights,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run evaluates on a fixed interval until the context is cancelled. The
// timer-driven pass and the manual RunOnce are the same code path.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil {
				log.Printf("status: evaluation pass failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce reclassifies every SCHEDULED or DELAYED flight against the current
// time. A failure on one flight is logged and the rest of the batch still
// runs. Re-running with no time elapsed changes nothing: every transition is
// guarded by the flight's expected current status.
func (e *Engine) RunOnce(ctx context.Context) (Summary, error) {
	now := e.now()
	summary := Summary{RanAt: now}

	flights, err := e.flights.FindByStatusIn(ctx, []domain.FlightStatus{domain.FlightStatusScheduled, domain.FlightStatusDelayed})
	if err != nil {
		return summary, err
	}
	summary.Evaluated = len(flights)

	for _, flight := range flights {
		next, ok := nextStatus(flight, now)
		if !ok {
			continue
		}
		if err := e.flights.UpdateStatus(ctx, flight.ID, flight.Status, next); err != nil {
			// A status conflict means another writer got there first; the
			// transition is already done or no longer applies.
			if errors.Is(err, domain.ErrStatusConflict) {
				continue
			}
			summary.Failed++
			log.Printf("status: flight %s: update to %s failed: %v", flight.FlightNumber, next, err)
			continue
		}
		switch next {
		case domain.FlightStatusDelayed:
			summary.Delayed++
		case domain.FlightStatusCompleted:
			summary.Completed++
		}
		log.Printf("status: flight %s marked %s (departure %s, arrival %s)", flight.FlightNumber, next, flight.DepartureTime.Format(time.RFC3339), flight.ArrivalTime.Format(time.RFC3339))
		e.publish(ctx, flight, next)
	}

	e.mu.Lock()
	e.last = &summary
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SetStatusSummary(ctx, summary); err != nil {
			log.Printf("status: failed to store pass summary: %v", err)
		}
	}
	return summary, nil
}

// LastSummary returns the result of the most recent pass, if any ran. The
// shared store is consulted first so an engine that never ticked locally
// still sees passes run by the other process.
func (e *Engine) LastSummary(ctx context.Context) (Summary, bool) {
	if e.store != nil {
		if summary, err := e.store.GetStatusSummary(ctx); err == nil && summary != nil {
			return *summary, true
		} else if err != nil {
			log.Printf("status: failed to load pass summary: %v", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Summary{}, false
	}
	return *e.last, true
}

// nextStatus applies the transition rule for a single flight. Completion
// takes precedence: a flight past its arrival time is COMPLETED even if it
// never went through DELAYED.
func nextStatus(flight domain.Flight, now time.Time) (domain.FlightStatus, bool) {
	if now.After(flight.ArrivalTime) {
		return domain.FlightStatusCompleted, true
	}
	if now.After(flight.DepartureTime) && now.Before(flight.ArrivalTime) && flight.Status == domain.FlightStatusScheduled {
		return domain.FlightStatusDelayed, true
	}
	return "", false
}

func (e *Engine) publish(ctx context.Context, flight domain.Flight, status domain.FlightStatus) {
	if e.producer == nil || e.topic == "" {
		return
	}
	event := kafka.FlightEvent{
		Type:          kafka.EventFlightStatusChanged,
		FlightID:      flight.ID,
		FlightNumber:  flight.FlightNumber,
		Status:        string(status),
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
	}
	if err := e.producer.Publish(ctx, e.topic, flight.FlightNumber, event); err != nil {
		log.Printf("status: failed to publish status event for flight %s: %v", flight.FlightNumber, err)
	}
}
