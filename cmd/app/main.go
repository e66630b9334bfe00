package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salokhin/flightbooking/api"
	"github.com/salokhin/flightbooking/config"
	"github.com/salokhin/flightbooking/internal/bootstrap"
	"github.com/salokhin/flightbooking/internal/cache"
	"github.com/salokhin/flightbooking/internal/kafka"
	"github.com/salokhin/flightbooking/internal/repository"
	"github.com/salokhin/flightbooking/internal/service/airports"
	"github.com/salokhin/flightbooking/internal/service/booking"
	"github.com/salokhin/flightbooking/internal/service/flights"
	"github.com/salokhin/flightbooking/internal/service/inventory"
	"github.com/salokhin/flightbooking/internal/service/status"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	airportRepo := repository.NewAirportRepository(pool)
	txManager := repository.NewTxManager(pool)

	seatInventory := inventory.NewManager(flightRepo)
	flightService := flights.NewFlightService(flightRepo, airportRepo, seatInventory, redisCache)
	airportService := airports.NewAirportService(airportRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		seatInventory,
		txManager,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferenceRetries(cfg.Booking.ReferenceRetries),
	)

	// The engine instance here only serves the manual admin trigger and the
	// stats endpoint; the timer loop lives in cmd/worker. The shared summary
	// store makes the worker's passes visible here.
	engine := status.NewEngine(flightRepo,
		status.WithProducer(producer, cfg.Kafka.NotificationsTopic),
		status.WithSummaryStore(redisCache),
	)

	router := api.NewRouter(
		cfg.Auth.JWTSecret,
		api.NewFlightHandler(flightService),
		api.NewBookingHandler(bookingService),
		api.NewAirportHandler(airportService),
		api.NewAdminHandler(flightService, bookingService, engine),
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
