package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/salokhin/flightbooking/config"
	"github.com/salokhin/flightbooking/internal/cache"
	"github.com/salokhin/flightbooking/internal/email"
	"github.com/salokhin/flightbooking/internal/kafka"
	"github.com/salokhin/flightbooking/internal/repository"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)

	flightRepo := repository.NewFlightRepository(pool)
	engine := status.NewEngine(flightRepo,
		status.WithProducer(producer, cfg.Kafka.NotificationsTopic),
		status.WithSummaryStore(redisCache),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			return handleNotification(ctx, emailSender, msg)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	log.Printf("status engine running every %d minutes", cfg.Scheduler.StatusIntervalMinutes)
	engine.Run(ctx, time.Duration(cfg.Scheduler.StatusIntervalMinutes)*time.Minute)
}

// handleNotification fans a notifications-topic message out to the email
// sender. Unknown or malformed payloads are logged and dropped so one bad
// message cannot wedge the consumer group.
func handleNotification(ctx context.Context, sender *email.Sender, msg kafkaGo.Message) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Value, &probe); err != nil {
		log.Printf("decode notification: %v", err)
		return nil
	}

	switch probe.Type {
	case kafka.EventBookingConfirmed, kafka.EventBookingCancelled:
		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode booking event: %v", err)
			return nil
		}
		return sender.SendBooking(ctx, event)
	case kafka.EventFlightStatusChanged:
		var event kafka.FlightEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode flight event: %v", err)
			return nil
		}
		return sender.SendFlight(ctx, event)
	default:
		log.Printf("skipping unknown notification type %q", probe.Type)
		return nil
	}
}
