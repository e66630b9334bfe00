package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salokhin/flightbooking/config"
	"github.com/salokhin/flightbooking/internal/domain"
	"github.com/salokhin/flightbooking/internal/service/status"
)

const (
	searchPrefix     = "cache:search:"
	statusSummaryKey = "cache:status:last_summary"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, key string) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchPrefix+key, payload, c.searchTTL).Err()
}

// SetStatusSummary shares the latest status engine pass between the worker,
// which runs the timer loop, and the app, which serves the stats endpoint.
// No TTL: the latest pass stays readable until the next one overwrites it.
func (c *RedisCache) SetStatusSummary(ctx context.Context, summary status.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusSummaryKey, payload, 0).Err()
}

func (c *RedisCache) GetStatusSummary(ctx context.Context) (*status.Summary, error) {
	data, err := c.client.Get(ctx, statusSummaryKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var summary status.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// InvalidateSearches drops every cached search result. Called after any
// administrative flight mutation.
func (c *RedisCache) InvalidateSearches(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, searchPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
