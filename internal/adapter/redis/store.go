// Package redis keeps the last canonical record of every sensor in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "weather:last:"
	opTimeout = 2 * time.Second
)

// Store is a last-reading snapshot store.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore connects to the configured Redis and verifies it with a ping.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
	})

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
	return newStore(rdb, cfg.RedisTTL, logger), nil
}

func newStore(rdb *goredis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{client: rdb, ttl: ttl, logger: logger}
}

// Key returns the snapshot key for a formatted sensor id.
func Key(sensorID string) string {
	return keyPrefix + sensorID
}

// Save overwrites the snapshot for rec's sensor.
func (s *Store) Save(ctx context.Context, rec domain.CanonicalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.client.Set(ctx, Key(rec.SensorID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store record %s: %w", rec.SensorID, err)
	}
	return nil
}

// Record saves rec and logs a failure. Its signature matches
// pipeline.Subscriber.
func (s *Store) Record(ctx context.Context, rec domain.CanonicalRecord) {
	if err := s.Save(ctx, rec); err != nil {
		s.logger.Warn("snapshot save failed", "error", err)
	}
}

// Latest returns the stored snapshot for sensorID, or an error wrapping
// domain.ErrNoReading when there is none.
func (s *Store) Latest(ctx context.Context, sensorID string) (domain.CanonicalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, Key(sensorID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.CanonicalRecord{}, fmt.Errorf("%w: %s", domain.ErrNoReading, sensorID)
	}
	if err != nil {
		return domain.CanonicalRecord{}, fmt.Errorf("load record %s: %w", sensorID, err)
	}

	var rec domain.CanonicalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CanonicalRecord{}, fmt.Errorf("decode record %s: %w", sensorID, err)
	}
	return rec, nil
}

// CheckReadiness pings Redis.
func (s *Store) CheckReadiness(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
