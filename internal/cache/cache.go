// Package cache holds the best-effort Redis state: per-hold expiry markers
// and operational counters. Nothing here is authoritative; the engine must
// stay correct if every key vanishes.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterTTL = 24 * time.Hour

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func holdExpiryKey(holdID string) string {
	return fmt.Sprintf("hold_expiry:%s", holdID)
}

func counterKey(name string) string {
	return fmt.Sprintf("metric:%s", name)
}

// SetHoldExpiry publishes a TTL marker mirroring the hold's deadline. External
// tooling watches these keys; expiry itself is driven by the database row.
func (s *Store) SetHoldExpiry(ctx context.Context, holdID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, holdExpiryKey(holdID), holdID, ttl).Err()
}

func (s *Store) ClearHoldExpiry(ctx context.Context, holdID string) error {
	return s.client.Del(ctx, holdExpiryKey(holdID)).Err()
}

// IncrementCounter bumps a monotonic operational counter. Counters carry a TTL
// so abandoned names do not accumulate.
func (s *Store) IncrementCounter(ctx context.Context, name string) error {
	key := counterKey(name)
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) GetCounter(ctx context.Context, name string) (int64, error) {
	val, err := s.client.Get(ctx, counterKey(name)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
