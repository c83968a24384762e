// Package lock provides a Redis-backed named mutex used to serialize hold
// creation per event. The lease auto-expires so a crashed holder cannot block
// an event forever; the authoritative state stays in Postgres either way.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix = "lock:event_hold:"
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token, so a
// holder whose lease expired cannot release a lock reacquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type EventLocker struct {
	client *redis.Client
	wait   time.Duration
	lease  time.Duration
}

func NewEventLocker(client *redis.Client, wait, lease time.Duration) *EventLocker {
	return &EventLocker{
		client: client,
		wait:   wait,
		lease:  lease,
	}
}

// WithLock runs fn while holding the event's lock. It blocks up to the
// configured wait and returns domain.ErrLockTimeout when the lock cannot be
// acquired in time. The lock is released on every exit path.
func (l *EventLocker) WithLock(ctx context.Context, eventID string, fn func(ctx context.Context) error) error {
	key := lockKeyPrefix + eventID
	token := uuid.NewString()

	acquired, err := l.acquire(ctx, key, token)
	if err != nil {
		return err
	}
	if !acquired {
		return domain.ErrLockTimeout
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Result()
	}()

	return fn(ctx)
}

func (l *EventLocker) acquire(ctx context.Context, key, token string) (bool, error) {
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return false, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return false, nil
			}
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
