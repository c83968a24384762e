package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventLocker serializes hold creation per event. Implementations must bound
// both the wait for acquisition and the lease held, and release on every path.
type EventLocker interface {
	WithLock(ctx context.Context, eventID string, fn func(ctx context.Context) error) error
}

// ExpiryScheduler registers a delayed expiry check for a hold. Delivery is
// at-least-once; the processor absorbs duplicates.
type ExpiryScheduler interface {
	ScheduleHoldExpiry(ctx context.Context, holdID string, at time.Time) error
}

// MarkerStore publishes best-effort expiry markers. Losing every marker must
// not affect correctness.
type MarkerStore interface {
	SetHoldExpiry(ctx context.Context, holdID string, ttl time.Duration) error
	ClearHoldExpiry(ctx context.Context, holdID string) error
}

// CounterStore tracks eventually-consistent operational tallies.
type CounterStore interface {
	IncrementCounter(ctx context.Context, name string) error
}

// MetricsRecomputer refreshes an event's derived counters from authoritative
// state.
type MetricsRecomputer interface {
	RecomputeEvent(ctx context.Context, eventID string) error
}

const (
	CounterEventsCreated   = "events_created"
	CounterHoldsCreated    = "holds_created"
	CounterHoldsExpired    = "holds_expired"
	CounterBookingsCreated = "bookings_created"
)

func eventCounter(name, eventID string) string {
	return fmt.Sprintf("%s_event_%s", name, eventID)
}

// newBookingRef generates a human-facing booking reference like BK-3F9A01CD.
func newBookingRef() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:8])
}
