package app

import (
	"context"
	"log/slog"
	"time"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"

	"github.com/google/uuid"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	SumHeldSeats(ctx context.Context, eventID string) (int, error)
	SumBookedSeats(ctx context.Context, eventID string) (int, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
}

// HoldService is the hold coordinator: it serializes creation per event behind
// the distributed lock, re-checks availability against the store, and wires up
// the expiry machinery for each new hold.
type HoldService struct {
	repo      HoldRepository
	locker    EventLocker
	scheduler ExpiryScheduler
	markers   MarkerStore
	counters  CounterStore
	metrics   MetricsRecomputer
	clock     clock.Clock
	logger    *slog.Logger

	defaultTTL time.Duration
	maxTTL     time.Duration
}

type HoldServiceDeps struct {
	Repo      HoldRepository
	Locker    EventLocker
	Scheduler ExpiryScheduler
	Markers   MarkerStore
	Counters  CounterStore
	Metrics   MetricsRecomputer
	Clock     clock.Clock
}

const (
	defaultHoldTTL = 2 * time.Minute
	defaultMaxTTL  = 30 * time.Minute
)

func NewHoldService(deps HoldServiceDeps, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:       deps.Repo,
		locker:     deps.Locker,
		scheduler:  deps.Scheduler,
		markers:    deps.Markers,
		counters:   deps.Counters,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		logger:     slog.Default(),
		defaultTTL: defaultHoldTTL,
		maxTTL:     defaultMaxTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithTTLBounds overrides the default and maximum TTL for new holds.
func WithTTLBounds(def, max time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if def > 0 {
			s.defaultTTL = def
		}
		if max > 0 {
			s.maxTTL = max
		}
	}
}

func WithHoldLogger(l *slog.Logger) HoldServiceOption {
	return func(s *HoldService) {
		if l != nil {
			s.logger = l
		}
	}
}

type CreateHoldInput struct {
	EventID string
	Qty     int
	// TTL of zero means "use the configured default".
	TTL time.Duration
}

func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	if in.EventID == "" {
		return domain.Hold{}, domain.ErrInvalidID
	}
	if in.Qty <= 0 {
		return domain.Hold{}, domain.ErrInvalidQuantity
	}

	ttl := in.TTL
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl < 0 || ttl > s.maxTTL {
		return domain.Hold{}, domain.ErrInvalidTTL
	}

	now := s.clock.Now()
	var hold domain.Hold

	err := s.locker.WithLock(ctx, in.EventID, func(lockCtx context.Context) error {
		err := s.repo.WithTx(lockCtx, func(txCtx context.Context) error {
			event, err := s.repo.GetEvent(txCtx, in.EventID)
			if err != nil {
				return err
			}

			held, err := s.repo.SumHeldSeats(txCtx, in.EventID)
			if err != nil {
				return err
			}
			booked, err := s.repo.SumBookedSeats(txCtx, in.EventID)
			if err != nil {
				return err
			}

			available := event.TotalSeats - held - booked
			if available < 0 {
				available = 0
			}
			if in.Qty > available {
				return domain.ErrInsufficientSeats
			}

			hold = domain.Hold{
				ID:           uuid.NewString(),
				EventID:      in.EventID,
				Qty:          in.Qty,
				Status:       domain.HoldStatusActive,
				ExpiresAt:    now.Add(ttl),
				PaymentToken: uuid.NewString(),
				CreatedAt:    now,
			}
			return s.repo.CreateHold(txCtx, hold)
		})
		if err != nil {
			return err
		}

		// The hold is committed. Everything past this point is best effort:
		// a lost marker or schedule is healed by the fallback sweep.
		s.afterCreate(lockCtx, hold, ttl)
		return nil
	})
	if err != nil {
		return domain.Hold{}, err
	}

	s.logger.Info("hold created",
		"hold_id", hold.ID,
		"event_id", hold.EventID,
		"qty", hold.Qty,
		"expires_at", hold.ExpiresAt,
	)
	return hold, nil
}

func (s *HoldService) afterCreate(ctx context.Context, hold domain.Hold, ttl time.Duration) {
	if err := s.markers.SetHoldExpiry(ctx, hold.ID, ttl); err != nil {
		s.logger.Warn("set hold expiry marker failed", "hold_id", hold.ID, "error", err)
	}
	if err := s.scheduler.ScheduleHoldExpiry(ctx, hold.ID, hold.ExpiresAt); err != nil {
		s.logger.Error("schedule hold expiry failed, sweep will pick it up",
			"hold_id", hold.ID, "expires_at", hold.ExpiresAt, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, CounterHoldsCreated); err != nil {
		s.logger.Warn("increment counter failed", "counter", CounterHoldsCreated, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, eventCounter(CounterHoldsCreated, hold.EventID)); err != nil {
		s.logger.Warn("increment counter failed", "event_id", hold.EventID, "error", err)
	}
	if err := s.metrics.RecomputeEvent(ctx, hold.EventID); err != nil {
		s.logger.Warn("recompute metrics failed", "event_id", hold.EventID, "error", err)
	}
}
