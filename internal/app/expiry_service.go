package app

import (
	"context"
	"log/slog"
	"time"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"
)

type ExpiryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetActiveHoldForUpdate(ctx context.Context, holdID string) (*domain.Hold, error)
	UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error
	ListDueHoldIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// ExpiryService drives ACTIVE -> EXPIRED. It is safe under at-least-once task
// delivery: a hold that is already terminal simply does not match the locked
// query and the call becomes a no-op.
type ExpiryService struct {
	repo     ExpiryRepository
	markers  MarkerStore
	counters CounterStore
	metrics  MetricsRecomputer
	clock    clock.Clock
	logger   *slog.Logger

	sweepBatchSize int
}

type ExpiryServiceDeps struct {
	Repo     ExpiryRepository
	Markers  MarkerStore
	Counters CounterStore
	Metrics  MetricsRecomputer
	Clock    clock.Clock
}

const defaultSweepBatchSize = 500

func NewExpiryService(deps ExpiryServiceDeps, opts ...ExpiryServiceOption) *ExpiryService {
	svc := &ExpiryService{
		repo:           deps.Repo,
		markers:        deps.Markers,
		counters:       deps.Counters,
		metrics:        deps.Metrics,
		clock:          deps.Clock,
		logger:         slog.Default(),
		sweepBatchSize: defaultSweepBatchSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExpiryServiceOption func(*ExpiryService)

func WithSweepBatchSize(n int) ExpiryServiceOption {
	return func(s *ExpiryService) {
		if n > 0 {
			s.sweepBatchSize = n
		}
	}
}

func WithExpiryLogger(l *slog.Logger) ExpiryServiceOption {
	return func(s *ExpiryService) {
		if l != nil {
			s.logger = l
		}
	}
}

// ProcessHoldExpiry transitions the hold to EXPIRED if it is still ACTIVE and
// past its deadline. Idempotent: duplicate or late deliveries are no-ops.
func (s *ExpiryService) ProcessHoldExpiry(ctx context.Context, holdID string) error {
	now := s.clock.Now()
	var expired *domain.Hold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetActiveHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold == nil {
			// Already booked, already expired, or never existed.
			s.logger.Debug("expiry no-op, hold not active", "hold_id", holdID)
			return nil
		}
		if hold.ExpiresAt.After(now) {
			s.logger.Warn("expiry fired before deadline, skipping",
				"hold_id", holdID, "expires_at", hold.ExpiresAt)
			return nil
		}

		if err := s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusExpired); err != nil {
			return err
		}
		expired = hold
		return nil
	})
	if err != nil {
		return err
	}
	if expired == nil {
		return nil
	}

	s.afterExpire(ctx, *expired)
	s.logger.Info("hold expired",
		"hold_id", expired.ID,
		"event_id", expired.EventID,
		"qty", expired.Qty,
	)
	return nil
}

// SweepDueHolds expires every overdue ACTIVE hold it can find, up to the batch
// size. It backstops lost or failed scheduled tasks; per-hold errors are
// logged and the sweep moves on.
func (s *ExpiryService) SweepDueHolds(ctx context.Context) (int, error) {
	ids, err := s.repo.ListDueHoldIDs(ctx, s.clock.Now(), s.sweepBatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		if err := s.ProcessHoldExpiry(ctx, id); err != nil {
			s.logger.Error("sweep: expire hold failed", "hold_id", id, "error", err)
			continue
		}
		processed++
	}
	if processed > 0 {
		s.logger.Info("sweep completed", "due", len(ids), "processed", processed)
	}
	return processed, nil
}

func (s *ExpiryService) afterExpire(ctx context.Context, hold domain.Hold) {
	if err := s.markers.ClearHoldExpiry(ctx, hold.ID); err != nil {
		s.logger.Warn("clear hold expiry marker failed", "hold_id", hold.ID, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, CounterHoldsExpired); err != nil {
		s.logger.Warn("increment counter failed", "counter", CounterHoldsExpired, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, eventCounter(CounterHoldsExpired, hold.EventID)); err != nil {
		s.logger.Warn("increment counter failed", "event_id", hold.EventID, "error", err)
	}
	if err := s.metrics.RecomputeEvent(ctx, hold.EventID); err != nil {
		s.logger.Warn("recompute metrics failed", "event_id", hold.EventID, "error", err)
	}
}
