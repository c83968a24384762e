package app

import (
	"context"
	"log/slog"
	"time"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"
)

type MetricsRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	RecountEvent(ctx context.Context, eventID string) (domain.EventMetrics, error)
	UpsertEventMetrics(ctx context.Context, m domain.EventMetrics) error
	GetEventMetrics(ctx context.Context, eventID string) (domain.EventMetrics, error)
	SystemCounts(ctx context.Context) (domain.SystemMetrics, error)
}

type CounterReader interface {
	GetCounter(ctx context.Context, name string) (int64, error)
}

// MetricsService maintains derived counters by full recomputation. It owns no
// state of its own: everything it writes can be rebuilt from holds and
// bookings at any time.
type MetricsService struct {
	repo      MetricsRepository
	counters  CounterReader
	clock     clock.Clock
	logger    *slog.Logger
	startedAt time.Time
}

func NewMetricsService(repo MetricsRepository, counters CounterReader, clk clock.Clock, opts ...MetricsServiceOption) *MetricsService {
	svc := &MetricsService{
		repo:      repo,
		counters:  counters,
		clock:     clk,
		logger:    slog.Default(),
		startedAt: clk.Now(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type MetricsServiceOption func(*MetricsService)

func WithMetricsLogger(l *slog.Logger) MetricsServiceOption {
	return func(s *MetricsService) {
		if l != nil {
			s.logger = l
		}
	}
}

// RecomputeEvent rescans the event's holds and overwrites its stored counters.
// Idempotent and safe to run concurrently with anything.
func (s *MetricsService) RecomputeEvent(ctx context.Context, eventID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		m, err := s.repo.RecountEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		m.UpdatedAt = s.clock.Now()
		return s.repo.UpsertEventMetrics(txCtx, m)
	})
}

// GetEventMetrics refreshes and returns the event's counters. Recomputing on
// read keeps the response honest even if a post-transition refresh was lost.
func (s *MetricsService) GetEventMetrics(ctx context.Context, eventID string) (domain.EventMetrics, error) {
	if eventID == "" {
		return domain.EventMetrics{}, domain.ErrInvalidID
	}
	if err := s.RecomputeEvent(ctx, eventID); err != nil {
		return domain.EventMetrics{}, err
	}
	return s.repo.GetEventMetrics(ctx, eventID)
}

var systemCounterNames = []string{
	CounterEventsCreated,
	CounterHoldsCreated,
	CounterHoldsExpired,
	CounterBookingsCreated,
}

func (s *MetricsService) GetSystemMetrics(ctx context.Context) (domain.SystemMetrics, error) {
	m, err := s.repo.SystemCounts(ctx)
	if err != nil {
		return domain.SystemMetrics{}, err
	}

	m.UptimeSeconds = int64(s.clock.Now().Sub(s.startedAt).Seconds())
	m.Counters = make(map[string]int64, len(systemCounterNames))
	for _, name := range systemCounterNames {
		val, err := s.counters.GetCounter(ctx, name)
		if err != nil {
			// Counters are best effort; report zero rather than failing.
			s.logger.Warn("read counter failed", "counter", name, "error", err)
			continue
		}
		m.Counters[name] = val
	}
	return m, nil
}
