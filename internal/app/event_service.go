package app

import (
	"context"
	"log/slog"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"

	"github.com/google/uuid"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	SumHeldSeats(ctx context.Context, eventID string) (int, error)
	SumBookedSeats(ctx context.Context, eventID string) (int, error)
}

type EventService struct {
	repo     EventRepository
	counters CounterStore
	metrics  MetricsRecomputer
	clock    clock.Clock
	logger   *slog.Logger
}

type EventServiceDeps struct {
	Repo     EventRepository
	Counters CounterStore
	Metrics  MetricsRecomputer
	Clock    clock.Clock
}

func NewEventService(deps EventServiceDeps, opts ...EventServiceOption) *EventService {
	svc := &EventService{
		repo:     deps.Repo,
		counters: deps.Counters,
		metrics:  deps.Metrics,
		clock:    deps.Clock,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type EventServiceOption func(*EventService)

func WithEventLogger(l *slog.Logger) EventServiceOption {
	return func(s *EventService) {
		if l != nil {
			s.logger = l
		}
	}
}

type CreateEventInput struct {
	Name       string
	TotalSeats int
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	if in.TotalSeats <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}

	event := domain.Event{
		ID:         uuid.NewString(),
		Name:       in.Name,
		TotalSeats: in.TotalSeats,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}

	// Seed the metrics row so reads never miss.
	if err := s.metrics.RecomputeEvent(ctx, event.ID); err != nil {
		s.logger.Warn("seed event metrics failed", "event_id", event.ID, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, CounterEventsCreated); err != nil {
		s.logger.Warn("increment counter failed", "counter", CounterEventsCreated, "error", err)
	}

	s.logger.Info("event created",
		"event_id", event.ID,
		"name", event.Name,
		"total_seats", event.TotalSeats,
	)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

// GetAvailability computes live seat counts inside one transaction so the
// event row and both sums come from a consistent snapshot.
func (s *EventService) GetAvailability(ctx context.Context, eventID string) (domain.Availability, error) {
	if eventID == "" {
		return domain.Availability{}, domain.ErrInvalidID
	}

	var avail domain.Availability
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		held, err := s.repo.SumHeldSeats(txCtx, eventID)
		if err != nil {
			return err
		}
		booked, err := s.repo.SumBookedSeats(txCtx, eventID)
		if err != nil {
			return err
		}

		available := event.TotalSeats - held - booked
		if available < 0 {
			available = 0
		}
		avail = domain.Availability{
			EventID:   event.ID,
			Name:      event.Name,
			Total:     event.TotalSeats,
			Available: available,
			Held:      held,
			Booked:    booked,
		}
		return nil
	})
	if err != nil {
		return domain.Availability{}, err
	}
	return avail, nil
}
