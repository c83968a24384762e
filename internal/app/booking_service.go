package app

import (
	"context"
	"errors"
	"log/slog"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"

	"github.com/google/uuid"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	GetBookingByHoldID(ctx context.Context, holdID string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, booking domain.Booking) error
	UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error
}

// BookingService finalizes holds into bookings. The FOR UPDATE row lock taken
// inside the transaction is what arbitrates the race with hold expiry: only
// one of BOOKED or EXPIRED can ever be committed for a hold.
type BookingService struct {
	repo     BookingRepository
	markers  MarkerStore
	counters CounterStore
	metrics  MetricsRecomputer
	clock    clock.Clock
	logger   *slog.Logger
}

type BookingServiceDeps struct {
	Repo     BookingRepository
	Markers  MarkerStore
	Counters CounterStore
	Metrics  MetricsRecomputer
	Clock    clock.Clock
}

func NewBookingService(deps BookingServiceDeps, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		repo:     deps.Repo,
		markers:  deps.Markers,
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

type BookingServiceOption func(*BookingService)

func WithBookingLogger(l *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.logger = l
		}
	}
}

type ConfirmBookingInput struct {
	HoldID       string
	PaymentToken string
}

type ConfirmBookingResult struct {
	Booking domain.Booking
	Created bool
}

func (s *BookingService) ConfirmBooking(ctx context.Context, in ConfirmBookingInput) (ConfirmBookingResult, error) {
	if in.HoldID == "" {
		return ConfirmBookingResult{}, domain.ErrInvalidID
	}
	if in.PaymentToken == "" {
		return ConfirmBookingResult{}, domain.ErrInvalidPaymentToken
	}

	now := s.clock.Now()
	var result ConfirmBookingResult
	var eventID string

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, in.HoldID)
		if err != nil {
			return err
		}
		eventID = hold.EventID

		// Token first: callers without the secret learn nothing about the
		// hold's state.
		if hold.PaymentToken != in.PaymentToken {
			return domain.ErrInvalidPaymentToken
		}

		existing, err := s.repo.GetBookingByHoldID(txCtx, in.HoldID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = ConfirmBookingResult{Booking: *existing, Created: false}
			return nil
		}

		switch hold.Status {
		case domain.HoldStatusExpired:
			return domain.ErrHoldExpired
		case domain.HoldStatusActive:
			// A request past the deadline is rejected even if the processor
			// has not flipped the status yet.
			if hold.IsExpired(now) {
				return domain.ErrHoldExpired
			}
		default:
			return domain.ErrHoldNotActive
		}

		booking := domain.Booking{
			ID:         uuid.NewString(),
			HoldID:     in.HoldID,
			BookingRef: newBookingRef(),
			CreatedAt:  now,
		}

		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			// A concurrent confirm won the unique constraint on hold_id;
			// return its booking to keep retries idempotent.
			if errors.Is(err, domain.ErrBookingExists) {
				existing, err := s.repo.GetBookingByHoldID(txCtx, in.HoldID)
				if err != nil {
					return err
				}
				if existing != nil {
					result = ConfirmBookingResult{Booking: *existing, Created: false}
					return nil
				}
			}
			return err
		}
		if err := s.repo.UpdateHoldStatus(txCtx, in.HoldID, domain.HoldStatusBooked); err != nil {
			return err
		}

		result = ConfirmBookingResult{Booking: booking, Created: true}
		return nil
	})
	if err != nil {
		return ConfirmBookingResult{}, err
	}

	if result.Created {
		s.afterConfirm(ctx, in.HoldID, eventID)
		s.logger.Info("booking created",
			"booking_ref", result.Booking.BookingRef,
			"hold_id", in.HoldID,
			"event_id", eventID,
		)
	}
	return result, nil
}

func (s *BookingService) afterConfirm(ctx context.Context, holdID, eventID string) {
	if err := s.markers.ClearHoldExpiry(ctx, holdID); err != nil {
		s.logger.Warn("clear hold expiry marker failed", "hold_id", holdID, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, CounterBookingsCreated); err != nil {
		s.logger.Warn("increment counter failed", "counter", CounterBookingsCreated, "error", err)
	}
	if err := s.counters.IncrementCounter(ctx, eventCounter(CounterBookingsCreated, eventID)); err != nil {
		s.logger.Warn("increment counter failed", "event_id", eventID, "error", err)
	}
	if err := s.metrics.RecomputeEvent(ctx, eventID); err != nil {
		s.logger.Warn("recompute metrics failed", "event_id", eventID, "error", err)
	}
}
