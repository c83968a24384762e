package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"boxoffice/internal/clock"
	"boxoffice/internal/domain"
)

func TestHoldService_CreateHold(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	type harness struct {
		svc       *HoldService
		repo      *fakeHoldRepo
		locker    *fakeLocker
		scheduler *fakeScheduler
		markers   *fakeMarkers
		counters  *fakeCounters
		metrics   *fakeRecomputer
	}

	makeHarness := func(events []domain.Event, holds []domain.Hold, opts ...HoldServiceOption) harness {
		h := harness{
			repo:      newFakeHoldRepo(events, holds),
			locker:    &fakeLocker{},
			scheduler: &fakeScheduler{},
			markers:   &fakeMarkers{},
			counters:  newFakeCounters(),
			metrics:   &fakeRecomputer{},
		}
		h.svc = NewHoldService(HoldServiceDeps{
			Repo:      h.repo,
			Locker:    h.locker,
			Scheduler: h.scheduler,
			Markers:   h.markers,
			Counters:  h.counters,
			Metrics:   h.metrics,
			Clock:     clock.NewFixed(now),
		}, opts...)
		return h
	}

	t.Run("creates hold when seats available", func(t *testing.T) {
		h := makeHarness(
			[]domain.Event{{ID: "event-1", Name: "Concert", TotalSeats: 100}},
			[]domain.Hold{
				{EventID: "event-1", Qty: 30, Status: domain.HoldStatusActive, ExpiresAt: now.Add(10 * time.Minute)},
				{EventID: "event-1", Qty: 20, Status: domain.HoldStatusBooked},
			},
		)

		hold, err := h.svc.CreateHold(context.Background(), CreateHoldInput{
			EventID: "event-1",
			Qty:     10,
			TTL:     5 * time.Minute,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if hold.ID == "" {
			t.Fatalf("expected hold ID to be set")
		}
		if hold.PaymentToken == "" {
			t.Fatalf("expected payment token to be set")
		}
		if hold.Status != domain.HoldStatusActive {
			t.Fatalf("expected status %s, got %s", domain.HoldStatusActive, hold.Status)
		}
		if hold.ExpiresAt != now.Add(5*time.Minute) {
			t.Fatalf("expected expires_at %v, got %v", now.Add(5*time.Minute), hold.ExpiresAt)
		}
		if len(h.repo.holds) != 3 {
			t.Fatalf("expected 3 holds in repo, got %d", len(h.repo.holds))
		}
		if h.locker.lastKey != "event-1" {
			t.Fatalf("expected lock on event-1, got %q", h.locker.lastKey)
		}
		if len(h.scheduler.scheduled) != 1 || h.scheduler.scheduled[0].holdID != hold.ID {
			t.Fatalf("expected expiry scheduled for %s, got %+v", hold.ID, h.scheduler.scheduled)
		}
		if h.scheduler.scheduled[0].at != hold.ExpiresAt {
			t.Fatalf("expected expiry at %v, got %v", hold.ExpiresAt, h.scheduler.scheduled[0].at)
		}
		if len(h.markers.set) != 1 || h.markers.set[0] != hold.ID {
			t.Fatalf("expected expiry marker for %s, got %v", hold.ID, h.markers.set)
		}
		if h.counters.counts[CounterHoldsCreated] != 1 {
			t.Fatalf("expected holds_created counter 1, got %d", h.counters.counts[CounterHoldsCreated])
		}
		if len(h.metrics.events) != 1 || h.metrics.events[0] != "event-1" {
			t.Fatalf("expected metrics recompute for event-1, got %v", h.metrics.events)
		}
	})

	t.Run("zero ttl uses the default", func(t *testing.T) {
		h := makeHarness(
			[]domain.Event{{ID: "event-1", TotalSeats: 10}},
			nil,
			WithTTLBounds(3*time.Minute, 10*time.Minute),
		)

		hold, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hold.ExpiresAt != now.Add(3*time.Minute) {
			t.Fatalf("expected default ttl applied, got expires_at %v", hold.ExpiresAt)
		}
	})

	t.Run("ttl above max rejected", func(t *testing.T) {
		h := makeHarness([]domain.Event{{ID: "event-1", TotalSeats: 10}}, nil,
			WithTTLBounds(2*time.Minute, 10*time.Minute))

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{
			EventID: "event-1",
			Qty:     1,
			TTL:     time.Hour,
		})
		if !errors.Is(err, domain.ErrInvalidTTL) {
			t.Fatalf("expected ErrInvalidTTL, got %v", err)
		}
	})

	t.Run("negative ttl rejected", func(t *testing.T) {
		h := makeHarness([]domain.Event{{ID: "event-1", TotalSeats: 10}}, nil)

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{
			EventID: "event-1",
			Qty:     1,
			TTL:     -time.Minute,
		})
		if !errors.Is(err, domain.ErrInvalidTTL) {
			t.Fatalf("expected ErrInvalidTTL, got %v", err)
		}
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		h := makeHarness([]domain.Event{{ID: "event-1", TotalSeats: 10}}, nil)

		for _, qty := range []int{0, -3} {
			_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: qty})
			if !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
			}
		}
		if h.locker.calls != 0 {
			t.Fatalf("expected no lock attempts on validation failure, got %d", h.locker.calls)
		}
	})

	t.Run("missing event id rejected", func(t *testing.T) {
		h := makeHarness(nil, nil)

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{Qty: 1})
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("unknown event returns not found", func(t *testing.T) {
		h := makeHarness(nil, nil)

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "missing", Qty: 1})
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("fails when seats exhausted", func(t *testing.T) {
		h := makeHarness(
			[]domain.Event{{ID: "event-1", TotalSeats: 7}},
			[]domain.Hold{
				{EventID: "event-1", Qty: 5, Status: domain.HoldStatusActive, ExpiresAt: now.Add(time.Minute)},
			},
		)

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 3})
		if !errors.Is(err, domain.ErrInsufficientSeats) {
			t.Fatalf("expected ErrInsufficientSeats, got %v", err)
		}
		if len(h.repo.holds) != 1 {
			t.Fatalf("expected holds unchanged on failure, got %d", len(h.repo.holds))
		}
		if len(h.scheduler.scheduled) != 0 {
			t.Fatalf("expected no expiry scheduled on failure, got %+v", h.scheduler.scheduled)
		}
		if h.counters.counts[CounterHoldsCreated] != 0 {
			t.Fatalf("expected no counter bump on failure")
		}
	})

	t.Run("expired and booked seats count separately", func(t *testing.T) {
		// 100 total, 40 active + 30 booked leaves 30; the expired hold is free.
		h := makeHarness(
			[]domain.Event{{ID: "event-1", TotalSeats: 100}},
			[]domain.Hold{
				{EventID: "event-1", Qty: 40, Status: domain.HoldStatusActive, ExpiresAt: now.Add(time.Minute)},
				{EventID: "event-1", Qty: 30, Status: domain.HoldStatusBooked},
				{EventID: "event-1", Qty: 50, Status: domain.HoldStatusExpired},
			},
		)

		hold, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 30})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hold.Qty != 30 {
			t.Fatalf("expected qty 30, got %d", hold.Qty)
		}

		_, err = h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 1})
		if !errors.Is(err, domain.ErrInsufficientSeats) {
			t.Fatalf("expected ErrInsufficientSeats once full, got %v", err)
		}
	})

	t.Run("lock timeout propagates", func(t *testing.T) {
		h := makeHarness([]domain.Event{{ID: "event-1", TotalSeats: 10}}, nil)
		h.locker.err = domain.ErrLockTimeout

		_, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 1})
		if !errors.Is(err, domain.ErrLockTimeout) {
			t.Fatalf("expected ErrLockTimeout, got %v", err)
		}
		if len(h.repo.holds) != 0 {
			t.Fatalf("expected no hold created under lock timeout")
		}
	})

	t.Run("schedule failure does not fail the request", func(t *testing.T) {
		h := makeHarness([]domain.Event{{ID: "event-1", TotalSeats: 10}}, nil)
		h.scheduler.err = errors.New("broker down")

		hold, err := h.svc.CreateHold(context.Background(), CreateHoldInput{EventID: "event-1", Qty: 2})
		if err != nil {
			t.Fatalf("expected hold to be created despite scheduler failure, got %v", err)
		}
		if hold.ID == "" {
			t.Fatalf("expected hold ID to be set")
		}
		if len(h.repo.holds) != 1 {
			t.Fatalf("expected hold persisted, got %d", len(h.repo.holds))
		}
	})
}

type fakeHoldRepo struct {
	events map[string]domain.Event
	holds  []domain.Hold
}

func newFakeHoldRepo(events []domain.Event, holds []domain.Hold) *fakeHoldRepo {
	e := make(map[string]domain.Event)
	for _, event := range events {
		e[event.ID] = event
	}
	return &fakeHoldRepo{
		events: e,
		holds:  append([]domain.Hold{}, holds...),
	}
}

func (f *fakeHoldRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeHoldRepo) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeHoldRepo) SumHeldSeats(_ context.Context, eventID string) (int, error) {
	return f.sumByStatus(eventID, domain.HoldStatusActive), nil
}

func (f *fakeHoldRepo) SumBookedSeats(_ context.Context, eventID string) (int, error) {
	return f.sumByStatus(eventID, domain.HoldStatusBooked), nil
}

func (f *fakeHoldRepo) CreateHold(_ context.Context, hold domain.Hold) error {
	f.holds = append(f.holds, hold)
	return nil
}

func (f *fakeHoldRepo) sumByStatus(eventID string, status domain.HoldStatus) int {
	total := 0
	for _, h := range f.holds {
		if h.EventID != eventID || h.Status != status {
			continue
		}
		total += h.Qty
	}
	return total
}
