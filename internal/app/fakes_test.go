package app

import (
	"context"
	"sync"
	"time"
)

// Shared collaborator fakes for the service tests.

type fakeLocker struct {
	mu       sync.Mutex
	calls    int
	lastKey  string
	acquires []string
	err      error
}

func (f *fakeLocker) WithLock(ctx context.Context, eventID string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.lastKey = eventID
	f.acquires = append(f.acquires, eventID)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}

type scheduledExpiry struct {
	holdID string
	at     time.Time
}

type fakeScheduler struct {
	scheduled []scheduledExpiry
	err       error
}

func (f *fakeScheduler) ScheduleHoldExpiry(_ context.Context, holdID string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, scheduledExpiry{holdID: holdID, at: at})
	return nil
}

type fakeMarkers struct {
	set     []string
	cleared []string
}

func (f *fakeMarkers) SetHoldExpiry(_ context.Context, holdID string, _ time.Duration) error {
	f.set = append(f.set, holdID)
	return nil
}

func (f *fakeMarkers) ClearHoldExpiry(_ context.Context, holdID string) error {
	f.cleared = append(f.cleared, holdID)
	return nil
}

type fakeCounters struct {
	counts map[string]int64
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{counts: make(map[string]int64)}
}

func (f *fakeCounters) IncrementCounter(_ context.Context, name string) error {
	f.counts[name]++
	return nil
}

func (f *fakeCounters) GetCounter(_ context.Context, name string) (int64, error) {
	return f.counts[name], nil
}

type fakeRecomputer struct {
	events []string
	err    error
}

func (f *fakeRecomputer) RecomputeEvent(_ context.Context, eventID string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, eventID)
	return nil
}
