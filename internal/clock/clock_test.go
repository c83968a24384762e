package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixed(at)

	if c.Now() != at {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
	if c.Now() != c.Now() {
		t.Fatalf("expected fixed clock to be stable")
	}
}

func TestStepping(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewStepping(at)

	if c.Now() != at {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}

	c.Advance(90 * time.Second)
	if c.Now() != at.Add(90*time.Second) {
		t.Fatalf("expected %v, got %v", at.Add(90*time.Second), c.Now())
	}
}

func TestSystem(t *testing.T) {
	t.Parallel()

	c := NewSystem()
	now := c.Now()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", now.Location())
	}
	if time.Since(now) > time.Minute {
		t.Fatalf("system clock far from wall time: %v", now)
	}
}
