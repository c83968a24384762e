package domain

import "time"

// EventMetrics is derived state: every field is recomputable by rescanning the
// event's holds and bookings. It is a cache, never a source of truth.
type EventMetrics struct {
	EventID       string
	EventName     string
	TotalHolds    int
	TotalBookings int
	TotalExpiries int
	HeldSeats     int
	BookedSeats   int
	ExpiredSeats  int
	UpdatedAt     time.Time
}

// SystemMetrics aggregates counts across all events plus best-effort
// operational counters.
type SystemMetrics struct {
	TotalEvents      int
	TotalActiveHolds int
	TotalBookings    int
	TotalExpiries    int
	HeldSeats        int
	BookedSeats      int
	ExpiredSeats     int
	UptimeSeconds    int64
	Counters         map[string]int64
}
