package domain

import "time"

// Event represents a ticketed event with a fixed seat inventory.
type Event struct {
	ID         string
	Name       string
	TotalSeats int
	CreatedAt  time.Time
}

// Availability is a point-in-time snapshot of an event's seat counts.
// Available is always derived, never stored.
type Availability struct {
	EventID   string
	Name      string
	Total     int
	Available int
	Held      int
	Booked    int
}
