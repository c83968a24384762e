package domain

import "time"

// Booking is the permanent confirmation of a hold. At most one booking exists
// per hold; its existence is equivalent to the hold's status being BOOKED.
type Booking struct {
	ID         string
	HoldID     string
	BookingRef string
	CreatedAt  time.Time
}
