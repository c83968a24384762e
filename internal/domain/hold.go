package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive  HoldStatus = "ACTIVE"
	HoldStatusExpired HoldStatus = "EXPIRED"
	HoldStatusBooked  HoldStatus = "BOOKED"
)

// Hold reserves seats for a limited time. Status is monotonic: once a hold
// leaves ACTIVE it never transitions again.
type Hold struct {
	ID           string
	EventID      string
	Qty          int
	Status       HoldStatus
	ExpiresAt    time.Time
	PaymentToken string
	CreatedAt    time.Time
}

// IsExpired reports whether the hold's deadline has passed at the given
// instant, regardless of its stored status.
func (h Hold) IsExpired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
