package postgres

import (
	"context"
	"fmt"

	"boxoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	querier
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{querier{pool: pool}}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetHoldForUpdate locks the hold row regardless of status. Confirmation and
// expiry contend on this lock; whichever commits first decides the terminal
// status.
func (r *BookingRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	const query = `
SELECT id, event_id, qty, status, expires_at, payment_token, created_at
FROM holds
WHERE id = $1
FOR UPDATE`

	var h domain.Hold
	err := r.queryRow(ctx, query, holdID).
		Scan(&h.ID, &h.EventID, &h.Qty, &h.Status, &h.ExpiresAt, &h.PaymentToken, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("lock hold: %w", err)
	}
	return h, nil
}

func (r *BookingRepository) GetBookingByHoldID(ctx context.Context, holdID string) (*domain.Booking, error) {
	const query = `
SELECT id, hold_id, booking_ref, created_at
FROM bookings
WHERE hold_id = $1`

	var b domain.Booking
	err := r.queryRow(ctx, query, holdID).Scan(&b.ID, &b.HoldID, &b.BookingRef, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by hold: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, hold_id, booking_ref, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, booking.ID, booking.HoldID, booking.BookingRef, booking.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBookingExists
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error {
	const stmt = `UPDATE holds SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, holdID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update hold status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}
