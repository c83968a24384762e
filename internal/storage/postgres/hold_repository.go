package postgres

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldRepository struct {
	querier
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{querier{pool: pool}}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `SELECT id, name, total_seats, created_at FROM events WHERE id = $1`

	var e domain.Event
	err := r.queryRow(ctx, query, eventID).Scan(&e.ID, &e.Name, &e.TotalSeats, &e.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *HoldRepository) SumHeldSeats(ctx context.Context, eventID string) (int, error) {
	return sumSeatsByStatus(ctx, r.querier, eventID, domain.HoldStatusActive)
}

func (r *HoldRepository) SumBookedSeats(ctx context.Context, eventID string) (int, error) {
	return sumSeatsByStatus(ctx, r.querier, eventID, domain.HoldStatusBooked)
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, event_id, qty, status, expires_at, payment_token, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		hold.ID,
		hold.EventID,
		hold.Qty,
		hold.Status,
		hold.ExpiresAt,
		hold.PaymentToken,
		hold.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// GetActiveHoldForUpdate locks the hold row and returns it only while it is
// still ACTIVE. A nil hold means the row is absent or already terminal; the
// caller treats that as a no-op.
func (r *HoldRepository) GetActiveHoldForUpdate(ctx context.Context, holdID string) (*domain.Hold, error) {
	const query = `
SELECT id, event_id, qty, status, expires_at, payment_token, created_at
FROM holds
WHERE id = $1 AND status = 'ACTIVE'
FOR UPDATE`

	var h domain.Hold
	err := r.queryRow(ctx, query, holdID).
		Scan(&h.ID, &h.EventID, &h.Qty, &h.Status, &h.ExpiresAt, &h.PaymentToken, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lock active hold: %w", err)
	}
	return &h, nil
}

func (r *HoldRepository) UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error {
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

// ListDueHoldIDs returns ACTIVE holds whose deadline has passed, oldest first.
// Used by the fallback sweep; limit bounds one sweep run.
func (r *HoldRepository) ListDueHoldIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const query = `
SELECT id
FROM holds
WHERE status = 'ACTIVE' AND expires_at < $1
ORDER BY expires_at
LIMIT $2`

	rows, err := r.query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due holds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due hold: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due holds: %w", err)
	}
	return ids, nil
}
