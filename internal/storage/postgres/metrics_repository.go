package postgres

import (
	"context"
	"fmt"

	"boxoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MetricsRepository struct {
	querier
}

func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{querier{pool: pool}}
}

func (r *MetricsRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// RecountEvent rescans the event's holds and returns fresh counters. It never
// reads the event_metrics table.
func (r *MetricsRepository) RecountEvent(ctx context.Context, eventID string) (domain.EventMetrics, error) {
	const eventQuery = `SELECT name FROM events WHERE id = $1`

	var m domain.EventMetrics
	if err := r.queryRow(ctx, eventQuery, eventID).Scan(&m.EventName); err != nil {
		if isInvalidUUID(err) {
			return domain.EventMetrics{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.EventMetrics{}, domain.ErrEventNotFound
		}
		return domain.EventMetrics{}, fmt.Errorf("recount event: %w", err)
	}

	const query = `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'BOOKED'),
	COUNT(*) FILTER (WHERE status = 'EXPIRED'),
	COALESCE(SUM(qty) FILTER (WHERE status = 'ACTIVE'), 0),
	COALESCE(SUM(qty) FILTER (WHERE status = 'BOOKED'), 0),
	COALESCE(SUM(qty) FILTER (WHERE status = 'EXPIRED'), 0)
FROM holds
WHERE event_id = $1`

	m.EventID = eventID
	err := r.queryRow(ctx, query, eventID).Scan(
		&m.TotalHolds,
		&m.TotalBookings,
		&m.TotalExpiries,
		&m.HeldSeats,
		&m.BookedSeats,
		&m.ExpiredSeats,
	)
	if err != nil {
		return domain.EventMetrics{}, fmt.Errorf("recount holds: %w", err)
	}
	return m, nil
}

func (r *MetricsRepository) UpsertEventMetrics(ctx context.Context, m domain.EventMetrics) error {
	const stmt = `
INSERT INTO event_metrics (event_id, total_holds, total_bookings, total_expiries, held_seats, booked_seats, expired_seats, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (event_id) DO UPDATE SET
	total_holds = EXCLUDED.total_holds,
	total_bookings = EXCLUDED.total_bookings,
	total_expiries = EXCLUDED.total_expiries,
	held_seats = EXCLUDED.held_seats,
	booked_seats = EXCLUDED.booked_seats,
	expired_seats = EXCLUDED.expired_seats,
	updated_at = EXCLUDED.updated_at`

	_, err := r.exec(ctx, stmt,
		m.EventID,
		m.TotalHolds,
		m.TotalBookings,
		m.TotalExpiries,
		m.HeldSeats,
		m.BookedSeats,
		m.ExpiredSeats,
		m.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("upsert event metrics: %w", err)
	}
	return nil
}

func (r *MetricsRepository) GetEventMetrics(ctx context.Context, eventID string) (domain.EventMetrics, error) {
	const query = `
SELECT m.event_id, e.name, m.total_holds, m.total_bookings, m.total_expiries,
	m.held_seats, m.booked_seats, m.expired_seats, m.updated_at
FROM event_metrics m
JOIN events e ON e.id = m.event_id
WHERE m.event_id = $1`

	var m domain.EventMetrics
	err := r.queryRow(ctx, query, eventID).Scan(
		&m.EventID,
		&m.EventName,
		&m.TotalHolds,
		&m.TotalBookings,
		&m.TotalExpiries,
		&m.HeldSeats,
		&m.BookedSeats,
		&m.ExpiredSeats,
		&m.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.EventMetrics{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.EventMetrics{}, domain.ErrEventNotFound
		}
		return domain.EventMetrics{}, fmt.Errorf("get event metrics: %w", err)
	}
	return m, nil
}

// SystemCounts aggregates authoritative state across all events. Best-effort
// redis counters and uptime are layered on by the service.
func (r *MetricsRepository) SystemCounts(ctx context.Context) (domain.SystemMetrics, error) {
	var m domain.SystemMetrics

	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&m.TotalEvents); err != nil {
		return domain.SystemMetrics{}, fmt.Errorf("count events: %w", err)
	}

	const query = `
SELECT
	COUNT(*) FILTER (WHERE status = 'ACTIVE'),
	COUNT(*) FILTER (WHERE status = 'BOOKED'),
	COUNT(*) FILTER (WHERE status = 'EXPIRED'),
	COALESCE(SUM(qty) FILTER (WHERE status = 'ACTIVE'), 0),
	COALESCE(SUM(qty) FILTER (WHERE status = 'BOOKED'), 0),
	COALESCE(SUM(qty) FILTER (WHERE status = 'EXPIRED'), 0)
FROM holds`

	err := r.queryRow(ctx, query).Scan(
		&m.TotalActiveHolds,
		&m.TotalBookings,
		&m.TotalExpiries,
		&m.HeldSeats,
		&m.BookedSeats,
		&m.ExpiredSeats,
	)
	if err != nil {
		return domain.SystemMetrics{}, fmt.Errorf("count holds: %w", err)
	}
	return m, nil
}
