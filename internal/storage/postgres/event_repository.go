package postgres

import (
	"context"
	"fmt"

	"boxoffice/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	querier
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{querier{pool: pool}}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, total_seats, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, event.ID, event.Name, event.TotalSeats, event.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
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

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT id, name, total_seats, created_at FROM events ORDER BY created_at DESC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.TotalSeats, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) SumHeldSeats(ctx context.Context, eventID string) (int, error) {
	return sumSeatsByStatus(ctx, r.querier, eventID, domain.HoldStatusActive)
}

func (r *EventRepository) SumBookedSeats(ctx context.Context, eventID string) (int, error) {
	return sumSeatsByStatus(ctx, r.querier, eventID, domain.HoldStatusBooked)
}

func sumSeatsByStatus(ctx context.Context, q querier, eventID string, status domain.HoldStatus) (int, error) {
	const query = `
SELECT COALESCE(SUM(qty), 0)
FROM holds
WHERE event_id = $1 AND status = $2`

	var total int
	if err := q.queryRow(ctx, query, eventID, status).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum %s seats: %w", status, err)
	}
	return total, nil
}
