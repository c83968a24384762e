// Package tasks wires hold expiry onto asynq: one delayed task per hold,
// scheduled at its deadline, plus a cron sweep that catches anything the
// delayed tasks missed. Handlers are idempotent, so at-least-once delivery
// and the sweep overlapping a delayed task are both harmless.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeHoldExpire = "hold:expire"
	TypeHoldSweep  = "hold:sweep"
)

const expireMaxRetry = 5

type HoldExpirePayload struct {
	HoldID string `json:"hold_id"`
}

// Scheduler enqueues delayed expiry tasks. It satisfies app.ExpiryScheduler.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

func (s *Scheduler) ScheduleHoldExpiry(ctx context.Context, holdID string, at time.Time) error {
	payload, err := json.Marshal(HoldExpirePayload{HoldID: holdID})
	if err != nil {
		return fmt.Errorf("marshal expire payload: %w", err)
	}

	task := asynq.NewTask(TypeHoldExpire, payload)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(at),
		asynq.MaxRetry(expireMaxRetry),
		asynq.Queue("critical"),
	)
	if err != nil {
		return fmt.Errorf("enqueue hold expiry: %w", err)
	}
	return nil
}
