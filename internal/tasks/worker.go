package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Expirer is the slice of the expiry service the worker needs.
type Expirer interface {
	ProcessHoldExpiry(ctx context.Context, holdID string) error
	SweepDueHolds(ctx context.Context) (int, error)
}

type Handlers struct {
	expirer Expirer
	logger  *slog.Logger
}

func NewHandlers(expirer Expirer, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{expirer: expirer, logger: logger}
}

func (h *Handlers) HandleHoldExpire(ctx context.Context, t *asynq.Task) error {
	var payload HoldExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// A payload that cannot be parsed will never succeed; drop it and
		// rely on the sweep.
		h.logger.Error("unmarshal expire payload", "error", err)
		return fmt.Errorf("unmarshal expire payload: %v: %w", err, asynq.SkipRetry)
	}
	return h.expirer.ProcessHoldExpiry(ctx, payload.HoldID)
}

func (h *Handlers) HandleHoldSweep(ctx context.Context, _ *asynq.Task) error {
	_, err := h.expirer.SweepDueHolds(ctx)
	return err
}

// NewServeMux registers the expiry handlers.
func NewServeMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldExpire, h.HandleHoldExpire)
	mux.HandleFunc(TypeHoldSweep, h.HandleHoldSweep)
	return mux
}

// NewServer builds the asynq worker server. The critical queue carries the
// per-hold expiry tasks so a backlog of sweeps cannot starve them.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})
}

// NewSweepScheduler registers the periodic fallback sweep.
func NewSweepScheduler(redisOpt asynq.RedisClientOpt, schedule string) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register(schedule, asynq.NewTask(TypeHoldSweep, nil)); err != nil {
		return nil, fmt.Errorf("register sweep: %w", err)
	}
	return scheduler, nil
}
