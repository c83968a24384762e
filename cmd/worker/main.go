// Standalone expiry worker: runs the asynq consumer and the fallback sweep
// without the HTTP API, for deployments that scale them separately.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/internal/app"
	"boxoffice/internal/cache"
	"boxoffice/internal/clock"
	"boxoffice/internal/config"
	"boxoffice/internal/storage/postgres"
	"boxoffice/internal/tasks"
	"boxoffice/migrations"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	clk := clock.NewSystem()
	store := cache.NewStore(redisClient)

	metricsSvc := app.NewMetricsService(postgres.NewMetricsRepository(pool), store, clk)
	expirySvc := app.NewExpiryService(app.ExpiryServiceDeps{
		Repo:     postgres.NewHoldRepository(pool),
		Markers:  store,
		Counters: store,
		Metrics:  metricsSvc,
		Clock:    clk,
	})

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := tasks.NewServer(redisOpt, cfg.Worker.Concurrency)
	mux := tasks.NewServeMux(tasks.NewHandlers(expirySvc, logger))

	sweeper, err := tasks.NewSweepScheduler(redisOpt, cfg.Worker.SweepSchedule)
	if err != nil {
		logger.Error("build sweep scheduler", "error", err)
		os.Exit(1)
	}
	if err := sweeper.Start(); err != nil {
		logger.Error("start sweep scheduler", "error", err)
		os.Exit(1)
	}

	if err := worker.Start(mux); err != nil {
		logger.Error("start worker", "error", err)
		os.Exit(1)
	}
	logger.Info("expiry worker running")

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	sweeper.Shutdown()
	worker.Shutdown()
	logger.Info("stopped")
}
