package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boxoffice/internal/app"
	"boxoffice/internal/auth"
	"boxoffice/internal/cache"
	"boxoffice/internal/clock"
	"boxoffice/internal/config"
	"boxoffice/internal/lock"
	"boxoffice/internal/storage/postgres"
	"boxoffice/internal/tasks"
	transporthttp "boxoffice/internal/transport/http"
	"boxoffice/migrations"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Never fall back to accept-all auth: mint an ephemeral secret so the
		// admin surface stays closed until a real secret is configured.
		jwtSecret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; admin tokens will not survive restart")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("parse database url", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	pool, err := pgxpool.NewWithConfig(startupCtx, poolCfg)
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

	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		logger.Error("redis ping", "error", err)
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	clk := clock.NewSystem()
	store := cache.NewStore(redisClient)
	locker := lock.NewEventLocker(redisClient, cfg.Hold.LockWait, cfg.Hold.LockLease)
	scheduler := tasks.NewScheduler(asynqClient)

	metricsSvc := app.NewMetricsService(postgres.NewMetricsRepository(pool), store, clk)
	holdSvc := app.NewHoldService(app.HoldServiceDeps{
		Repo:      postgres.NewHoldRepository(pool),
		Locker:    locker,
		Scheduler: scheduler,
		Markers:   store,
		Counters:  store,
		Metrics:   metricsSvc,
		Clock:     clk,
	}, app.WithTTLBounds(cfg.Hold.DefaultTTL, cfg.Hold.MaxTTL))
	bookingSvc := app.NewBookingService(app.BookingServiceDeps{
		Repo:     postgres.NewBookingRepository(pool),
		Markers:  store,
		Counters: store,
		Metrics:  metricsSvc,
		Clock:    clk,
	})
	expirySvc := app.NewExpiryService(app.ExpiryServiceDeps{
		Repo:     postgres.NewHoldRepository(pool),
		Markers:  store,
		Counters: store,
		Metrics:  metricsSvc,
		Clock:    clk,
	})
	eventSvc := app.NewEventService(app.EventServiceDeps{
		Repo:     postgres.NewEventRepository(pool),
		Counters: store,
		Metrics:  metricsSvc,
		Clock:    clk,
	})

	// Expiry worker and cron sweep run in-process beside the API.
	worker := tasks.NewServer(redisOpt, cfg.Worker.Concurrency)
	mux := tasks.NewServeMux(tasks.NewHandlers(expirySvc, logger))
	if err := worker.Start(mux); err != nil {
		logger.Error("start worker", "error", err)
		os.Exit(1)
	}

	sweeper, err := tasks.NewSweepScheduler(redisOpt, cfg.Worker.SweepSchedule)
	if err != nil {
		logger.Error("build sweep scheduler", "error", err)
		os.Exit(1)
	}
	if err := sweeper.Start(); err != nil {
		logger.Error("start sweep scheduler", "error", err)
		os.Exit(1)
	}

	e := transporthttp.NewRouter(transporthttp.Services{
		Events:   eventSvc,
		Holds:    holdSvc,
		Bookings: bookingSvc,
		Metrics:  metricsSvc,
		Authn:    auth.NewJWTAuthenticator(jwtSecret),
	}, parseCSV(cfg.CORSOrigins))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("api listening", "port", cfg.Port)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	sweeper.Shutdown()
	worker.Shutdown()
	logger.Info("stopped")
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
