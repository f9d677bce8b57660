package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/internal/sweeper"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/audit"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/config"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/db"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/metrics"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/migrate"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sweeper-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "sweeper-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sweeper-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	metricsCollector := metrics.NewSweepMetrics(prometheus.DefaultRegisterer)
	auditRepo := audit.NewRepository(dbClient.DB())
	auditSvc := audit.NewService(auditRepo, logg)

	lock, err := sweeper.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), cfg.Sweep.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	scanner := sweeper.NewScanner(dbClient.DB())
	expirer, err := sweeper.NewExpirer(sweeper.ExpirerParams{
		Logger: logg,
		DB:     dbClient,
		Audit:  auditSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create expirer", err)
		os.Exit(1)
	}

	coordinator, err := sweeper.NewCoordinator(sweeper.CoordinatorParams{
		Logger:      logg,
		Scanner:     scanner,
		Expirer:     expirer,
		Metrics:     metricsCollector,
		GracePeriod: cfg.Sweep.GracePeriod(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coordinator", err)
		os.Exit(1)
	}

	scheduler, err := sweeper.NewScheduler(sweeper.SchedulerParams{
		Logger:       logg,
		Coordinator:  coordinator,
		Lock:         lock,
		Interval:     cfg.Sweep.Interval,
		StartupDelay: cfg.Sweep.StartupDelay,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting sweeper worker")

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sweeper worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sweeper worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("sweeper:%s", env)
}
