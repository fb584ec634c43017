package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tablesight/tablesight-backend/internal/app"
	"github.com/tablesight/tablesight-backend/internal/cron"
	"github.com/tablesight/tablesight-backend/pkg/env"
	"github.com/tablesight/tablesight-backend/pkg/lock"
	"github.com/tablesight/tablesight-backend/pkg/metrics"
)

func main() {
	cfg, logg, err := app.LoadConfig("cron-worker")
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	a, err := app.Bootstrap(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap dependencies", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(context.Background(), "error closing dependencies", err)
		}
	}()

	cronLock, err := lock.NewRedisLock(a.Redis, a.Redis.CronLockKey(cfg.Service.Kind), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	nightlySync, err := cron.NewNightlySyncJob(cron.NightlySyncJobParams{
		Logger:    logg,
		Locations: a.Locations,
		Sync:      a.Sync,
		Lookback:  cfg.Sync.NightlyLookback,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create nightly sync job", err)
		os.Exit(1)
	}

	weatherRefresh, err := cron.NewWeatherRefreshJob(cron.WeatherRefreshJobParams{
		Logger:    logg,
		Locations: a.Locations,
		Weather:   a.Weather,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weather refresh job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(nightlySync, weatherRefresh),
		Lock:     cronLock,
		Metrics:  metrics.NewCronJobMetrics(a.Registry),
		Interval: cfg.Sync.CronInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    env.InstanceID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
