package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tablesight/tablesight-backend/api"
	"github.com/tablesight/tablesight-backend/api/controllers"
	"github.com/tablesight/tablesight-backend/api/routes"
	"github.com/tablesight/tablesight-backend/internal/app"
	"github.com/tablesight/tablesight-backend/pkg/env"
)

func main() {
	cfg, logg, err := app.LoadConfig("api")
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

	checks := []controllers.DependencyCheck{
		{Name: "database", Pinger: a.DB},
		{Name: "redis", Pinger: a.Redis},
	}
	if a.BigQuery != nil {
		checks = append(checks, controllers.DependencyCheck{Name: "bigquery", Pinger: a.BigQuery})
	}
	if a.PubSub != nil {
		checks = append(checks, controllers.DependencyCheck{Name: "pubsub", Pinger: a.PubSub})
	}

	handler := routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		Readiness:   checks,
		Gatherer:    a.Registry,
		RateLimiter: a.Redis,
		Idempotency: a.Redis,
		Correlation: a.Correlation,
		Facts:       a.Facts,
		Sync:        a.Sync,
		SyncRuns:    a.SyncRuns,
		Weather:     a.Weather,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": env.InstanceID(),
	})
	logg.Info(ctx, "starting api server")

	if err := api.Serve(ctx, api.NewServer(cfg, addr, handler), logg, cfg.API.ShutdownTimeout); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
