// Package app assembles the clients, repositories and services shared by the
// binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/tablesight/tablesight-backend/internal/correlation"
	"github.com/tablesight/tablesight-backend/internal/facts"
	"github.com/tablesight/tablesight-backend/internal/ingest"
	"github.com/tablesight/tablesight-backend/internal/locations"
	"github.com/tablesight/tablesight-backend/internal/possync"
	"github.com/tablesight/tablesight-backend/internal/warehouse"
	"github.com/tablesight/tablesight-backend/internal/weather"
	pkgbigquery "github.com/tablesight/tablesight-backend/pkg/bigquery"
	"github.com/tablesight/tablesight-backend/pkg/config"
	"github.com/tablesight/tablesight-backend/pkg/db"
	"github.com/tablesight/tablesight-backend/pkg/lock"
	"github.com/tablesight/tablesight-backend/pkg/logger"
	"github.com/tablesight/tablesight-backend/pkg/metrics"
	"github.com/tablesight/tablesight-backend/pkg/migrate"
	"github.com/tablesight/tablesight-backend/pkg/openmeteo"
	"github.com/tablesight/tablesight-backend/pkg/pubsub"
	"github.com/tablesight/tablesight-backend/pkg/redis"
	"github.com/tablesight/tablesight-backend/pkg/square"
	"github.com/tablesight/tablesight-backend/pkg/toast"
)

// App holds the wired dependencies of one process.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	DB       *db.Client
	Redis    *redis.Client
	BigQuery *pkgbigquery.Client
	PubSub   *pubsub.Client

	Locations   locations.Repository
	Facts       facts.Repository
	WeatherRepo weather.Repository
	SyncRuns    possync.RunRepository

	SyncMetrics *metrics.SyncMetrics
	Sync        *possync.Service
	Weather     *weather.Service
	Correlation *correlation.Service

	closers []func() error
}

// LoadConfig reads .env (when present) and the environment, then builds the
// service logger.
func LoadConfig(serviceName string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, err
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	return cfg, logg, nil
}

// Bootstrap opens every backing client and builds the domain services. On
// error, whatever was opened is closed again.
func Bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logg, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.SyncMetrics = metrics.NewSyncMetrics(a.Registry)

	if a.DB, err = db.New(ctx, cfg.DB, logg); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.closers = append(a.closers, a.DB.Close)

	if err = migrate.MaybeRunDev(ctx, cfg, logg, a.DB); err != nil {
		return nil, fmt.Errorf("dev migrations: %w", err)
	}

	if a.Redis, err = redis.New(ctx, cfg.Redis, logg); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.closers = append(a.closers, a.Redis.Close)

	var exporter possync.Exporter
	if cfg.FeatureFlags.WarehouseExport {
		if a.BigQuery, err = pkgbigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg); err != nil {
			return nil, fmt.Errorf("bigquery: %w", err)
		}
		a.closers = append(a.closers, a.BigQuery.Close)
		writer, werr := warehouse.New(a.BigQuery, WarehouseConfig(cfg.BigQuery))
		if werr != nil {
			return nil, fmt.Errorf("warehouse writer: %w", werr)
		}
		exporter = writer
	}

	var publisher possync.Publisher
	if cfg.FeatureFlags.PublishEvents {
		if a.PubSub, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg); err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		a.closers = append(a.closers, a.PubSub.Close)
		publisher = a.PubSub
	}

	sources, err := BuildSources(ctx, cfg, logg, a.SyncMetrics)
	if err != nil {
		return nil, err
	}

	gormDB := a.DB.DB()
	a.Locations = locations.NewRepository(gormDB)
	a.Facts = facts.NewRepository(gormDB)
	a.WeatherRepo = weather.NewRepository(gormDB)
	a.SyncRuns = possync.NewRunRepository(gormDB)

	if a.Sync, err = possync.NewService(possync.ServiceParams{
		Logger:       logg,
		Locations:    a.Locations,
		Facts:        a.Facts,
		Runs:         a.SyncRuns,
		Sources:      sources,
		Locks:        lock.NewRedisFactory(a.Redis, cfg.Sync.LockTTL),
		LockKey:      a.Redis.SyncLockKey,
		Exporter:     exporter,
		Publisher:    publisher,
		Metrics:      a.SyncMetrics,
		MaxRangeDays: cfg.Sync.MaxRangeDays,
	}); err != nil {
		return nil, fmt.Errorf("sync service: %w", err)
	}

	if a.Weather, err = weather.NewService(weather.ServiceParams{
		Locations: a.Locations,
		Archive: openmeteo.NewClient(
			openmeteo.WithBaseURL(cfg.Weather.BaseURL),
			openmeteo.WithTimeout(cfg.Weather.RequestTimeout),
		),
		Repo:       a.WeatherRepo,
		Thresholds: weather.ThresholdsFromConfig(cfg.Weather),
		Logger:     logg,
	}); err != nil {
		return nil, fmt.Errorf("weather service: %w", err)
	}

	if a.Correlation, err = correlation.NewService(correlation.ServiceParams{
		Locations: a.Locations,
		Facts:     a.Facts,
		Weather:   a.WeatherRepo,
		Options: correlation.Options{
			AnomalyThresholdPct: cfg.Correlation.AnomalyThresholdPct,
			MaxAnomalies:        cfg.Correlation.MaxAnomalies,
		},
		LookbackMonths: cfg.Correlation.LookbackMonths,
		PromptMaxChars: cfg.Correlation.PromptMaxChars,
	}); err != nil {
		return nil, fmt.Errorf("correlation service: %w", err)
	}

	return a, nil
}

// BuildSources registers a POS adapter for every provider with credentials.
func BuildSources(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.SyncMetrics) (*ingest.Registry, error) {
	var sources []ingest.Source
	if strings.TrimSpace(cfg.Toast.AccessToken) != "" {
		client, err := toast.NewClient(cfg.Toast, toast.WithRetryObserver(func(status int) {
			m.IncUpstreamRetry("toast", strconv.Itoa(status))
		}))
		if err != nil {
			return nil, fmt.Errorf("toast client: %w", err)
		}
		sources = append(sources, ingest.NewToastSource(client))
	}
	if strings.TrimSpace(cfg.Square.AccessToken) != "" {
		client, err := square.NewClient(ctx, cfg.Square, logg)
		if err != nil {
			return nil, fmt.Errorf("square client: %w", err)
		}
		sources = append(sources, ingest.NewSquareSource(client))
	}
	if len(sources) == 0 {
		logg.Warn(ctx, "no POS credentials configured; syncs will be rejected")
	}
	return ingest.NewRegistry(sources...), nil
}

// WarehouseConfig maps BigQuery settings onto the writer config.
func WarehouseConfig(cfg config.BigQueryConfig) warehouse.Config {
	return warehouse.Config{
		DailyRevenueTable:  cfg.DailyRevenueTable,
		DaypartTable:       cfg.DaypartTable,
		RevenueCenterTable: cfg.RevenueCenterTable,
		BatchSize:          cfg.InsertBatchSize,
		RetryPolicy:        warehouse.RetryPolicy{MaxAttempts: cfg.InsertMaxAttempts},
	}
}

// Close releases every opened client in reverse order.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
