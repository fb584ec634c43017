package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablesight/tablesight-backend/api/controllers"
	"github.com/tablesight/tablesight-backend/api/middleware"
	"github.com/tablesight/tablesight-backend/pkg/config"
	"github.com/tablesight/tablesight-backend/pkg/logger"
	pkgredis "github.com/tablesight/tablesight-backend/pkg/redis"
)

// Params holds everything the router wires. Readiness entries with a nil
// Pinger are skipped, as are a nil RateLimiter and a nil Idempotency store.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Readiness   []controllers.DependencyCheck
	Gatherer    prometheus.Gatherer
	RateLimiter middleware.RateLimiterStore
	Idempotency pkgredis.IdempotencyStore
	Correlation controllers.CorrelationReporter
	Facts       controllers.FactLister
	Sync        controllers.SyncRunner
	SyncRuns    controllers.SyncRunLister
	Weather     controllers.WeatherRefresher
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.API.CORSAllowedOrigins),
	)

	syncPolicy := middleware.RateLimitPolicy{
		Name:   "sync",
		Limit:  cfg.API.SyncRateLimit,
		Window: cfg.API.SyncRateWindow,
	}
	refreshPolicy := middleware.RateLimitPolicy{
		Name:   "weather_refresh",
		Limit:  cfg.API.SyncRateLimit,
		Window: cfg.API.SyncRateWindow,
	}

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness...))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/locations/{"+middleware.LocationIDParam+"}", func(r chi.Router) {
		r.Use(middleware.LocationContext(logg))

		r.Get("/weather-correlation", controllers.WeatherCorrelation(p.Correlation, logg))
		r.Get("/weather-correlation/context", controllers.WeatherCorrelationContext(p.Correlation, logg))

		r.Route("/facts", func(r chi.Router) {
			r.Get("/daily", controllers.DailyFacts(p.Facts, logg))
			r.Get("/dayparts", controllers.DaypartFacts(p.Facts, logg))
			r.Get("/revenue-centers", controllers.RevenueCenterFacts(p.Facts, logg))
		})

		r.With(
			middleware.LocationRateLimit(syncPolicy, p.RateLimiter, logg),
			middleware.Idempotency(p.Idempotency, logg),
		).Post("/sync", controllers.TriggerSync(p.Sync, logg))
		r.Get("/sync-runs", controllers.SyncRuns(p.SyncRuns, logg))
		r.With(
			middleware.LocationRateLimit(refreshPolicy, p.RateLimiter, logg),
			middleware.Idempotency(p.Idempotency, logg),
		).Post("/weather/refresh", controllers.RefreshWeather(p.Weather, logg))
	})

	return r
}
