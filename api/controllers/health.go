package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tablesight/tablesight-backend/api/responses"
	"github.com/tablesight/tablesight-backend/pkg/config"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

const (
	envHeader           = "X-TableSight-Env"
	readinessPingBudget = 2 * time.Second
)

// Pinger is the readiness surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyCheck names one readiness probe.
type DependencyCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency; any failure answers 503
// with the failing names in the details.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...DependencyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		failures := map[string]string{}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessPingBudget)
			err := check.Pinger.Ping(ctx)
			cancel()
			if err != nil {
				failures[check.Name] = err.Error()
			}
		}

		if len(failures) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(failures)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
