package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/tablesight/tablesight-backend/api/responses"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

// RateLimiterStore is the fixed-window counter backing LocationRateLimit.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles one route family per location.
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p RateLimitPolicy) scope(locationID string) string {
	name := p.Name
	if name == "" {
		name = "default"
	}
	return name + ":" + locationID
}

// LocationRateLimit counts requests per location in a fixed window. It must
// run after LocationContext. A limiter failure fails open.
func LocationRateLimit(policy RateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			locationID, ok := LocationIDFromContext(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(locationID.String()), int64(policy.Limit), policy.Window)
			if err != nil {
				if logg != nil {
					logg.Error(ctx, "rate_limit.unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many "+policy.Name+" requests for this location"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
