package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/api/responses"
	"github.com/tablesight/tablesight-backend/api/validators"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

type contextKey string

const (
	ctxLocationID contextKey = "location_id"

	// LocationIDParam is the chi URL parameter carrying the location.
	LocationIDParam = "locationId"
)

// LocationIDFromContext returns the location resolved by LocationContext.
func LocationIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	v, ok := ctx.Value(ctxLocationID).(uuid.UUID)
	return v, ok
}

// WithLocationID injects the location identifier into the context.
func WithLocationID(ctx context.Context, locationID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLocationID, locationID)
}

// LocationContext parses {locationId} once for every nested route and tags
// the request logger with it.
func LocationContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := validators.ParseUUIDParam(r, LocationIDParam)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithLocationID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithLocationID(ctx, id.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
