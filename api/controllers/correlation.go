package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/api/responses"
	"github.com/tablesight/tablesight-backend/api/validators"
	"github.com/tablesight/tablesight-backend/internal/correlation"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

// CorrelationReporter recomputes weather correlation reports on demand.
type CorrelationReporter interface {
	Report(ctx context.Context, locationID uuid.UUID, from, to time.Time) (correlation.Report, error)
	PromptContext(ctx context.Context, locationID uuid.UUID, from, to time.Time) (string, error)
}

type PromptContextDTO struct {
	LocationID uuid.UUID `json:"locationId"`
	Context    string    `json:"context"`
}

// WeatherCorrelation serves the full report. from/to are optional and
// default to the trailing twelve months ending yesterday.
func WeatherCorrelation(svc CorrelationReporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, from, to, err := correlationInput(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report, err := svc.Report(ctx, locationID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// WeatherCorrelationContext serves the bounded plain-text summary used as
// prompt context.
func WeatherCorrelationContext(svc CorrelationReporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, from, to, err := correlationInput(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		text, err := svc.PromptContext(ctx, locationID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, PromptContextDTO{LocationID: locationID, Context: text})
	}
}

func correlationInput(r *http.Request) (uuid.UUID, time.Time, time.Time, error) {
	locationID, err := locationFromRequest(r)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	from, to, err := validators.ParseQueryDateRange(r, false)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	return locationID, from, to, nil
}
