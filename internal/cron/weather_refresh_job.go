package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

const (
	weatherRefreshJobName     = "weather-refresh"
	defaultWeatherLookbackDay = 7
)

type weatherRefresher interface {
	RefreshLocation(ctx context.Context, loc models.Location, from, to time.Time) (int, error)
}

// WeatherRefreshJobParams configure the weather refresh.
type WeatherRefreshJobParams struct {
	Logger    *logger.Logger
	Locations activeLocationLister
	Weather   weatherRefresher
	Lookback  int
	Now       func() time.Time
}

// weatherRefreshJob re-fetches recent archive days; the archive backfills
// the latest days with a lag.
type weatherRefreshJob struct {
	logg      *logger.Logger
	locations activeLocationLister
	weather   weatherRefresher
	lookback  int
	now       func() time.Time
}

// NewWeatherRefreshJob builds the weather refresh job.
func NewWeatherRefreshJob(params WeatherRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locations == nil {
		return nil, fmt.Errorf("location repository required")
	}
	if params.Weather == nil {
		return nil, fmt.Errorf("weather service required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultWeatherLookbackDay
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &weatherRefreshJob{
		logg:      params.Logger,
		locations: params.Locations,
		weather:   params.Weather,
		lookback:  lookback,
		now:       now,
	}, nil
}

func (j *weatherRefreshJob) Name() string { return weatherRefreshJobName }

func (j *weatherRefreshJob) Run(ctx context.Context) error {
	locs, err := j.locations.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active locations: %w", err)
	}

	var errs error
	days := 0
	for _, loc := range locs {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		from, to := trailingWindow(j.now(), loc.TimeLocation(), j.lookback)
		n, err := j.weather.RefreshLocation(ctx, loc, from, to)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("location %s: %w", loc.ID, err))
			continue
		}
		days += n
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"locations": len(locs),
		"days":      days,
	}), "weather refresh finished")
	return errs
}
