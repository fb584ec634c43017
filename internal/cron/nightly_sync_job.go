package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/tablesight/tablesight-backend/internal/possync"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

const (
	nightlySyncJobName     = "nightly-pos-sync"
	defaultNightlyLookback = 3
)

type activeLocationLister interface {
	ListActive(ctx context.Context) ([]models.Location, error)
}

type syncRunner interface {
	Sync(ctx context.Context, req possync.Request) (*possync.Result, error)
}

// NightlySyncJobParams configure the nightly POS sync.
type NightlySyncJobParams struct {
	Logger    *logger.Logger
	Locations activeLocationLister
	Sync      syncRunner
	Lookback  int
	Now       func() time.Time
}

// nightlySyncJob rebuilds the trailing Lookback business dates, ending
// yesterday in each location's timezone, for every active location. Late
// refunds and voids land on already-synced dates, hence the overlap.
type nightlySyncJob struct {
	logg      *logger.Logger
	locations activeLocationLister
	sync      syncRunner
	lookback  int
	now       func() time.Time
}

// NewNightlySyncJob builds the nightly sync job.
func NewNightlySyncJob(params NightlySyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locations == nil {
		return nil, fmt.Errorf("location repository required")
	}
	if params.Sync == nil {
		return nil, fmt.Errorf("sync service required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultNightlyLookback
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &nightlySyncJob{
		logg:      params.Logger,
		locations: params.Locations,
		sync:      params.Sync,
		lookback:  lookback,
		now:       now,
	}, nil
}

func (j *nightlySyncJob) Name() string { return nightlySyncJobName }

func (j *nightlySyncJob) Run(ctx context.Context) error {
	locs, err := j.locations.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active locations: %w", err)
	}

	var errs error
	synced := 0
	for _, loc := range locs {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		from, to := trailingWindow(j.now(), loc.TimeLocation(), j.lookback)
		locCtx := j.logg.WithLocationID(ctx, loc.ID.String())

		_, err := j.sync.Sync(locCtx, possync.Request{
			LocationID: loc.ID,
			From:       from,
			To:         to,
			Trigger:    possync.TriggerCron,
		})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeSyncInProgress) {
				j.logg.Info(locCtx, "sync already running for location; skipping")
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("location %s: %w", loc.ID, err))
			continue
		}
		synced++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"locations": len(locs),
		"synced":    synced,
	}), "nightly sync finished")
	return errs
}

// trailingWindow returns the business-date window of n days ending yesterday
// in tz, as UTC-midnight dates.
func trailingWindow(now time.Time, tz *time.Location, n int) (time.Time, time.Time) {
	local := now.In(tz)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	to := today.AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -(n - 1))
	return from, to
}
