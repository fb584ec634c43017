// Package possync orchestrates a POS sync: fetch, aggregate, replace facts.
package possync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/aggregation"
	"github.com/tablesight/tablesight-backend/internal/facts"
	"github.com/tablesight/tablesight-backend/internal/ingest"
	"github.com/tablesight/tablesight-backend/internal/locations"
	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/lock"
	"github.com/tablesight/tablesight-backend/pkg/logger"
	"github.com/tablesight/tablesight-backend/pkg/metrics"
)

const (
	defaultMaxRangeDays = 120
	dateLayout          = "2006-01-02"
)

// Trigger sources recorded on SyncRun rows.
const (
	TriggerAPI      = "api"
	TriggerCron     = "cron"
	TriggerBackfill = "backfill"
)

// Request asks for one location's facts to be rebuilt for [From, To].
type Request struct {
	LocationID uuid.UUID
	From       time.Time
	To         time.Time
	Trigger    string
}

// Result summarizes a finished sync.
type Result struct {
	RunID         uuid.UUID       `json:"syncRunId"`
	LocationID    uuid.UUID       `json:"locationId"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	OrdersFetched int             `json:"ordersFetched"`
	DaysWritten   int             `json:"daysWritten"`
	FactRows      int             `json:"factRows"`
	NetSales      decimal.Decimal `json:"netSales"`
}

// Exporter copies freshly written fact rows to the warehouse.
type Exporter interface {
	Export(ctx context.Context, rows facts.Rows) error
}

// ServiceParams configure the sync service. Exporter and Publisher are optional.
type ServiceParams struct {
	Logger       *logger.Logger
	Locations    locations.Repository
	Facts        facts.Repository
	Runs         RunRepository
	Sources      *ingest.Registry
	Locks        lock.Factory
	LockKey      func(locationID string) string
	Exporter     Exporter
	Publisher    Publisher
	Metrics      *metrics.SyncMetrics
	MaxRangeDays int
	Now          func() time.Time
}

// Service runs POS syncs.
type Service struct {
	logg         *logger.Logger
	locations    locations.Repository
	facts        facts.Repository
	runs         RunRepository
	sources      *ingest.Registry
	locks        lock.Factory
	lockKey      func(string) string
	exporter     Exporter
	publisher    Publisher
	metrics      *metrics.SyncMetrics
	maxRangeDays int
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locations == nil || params.Facts == nil || params.Runs == nil {
		return nil, fmt.Errorf("repositories required")
	}
	if params.Sources == nil {
		return nil, fmt.Errorf("pos sources required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	lockKey := params.LockKey
	if lockKey == nil {
		lockKey = func(id string) string { return "sync:" + id }
	}
	maxRange := params.MaxRangeDays
	if maxRange <= 0 {
		maxRange = defaultMaxRangeDays
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:         params.Logger,
		locations:    params.Locations,
		facts:        params.Facts,
		runs:         params.Runs,
		sources:      params.Sources,
		locks:        params.Locks,
		lockKey:      lockKey,
		exporter:     params.Exporter,
		publisher:    params.Publisher,
		metrics:      params.Metrics,
		maxRangeDays: maxRange,
		now:          now,
	}, nil
}

// Sync rebuilds every fact row of the location for the requested dates. Only
// one sync per location runs at a time; a concurrent request fails with
// SYNC_IN_PROGRESS. Re-running the same range yields the same fact rows.
func (s *Service) Sync(ctx context.Context, req Request) (*Result, error) {
	from, to, err := s.validateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	loc, err := s.locations.Get(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.For(loc.POSProvider)
	if err != nil {
		return nil, err
	}
	provider := loc.POSProvider.String()
	ctx = s.logg.WithLocationID(ctx, loc.ID.String())

	l, err := s.locks(s.lockKey(loc.ID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build sync lock")
	}
	acquired, err := l.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sync lock")
	}
	if !acquired {
		s.metrics.IncLockContended(provider)
		return nil, pkgerrors.New(pkgerrors.CodeSyncInProgress, "a sync is already running for this location")
	}
	defer func() {
		if relErr := l.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "failed to release sync lock", relErr)
		}
	}()

	started := s.now()
	run := &models.SyncRun{
		LocationID: loc.ID,
		Provider:   loc.POSProvider,
		Trigger:    trigger(req.Trigger),
		RangeStart: from,
		RangeEnd:   to,
		Status:     enums.SyncStatusRunning,
		StartedAt:  started.UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sync run")
	}
	ctx = s.logg.WithSyncRunID(ctx, run.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"from":    from.Format(dateLayout),
		"to":      to.Format(dateLayout),
		"trigger": run.Trigger,
	}), "sync started")

	result, rows, err := s.execute(ctx, *loc, source, run, from, to)
	finished := s.now()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = enums.SyncStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = enums.SyncStatusSucceeded
	}
	if finErr := s.runs.Finish(context.WithoutCancel(ctx), run); finErr != nil {
		s.logg.Error(ctx, "failed to record sync run outcome", finErr)
	}
	s.metrics.ObserveRun(provider, run.Status.String(), finished.Sub(started))
	if err != nil {
		s.logg.Error(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "sync failed", err)
		return nil, err
	}

	s.export(ctx, rows)
	s.publish(ctx, run, rows, from, to)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"orders":    result.OrdersFetched,
		"days":      result.DaysWritten,
		"fact_rows": result.FactRows,
	}), "sync completed")
	return result, nil
}

func (s *Service) execute(ctx context.Context, loc models.Location, source ingest.Source, run *models.SyncRun, from, to time.Time) (*Result, facts.Rows, error) {
	provider := loc.POSProvider.String()
	lookups, err := s.refreshLookups(ctx, loc, source)
	if err != nil {
		return nil, facts.Rows{}, err
	}

	orders, err := source.FetchOrders(ctx, loc, from, to)
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch POS orders")
		}
		return nil, facts.Rows{}, err
	}
	run.OrdersFetched = len(orders)
	s.metrics.AddOrders(provider, len(orders))

	aggregated := aggregation.Aggregate(withinRange(orders, from, to), aggregation.Options{
		TZ:      loc.TimeLocation(),
		Lookups: lookups,
	})
	rows := facts.FromResult(loc.ID, &run.ID, aggregated)
	// Dates without any order still lose their stale rows.
	rows.Dates = dateRange(from, to)

	if err := s.facts.ReplaceRange(ctx, loc.ID, rows); err != nil {
		return nil, facts.Rows{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace fact rows")
	}
	s.metrics.AddFactRows("daily_revenue_facts", len(rows.Daily))
	s.metrics.AddFactRows("daypart_facts", len(rows.Dayparts))
	s.metrics.AddFactRows("revenue_center_facts", len(rows.RevenueCenters))

	net := decimal.Zero
	for _, day := range rows.Daily {
		net = net.Add(day.NetSales)
	}
	run.DaysWritten = len(rows.Daily)
	run.NetSales = net
	run.VoidedAmount = aggregated.Audit.VoidedCheckAmount.Round(2)
	run.RefundsAudited = aggregated.Audit.Refunds.Round(2)
	run.DeferredAmount = aggregated.Audit.DeferredTotal().Round(2)

	return &Result{
		RunID:         run.ID,
		LocationID:    loc.ID,
		From:          from.Format(dateLayout),
		To:            to.Format(dateLayout),
		OrdersFetched: len(orders),
		DaysWritten:   len(rows.Daily),
		FactRows:      rows.Len(),
		NetSales:      net,
	}, rows, nil
}

// refreshLookups pulls the POS configuration tables and stores them. Upstream
// failures fall back to the cached tables.
func (s *Service) refreshLookups(ctx context.Context, loc models.Location, source ingest.Source) (pos.Lookups, error) {
	tables, err := source.FetchLookups(ctx, loc)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "lookup refresh failed; using cached lookups")
	} else {
		for kind, entries := range tables {
			if err := s.locations.ReplaceLookups(ctx, loc.ID, kind, entries); err != nil {
				return pos.Lookups{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store lookups")
			}
		}
	}
	lookups, err := s.locations.Lookups(ctx, loc.ID)
	if err != nil {
		return pos.Lookups{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load lookups")
	}
	return lookups, nil
}

func (s *Service) export(ctx context.Context, rows facts.Rows) {
	if s.exporter == nil || rows.Len() == 0 {
		return
	}
	if err := s.exporter.Export(ctx, rows); err != nil {
		s.logg.Error(ctx, "warehouse export failed", err)
	}
}

func (s *Service) publish(ctx context.Context, run *models.SyncRun, rows facts.Rows, from, to time.Time) {
	if s.publisher == nil {
		return
	}
	event := FactsSyncedEvent{
		EventID:    uuid.New(),
		EventType:  FactsSyncedEventType,
		LocationID: run.LocationID,
		SyncRunID:  run.ID,
		From:       from.Format(dateLayout),
		To:         to.Format(dateLayout),
		FactRows:   rows.Len(),
		OccurredAt: s.now().UTC(),
	}
	for _, d := range rows.Dates {
		event.Dates = append(event.Dates, d.Format(dateLayout))
	}
	data, attrs, err := event.encode()
	if err != nil {
		s.logg.Error(ctx, "encode facts.synced event", err)
		return
	}
	if _, err := s.publisher.Publish(ctx, data, attrs); err != nil {
		s.logg.Error(ctx, "publish facts.synced event", err)
	}
}

func (s *Service) validateRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	from, to = pos.BusinessDay(from, nil), pos.BusinessDay(to, nil)
	if from.After(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > s.maxRangeDays {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("range of %d days exceeds the %d day limit", days, s.maxRangeDays))
	}
	return from, to, nil
}

func withinRange(orders []pos.Order, from, to time.Time) []pos.Order {
	out := orders[:0:0]
	for _, o := range orders {
		if o.BusinessDate.IsZero() || (!o.BusinessDate.Before(from) && !o.BusinessDate.After(to)) {
			out = append(out, o)
		}
	}
	return out
}

func dateRange(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func trigger(raw string) string {
	if raw == "" {
		return TriggerAPI
	}
	return raw
}
