package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/internal/possync"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

type stubLocations struct {
	locs []models.Location
	err  error
}

func (s stubLocations) ListActive(context.Context) ([]models.Location, error) {
	return s.locs, s.err
}

type recordingSync struct {
	requests []possync.Request
	errs     map[uuid.UUID]error
}

func (r *recordingSync) Sync(_ context.Context, req possync.Request) (*possync.Result, error) {
	r.requests = append(r.requests, req)
	if err := r.errs[req.LocationID]; err != nil {
		return nil, err
	}
	return &possync.Result{LocationID: req.LocationID}, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTrailingWindowUsesLocationTimezone(t *testing.T) {
	// 03:00 UTC on June 10 is still June 9 in Los Angeles.
	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}

	from, to := trailingWindow(now, la, 3)
	if !from.Equal(day(2024, 6, 6)) || !to.Equal(day(2024, 6, 8)) {
		t.Fatalf("unexpected LA window %s..%s", from, to)
	}

	from, to = trailingWindow(now, time.UTC, 3)
	if !from.Equal(day(2024, 6, 7)) || !to.Equal(day(2024, 6, 9)) {
		t.Fatalf("unexpected UTC window %s..%s", from, to)
	}
}

func TestNightlySyncJobSyncsEveryActiveLocation(t *testing.T) {
	first := models.Location{ID: uuid.New(), Timezone: "UTC"}
	second := models.Location{ID: uuid.New(), Timezone: "America/New_York"}
	runner := &recordingSync{}
	job, err := NewNightlySyncJob(NightlySyncJobParams{
		Logger:    logger.Nop(),
		Locations: stubLocations{locs: []models.Location{first, second}},
		Sync:      runner,
		Lookback:  2,
		Now:       func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "nightly-pos-sync" {
		t.Fatalf("unexpected job name %q", job.Name())
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(runner.requests) != 2 {
		t.Fatalf("expected 2 sync requests, got %d", len(runner.requests))
	}
	for _, req := range runner.requests {
		if req.Trigger != possync.TriggerCron {
			t.Fatalf("expected cron trigger, got %q", req.Trigger)
		}
		if !req.From.Equal(day(2024, 6, 8)) || !req.To.Equal(day(2024, 6, 9)) {
			t.Fatalf("unexpected window %s..%s", req.From, req.To)
		}
	}
}

func TestNightlySyncJobSkipsRunningSyncsAndCollectsFailures(t *testing.T) {
	busy := models.Location{ID: uuid.New()}
	broken := models.Location{ID: uuid.New()}
	healthy := models.Location{ID: uuid.New()}
	runner := &recordingSync{errs: map[uuid.UUID]error{
		busy.ID:   pkgerrors.New(pkgerrors.CodeSyncInProgress, "sync already running"),
		broken.ID: errors.New("toast unavailable"),
	}}
	job, err := NewNightlySyncJob(NightlySyncJobParams{
		Logger:    logger.Nop(),
		Locations: stubLocations{locs: []models.Location{busy, broken, healthy}},
		Sync:      runner,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected failure from broken location")
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeSyncInProgress) {
		t.Fatalf("in-progress sync must not be reported as a failure: %v", err)
	}
	if len(runner.requests) != 3 {
		t.Fatalf("expected every location to be attempted, got %d", len(runner.requests))
	}
}

func TestNightlySyncJobPropagatesListError(t *testing.T) {
	job, err := NewNightlySyncJob(NightlySyncJobParams{
		Logger:    logger.Nop(),
		Locations: stubLocations{err: errors.New("db down")},
		Sync:      &recordingSync{},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}

func TestNewNightlySyncJobValidatesParams(t *testing.T) {
	if _, err := NewNightlySyncJob(NightlySyncJobParams{Locations: stubLocations{}, Sync: &recordingSync{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewNightlySyncJob(NightlySyncJobParams{Logger: logger.Nop(), Sync: &recordingSync{}}); err == nil {
		t.Fatal("expected error without locations")
	}
	if _, err := NewNightlySyncJob(NightlySyncJobParams{Logger: logger.Nop(), Locations: stubLocations{}}); err == nil {
		t.Fatal("expected error without sync service")
	}
}
