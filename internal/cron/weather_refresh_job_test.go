package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

type stubWeather struct {
	calls []time.Time
	fail  uuid.UUID
}

func (s *stubWeather) RefreshLocation(_ context.Context, loc models.Location, from, to time.Time) (int, error) {
	s.calls = append(s.calls, from, to)
	if loc.ID == s.fail {
		return 0, errors.New("archive unavailable")
	}
	return int(to.Sub(from).Hours()/24) + 1, nil
}

func TestWeatherRefreshJobRefreshesTrailingWeek(t *testing.T) {
	loc := models.Location{ID: uuid.New(), Timezone: "UTC"}
	weather := &stubWeather{}
	job, err := NewWeatherRefreshJob(WeatherRefreshJobParams{
		Logger:    logger.Nop(),
		Locations: stubLocations{locs: []models.Location{loc}},
		Weather:   weather,
		Now:       func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "weather-refresh" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(weather.calls) != 2 {
		t.Fatalf("expected one refresh, got %d calls", len(weather.calls)/2)
	}
	if !weather.calls[0].Equal(day(2024, 6, 3)) || !weather.calls[1].Equal(day(2024, 6, 9)) {
		t.Fatalf("unexpected window %s..%s", weather.calls[0], weather.calls[1])
	}
}

func TestWeatherRefreshJobContinuesAfterFailure(t *testing.T) {
	broken := models.Location{ID: uuid.New()}
	healthy := models.Location{ID: uuid.New()}
	weather := &stubWeather{fail: broken.ID}
	job, err := NewWeatherRefreshJob(WeatherRefreshJobParams{
		Logger:    logger.Nop(),
		Locations: stubLocations{locs: []models.Location{broken, healthy}},
		Weather:   weather,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected failure to be reported")
	}
	if len(weather.calls) != 4 {
		t.Fatalf("expected both locations refreshed, got %d calls", len(weather.calls)/2)
	}
}
