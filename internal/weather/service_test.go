package weather

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight-backend/pkg/db"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/openmeteo"
)

type fakeArchive struct {
	days []openmeteo.Day
	req  openmeteo.DailyRequest
	err  error
}

func (f *fakeArchive) Daily(_ context.Context, req openmeteo.DailyRequest) ([]openmeteo.Day, error) {
	f.req = req
	return f.days, f.err
}

type fakeLocations map[uuid.UUID]*models.Location

func (f fakeLocations) Get(_ context.Context, id uuid.UUID) (*models.Location, error) {
	loc, ok := f[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return loc, nil
}

var (
	day1 = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
)

func TestServiceRefresh(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(db.NewSQLiteTestClient(t).DB())
	loc := &models.Location{ID: uuid.New(), Latitude: 41.88, Longitude: -87.63, Timezone: "America/Chicago"}
	archive := &fakeArchive{days: []openmeteo.Day{
		{Date: day1, TempMaxF: f(91), TempMinF: f(74), PrecipitationIn: f(0), WeatherCode: code(1)},
		{Date: day2, TempMaxF: f(80), TempMinF: f(66), PrecipitationIn: f(0.8), WeatherCode: code(63)},
	}}

	svc, err := NewService(ServiceParams{Locations: fakeLocations{loc.ID: loc}, Archive: archive, Repo: repo})
	require.NoError(t, err)

	n, err := svc.Refresh(ctx, loc.ID, day1, day2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "America/Chicago", archive.req.Timezone)
	assert.Equal(t, 41.88, archive.req.Latitude)

	// A second refresh replaces rather than duplicates.
	archive.days[1].PrecipitationIn = f(0)
	_, err = svc.Refresh(ctx, loc.ID, day1, day2)
	require.NoError(t, err)

	rows, err := repo.List(ctx, loc.ID, day1, day2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsExtremeHeat)
	assert.False(t, rows[1].IsRainy)
	require.NotNil(t, rows[0].TempHighF)
	assert.Equal(t, 91.0, *rows[0].TempHighF)
}

func TestServiceRefreshErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(db.NewSQLiteTestClient(t).DB())
	loc := &models.Location{ID: uuid.New()}
	archive := &fakeArchive{err: pkgerrors.New(pkgerrors.CodeDependency, "archive down")}
	svc, err := NewService(ServiceParams{Locations: fakeLocations{loc.ID: loc}, Archive: archive, Repo: repo})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, uuid.New(), day1, day2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Refresh(ctx, loc.ID, day2, day1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Refresh(ctx, loc.ID, day1, day2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestRepositoryListRange(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(db.NewSQLiteTestClient(t).DB())
	locID := uuid.New()

	require.NoError(t, repo.Replace(ctx, locID, []models.DailyWeatherObservation{
		{ObservedDate: day1, Description: "Clear sky", Source: "open-meteo"},
		{ObservedDate: day2, Description: "Overcast", Source: "open-meteo"},
	}))

	rows, err := repo.List(ctx, locID, day2, day2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Overcast", rows[0].Description)
	assert.Equal(t, locID, rows[0].LocationID)

	other, err := repo.List(ctx, uuid.New(), day1, day2)
	require.NoError(t, err)
	assert.Empty(t, other)
}
