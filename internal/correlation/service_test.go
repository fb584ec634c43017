package correlation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

type fakeLocations struct {
	loc *models.Location
}

func (f fakeLocations) Get(_ context.Context, id uuid.UUID) (*models.Location, error) {
	if f.loc == nil || f.loc.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return f.loc, nil
}

type fakeFacts struct {
	rows     []models.DailyRevenueFact
	from, to time.Time
}

func (f *fakeFacts) ListDaily(_ context.Context, _ uuid.UUID, from, to time.Time) ([]models.DailyRevenueFact, error) {
	f.from, f.to = from, to
	return f.rows, nil
}

type fakeWeather struct {
	rows []models.DailyWeatherObservation
}

func (f *fakeWeather) List(context.Context, uuid.UUID, time.Time, time.Time) ([]models.DailyWeatherObservation, error) {
	return f.rows, nil
}

func newTestService(t *testing.T) (*Service, uuid.UUID, *fakeFacts) {
	t.Helper()
	locID := uuid.New()
	facts := &fakeFacts{rows: []models.DailyRevenueFact{
		{BusinessDate: mon1, NetSales: decimal.NewFromInt(1000)},
		{BusinessDate: mon2, NetSales: decimal.NewFromInt(1200)},
		{BusinessDate: mon3, NetSales: decimal.NewFromInt(600)},
	}}
	weather := &fakeWeather{rows: []models.DailyWeatherObservation{
		{ObservedDate: mon1, TempHighF: temp(75)},
		{ObservedDate: mon2, TempHighF: temp(77)},
		{ObservedDate: mon3, TempHighF: temp(64), PrecipitationIn: 1.2, IsRainy: true},
	}}
	svc, err := NewService(ServiceParams{
		Locations: fakeLocations{loc: &models.Location{ID: locID, Timezone: "UTC"}},
		Facts:     facts,
		Weather:   weather,
		Now:       func() time.Time { return time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, locID, facts
}

func TestServiceReport_DefaultWindow(t *testing.T) {
	svc, locID, facts := newTestService(t)

	report, err := svc.Report(context.Background(), locID, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.True(t, facts.to.Equal(date(2024, 6, 19)))
	assert.True(t, facts.from.Equal(date(2023, 6, 20)))
	assert.Equal(t, 3, report.TotalDaysAnalyzed)
	assert.Equal(t, -45.5, report.Rain.AdjustedImpactPct)
	assert.True(t, report.PeriodStart.Equal(date(2023, 6, 20)))
}

func TestServiceReport_Errors(t *testing.T) {
	svc, locID, _ := newTestService(t)

	_, err := svc.Report(context.Background(), uuid.New(), time.Time{}, time.Time{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Report(context.Background(), locID, mon3, mon1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServicePromptContext(t *testing.T) {
	svc, locID, _ := newTestService(t)

	text, err := svc.PromptContext(context.Background(), locID, mon1, mon3)
	require.NoError(t, err)
	assert.Contains(t, text, "2024-06-03 to 2024-06-17")
	assert.Contains(t, text, "1.2 inches")
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
