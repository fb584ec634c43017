package weather

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
	"github.com/tablesight/tablesight-backend/pkg/openmeteo"
)

type archive interface {
	Daily(ctx context.Context, req openmeteo.DailyRequest) ([]openmeteo.Day, error)
}

type locationReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

// Service refreshes stored observations from the archive.
type Service struct {
	locations  locationReader
	archive    archive
	repo       Repository
	classifier Classifier
	logg       *logger.Logger
}

type ServiceParams struct {
	Locations  locationReader
	Archive    archive
	Repo       Repository
	Thresholds Thresholds
	Logger     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Locations == nil || params.Archive == nil || params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "weather service dependencies missing")
	}
	thresholds := params.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		locations:  params.Locations,
		archive:    params.Archive,
		repo:       params.Repo,
		classifier: NewClassifier(thresholds),
		logg:       logg,
	}, nil
}

// Refresh loads the location and refreshes [from, to].
func (s *Service) Refresh(ctx context.Context, locationID uuid.UUID, from, to time.Time) (int, error) {
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return 0, err
	}
	return s.RefreshLocation(ctx, *loc, from, to)
}

// RefreshLocation fetches, classifies and replaces observations for the
// inclusive date range. It returns the number of days stored.
func (s *Service) RefreshLocation(ctx context.Context, loc models.Location, from, to time.Time) (int, error) {
	if to.Before(from) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	ctx = s.logg.WithLocationID(ctx, loc.ID.String())

	days, err := s.archive.Daily(ctx, openmeteo.DailyRequest{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  loc.Timezone,
		Start:     from,
		End:       to,
	})
	if err != nil {
		return 0, err
	}

	rows := make([]models.DailyWeatherObservation, 0, len(days))
	for _, day := range days {
		rows = append(rows, s.classifier.Classify(loc.ID, day))
	}
	if err := s.repo.Replace(ctx, loc.ID, rows); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store weather observations")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
		"days": len(rows),
	}), "weather observations refreshed")
	return len(rows), nil
}
