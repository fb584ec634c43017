package correlation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

const defaultLookbackMonths = 12

type locationReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

type factReader interface {
	ListDaily(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyRevenueFact, error)
}

type weatherReader interface {
	List(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyWeatherObservation, error)
}

// ServiceParams wires a Service.
type ServiceParams struct {
	Locations      locationReader
	Facts          factReader
	Weather        weatherReader
	Options        Options
	LookbackMonths int
	PromptMaxChars int
	Now            func() time.Time
}

// Service computes reports from persisted rows. Nothing is cached: every
// call reads current facts.
type Service struct {
	locations      locationReader
	facts          factReader
	weather        weatherReader
	opts           Options
	lookbackMonths int
	promptMaxChars int
	now            func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "location repository required")
	}
	if params.Facts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fact repository required")
	}
	if params.Weather == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "weather repository required")
	}
	lookback := params.LookbackMonths
	if lookback <= 0 {
		lookback = defaultLookbackMonths
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		locations:      params.Locations,
		facts:          params.Facts,
		weather:        params.Weather,
		opts:           params.Options,
		lookbackMonths: lookback,
		promptMaxChars: params.PromptMaxChars,
		now:            now,
	}, nil
}

// Report analyzes [from, to]. A zero to means yesterday in the location's
// zone; a zero from means the trailing lookback window ending at to.
func (s *Service) Report(ctx context.Context, locationID uuid.UUID, from, to time.Time) (Report, error) {
	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return Report{}, err
	}

	from, to, err = s.resolveRange(loc, from, to)
	if err != nil {
		return Report{}, err
	}

	facts, err := s.facts.ListDaily(ctx, locationID, from, to)
	if err != nil {
		return Report{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load daily revenue facts")
	}
	observations, err := s.weather.List(ctx, locationID, from, to)
	if err != nil {
		return Report{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load weather observations")
	}

	opts := s.opts
	opts.From, opts.To = from, to
	return Analyze(SalesFromFacts(facts), WeatherFromObservations(observations), opts), nil
}

// PromptContext renders the report for the same window as a bounded text block.
func (s *Service) PromptContext(ctx context.Context, locationID uuid.UUID, from, to time.Time) (string, error) {
	report, err := s.Report(ctx, locationID, from, to)
	if err != nil {
		return "", err
	}
	return FormatPromptContext(report, s.promptMaxChars), nil
}

func (s *Service) resolveRange(loc *models.Location, from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = dateKey(s.now().In(loc.TimeLocation())).AddDate(0, 0, -1)
	}
	to = dateKey(to)
	if from.IsZero() {
		from = to.AddDate(0, -s.lookbackMonths, 1)
	}
	from = dateKey(from)
	if from.After(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	return from, to, nil
}

// SalesFromFacts converts persisted daily facts into engine input.
func SalesFromFacts(facts []models.DailyRevenueFact) []SalesDay {
	out := make([]SalesDay, 0, len(facts))
	for _, f := range facts {
		out = append(out, SalesDay{Date: f.BusinessDate, NetSales: f.NetSales.InexactFloat64()})
	}
	return out
}

// WeatherFromObservations converts persisted observations into engine input.
func WeatherFromObservations(rows []models.DailyWeatherObservation) []WeatherDay {
	out := make([]WeatherDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, WeatherDay{
			Date:            r.ObservedDate,
			TempHighF:       r.TempHighF,
			TempLowF:        r.TempLowF,
			PrecipitationIn: r.PrecipitationIn,
			Description:     r.Description,
			Rainy:           r.IsRainy,
			ExtremeHeat:     r.IsExtremeHeat,
			ExtremeCold:     r.IsExtremeCold,
			Severe:          r.IsSevere,
		})
	}
	return out
}
