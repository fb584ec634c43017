package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/api/middleware"
	"github.com/tablesight/tablesight-backend/api/responses"
	"github.com/tablesight/tablesight-backend/api/validators"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

// maxFactRangeDays bounds a single facts listing.
const maxFactRangeDays = 366

// FactLister is the read side of the facts repository.
type FactLister interface {
	ListDaily(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyRevenueFact, error)
	ListDayparts(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DaypartFact, error)
	ListRevenueCenters(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.RevenueCenterFact, error)
}

type DailyFactDTO struct {
	BusinessDate    string          `json:"businessDate"`
	GrossSales      decimal.Decimal `json:"grossSales"`
	NetSales        decimal.Decimal `json:"netSales"`
	Discounts       decimal.Decimal `json:"discounts"`
	Refunds         decimal.Decimal `json:"refunds"`
	Voids           decimal.Decimal `json:"voids"`
	ServiceCharges  decimal.Decimal `json:"serviceCharges"`
	DeferredRevenue decimal.Decimal `json:"deferredRevenue"`
	CashSales       decimal.Decimal `json:"cashSales"`
	CardSales       decimal.Decimal `json:"cardSales"`
	GiftCardSales   decimal.Decimal `json:"giftCardSales"`
	OtherSales      decimal.Decimal `json:"otherSales"`
	Tips            decimal.Decimal `json:"tips"`
	OrderCount      int             `json:"orderCount"`
	CheckCount      int             `json:"checkCount"`
	AverageCheck    decimal.Decimal `json:"averageCheck"`
	AverageTip      decimal.Decimal `json:"averageTip"`
}

type CategorySalesDTO struct {
	Food         decimal.Decimal `json:"food"`
	Beer         decimal.Decimal `json:"beer"`
	Wine         decimal.Decimal `json:"wine"`
	Liquor       decimal.Decimal `json:"liquor"`
	NonAlcoholic decimal.Decimal `json:"nonAlcoholic"`
}

type DaypartFactDTO struct {
	BusinessDate string           `json:"businessDate"`
	Daypart      string           `json:"daypart"`
	Revenue      decimal.Decimal  `json:"revenue"`
	Covers       int              `json:"covers"`
	OrderCount   int              `json:"orderCount"`
	Categories   CategorySalesDTO `json:"categories"`
}

type RevenueCenterFactDTO struct {
	BusinessDate    string           `json:"businessDate"`
	RevenueCenterID string           `json:"revenueCenterId"`
	Name            string           `json:"name"`
	IsOutdoor       bool             `json:"isOutdoor"`
	NetSales        decimal.Decimal  `json:"netSales"`
	OrderCount      int              `json:"orderCount"`
	CheckCount      int              `json:"checkCount"`
	AverageCheck    decimal.Decimal  `json:"averageCheck"`
	Categories      CategorySalesDTO `json:"categories"`
}

type factListResponse[T any] struct {
	LocationID uuid.UUID `json:"locationId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Rows       []T       `json:"rows"`
}

func DailyFacts(repo FactLister, logg *logger.Logger) http.HandlerFunc {
	return listFacts(logg, func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]DailyFactDTO, error) {
		rows, err := repo.ListDaily(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]DailyFactDTO, 0, len(rows))
		for _, f := range rows {
			out = append(out, DailyFactDTO{
				BusinessDate:    f.BusinessDate.Format(validators.DateLayout),
				GrossSales:      f.GrossSales,
				NetSales:        f.NetSales,
				Discounts:       f.Discounts,
				Refunds:         f.Refunds,
				Voids:           f.Voids,
				ServiceCharges:  f.ServiceCharges,
				DeferredRevenue: f.DeferredRevenue,
				CashSales:       f.CashSales,
				CardSales:       f.CardSales,
				GiftCardSales:   f.GiftCardSales,
				OtherSales:      f.OtherSales,
				Tips:            f.Tips,
				OrderCount:      f.OrderCount,
				CheckCount:      f.CheckCount,
				AverageCheck:    f.AverageCheck,
				AverageTip:      f.AverageTip,
			})
		}
		return out, nil
	})
}

func DaypartFacts(repo FactLister, logg *logger.Logger) http.HandlerFunc {
	return listFacts(logg, func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]DaypartFactDTO, error) {
		rows, err := repo.ListDayparts(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]DaypartFactDTO, 0, len(rows))
		for _, f := range rows {
			out = append(out, DaypartFactDTO{
				BusinessDate: f.BusinessDate.Format(validators.DateLayout),
				Daypart:      f.Daypart.String(),
				Revenue:      f.Revenue,
				Covers:       f.Covers,
				OrderCount:   f.OrderCount,
				Categories:   categoryDTO(f.CategoryColumns),
			})
		}
		return out, nil
	})
}

func RevenueCenterFacts(repo FactLister, logg *logger.Logger) http.HandlerFunc {
	return listFacts(logg, func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]RevenueCenterFactDTO, error) {
		rows, err := repo.ListRevenueCenters(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]RevenueCenterFactDTO, 0, len(rows))
		for _, f := range rows {
			out = append(out, RevenueCenterFactDTO{
				BusinessDate:    f.BusinessDate.Format(validators.DateLayout),
				RevenueCenterID: f.RevenueCenterID,
				Name:            f.Name,
				IsOutdoor:       f.IsOutdoor,
				NetSales:        f.NetSales,
				OrderCount:      f.OrderCount,
				CheckCount:      f.CheckCount,
				AverageCheck:    f.AverageCheck,
				Categories:      categoryDTO(f.CategoryColumns),
			})
		}
		return out, nil
	})
}

func listFacts[T any](logg *logger.Logger, load func(ctx context.Context, id uuid.UUID, from, to time.Time) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, err := locationFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.ParseQueryDateRange(r, true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if days := int(to.Sub(from).Hours()/24) + 1; days > maxFactRangeDays {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date range too long").
				WithDetails(map[string]any{"maxDays": maxFactRangeDays, "days": days}))
			return
		}

		rows, err := load(ctx, locationID, from, to)
		if err != nil {
			if pkgerrors.As(err) == nil {
				err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list facts")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, factListResponse[T]{
			LocationID: locationID,
			From:       from.Format(validators.DateLayout),
			To:         to.Format(validators.DateLayout),
			Rows:       rows,
		})
	}
}

func categoryDTO(c models.CategoryColumns) CategorySalesDTO {
	return CategorySalesDTO{
		Food:         c.FoodSales,
		Beer:         c.BeerSales,
		Wine:         c.WineSales,
		Liquor:       c.LiquorSales,
		NonAlcoholic: c.NonAlcoholicSales,
	}
}

// locationFromRequest prefers the id resolved by middleware and falls back to
// the URL parameter.
func locationFromRequest(r *http.Request) (uuid.UUID, error) {
	if id, ok := middleware.LocationIDFromContext(r.Context()); ok {
		return id, nil
	}
	return validators.ParseUUIDParam(r, middleware.LocationIDParam)
}
