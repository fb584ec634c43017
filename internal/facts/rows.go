// Package facts persists the derived daily, daypart and revenue-center rows.
package facts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/aggregation"
	"github.com/tablesight/tablesight-backend/internal/revenue"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// Rows is one aggregation result mapped onto the persisted models.
type Rows struct {
	Dates          []time.Time
	Daily          []models.DailyRevenueFact
	Dayparts       []models.DaypartFact
	RevenueCenters []models.RevenueCenterFact
}

// Len is the total row count across the three tables.
func (r Rows) Len() int {
	return len(r.Daily) + len(r.Dayparts) + len(r.RevenueCenters)
}

// FromResult maps an aggregation result for one location. Money is rounded
// to cents here and nowhere earlier.
func FromResult(locationID uuid.UUID, syncRunID *uuid.UUID, result aggregation.Result) Rows {
	rows := Rows{
		Dates:          append([]time.Time(nil), result.Dates...),
		Daily:          make([]models.DailyRevenueFact, 0, len(result.Daily)),
		Dayparts:       make([]models.DaypartFact, 0, len(result.Dayparts)),
		RevenueCenters: make([]models.RevenueCenterFact, 0, len(result.RevenueCenters)),
	}

	for _, day := range result.Daily {
		rows.Daily = append(rows.Daily, models.DailyRevenueFact{
			LocationID:      locationID,
			BusinessDate:    day.Date,
			GrossSales:      cents(day.Gross),
			NetSales:        cents(day.Net),
			Discounts:       cents(day.Discounts),
			Refunds:         cents(day.Refunds),
			Voids:           cents(day.Voids),
			ServiceCharges:  cents(day.ServiceCharges),
			DeferredRevenue: cents(day.Deferred),
			CashSales:       cents(day.Payment(enums.PaymentTypeCash)),
			CardSales:       cents(day.Payment(enums.PaymentTypeCard)),
			GiftCardSales:   cents(day.Payment(enums.PaymentTypeGiftCard)),
			OtherSales:      cents(day.Payment(enums.PaymentTypeOther)),
			Tips:            cents(day.Tips),
			OrderCount:      day.OrderCount,
			CheckCount:      day.CheckCount,
			AverageCheck:    cents(day.AverageCheck()),
			AverageTip:      cents(day.AverageTip()),
			SyncRunID:       syncRunID,
		})
	}

	for _, bucket := range result.Dayparts {
		rows.Dayparts = append(rows.Dayparts, models.DaypartFact{
			LocationID:      locationID,
			BusinessDate:    bucket.Date,
			Daypart:         bucket.Daypart,
			Revenue:         cents(bucket.Revenue),
			Covers:          bucket.Covers,
			OrderCount:      bucket.OrderCount,
			CategoryColumns: categoryColumns(bucket.Categories),
			SyncRunID:       syncRunID,
		})
	}

	for _, center := range result.RevenueCenters {
		rows.RevenueCenters = append(rows.RevenueCenters, models.RevenueCenterFact{
			LocationID:      locationID,
			BusinessDate:    center.Date,
			RevenueCenterID: center.RevenueCenterID,
			Name:            center.Name,
			IsOutdoor:       center.IsOutdoor,
			NetSales:        cents(center.NetSales),
			OrderCount:      center.OrderCount,
			CheckCount:      center.CheckCount,
			AverageCheck:    cents(center.AverageCheck()),
			CategoryColumns: categoryColumns(center.Categories),
			SyncRunID:       syncRunID,
		})
	}
	return rows
}

func categoryColumns(c revenue.CategorySales) models.CategoryColumns {
	return models.CategoryColumns{
		FoodSales:         cents(c.Food),
		BeerSales:         cents(c.Beer),
		WineSales:         cents(c.Wine),
		LiquorSales:       cents(c.Liquor),
		NonAlcoholicSales: cents(c.NonAlcoholic),
	}
}

func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
