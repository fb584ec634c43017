package warehouse

import (
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/facts"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
)

// DailyRevenueRow mirrors the daily_revenue_facts BigQuery schema.
type DailyRevenueRow struct {
	LocationID      string     `bigquery:"location_id"`
	BusinessDate    civil.Date `bigquery:"business_date"`
	GrossSales      *big.Rat   `bigquery:"gross_sales"`
	NetSales        *big.Rat   `bigquery:"net_sales"`
	Discounts       *big.Rat   `bigquery:"discounts"`
	Refunds         *big.Rat   `bigquery:"refunds"`
	Voids           *big.Rat   `bigquery:"voids"`
	ServiceCharges  *big.Rat   `bigquery:"service_charges"`
	DeferredRevenue *big.Rat   `bigquery:"deferred_revenue"`
	CashSales       *big.Rat   `bigquery:"cash_sales"`
	CardSales       *big.Rat   `bigquery:"card_sales"`
	GiftCardSales   *big.Rat   `bigquery:"gift_card_sales"`
	OtherSales      *big.Rat   `bigquery:"other_sales"`
	Tips            *big.Rat   `bigquery:"tips"`
	OrderCount      int64      `bigquery:"order_count"`
	CheckCount      int64      `bigquery:"check_count"`
	AverageCheck    *big.Rat   `bigquery:"average_check"`
	AverageTip      *big.Rat   `bigquery:"average_tip"`
	SyncRunID       string     `bigquery:"sync_run_id"`
	ExportedAt      time.Time  `bigquery:"exported_at"`
}

// DaypartRow mirrors the daypart_facts BigQuery schema.
type DaypartRow struct {
	LocationID        string     `bigquery:"location_id"`
	BusinessDate      civil.Date `bigquery:"business_date"`
	Daypart           string     `bigquery:"daypart"`
	Revenue           *big.Rat   `bigquery:"revenue"`
	Covers            int64      `bigquery:"covers"`
	OrderCount        int64      `bigquery:"order_count"`
	FoodSales         *big.Rat   `bigquery:"food_sales"`
	BeerSales         *big.Rat   `bigquery:"beer_sales"`
	WineSales         *big.Rat   `bigquery:"wine_sales"`
	LiquorSales       *big.Rat   `bigquery:"liquor_sales"`
	NonAlcoholicSales *big.Rat   `bigquery:"non_alcoholic_sales"`
	SyncRunID         string     `bigquery:"sync_run_id"`
	ExportedAt        time.Time  `bigquery:"exported_at"`
}

// RevenueCenterRow mirrors the revenue_center_facts BigQuery schema.
type RevenueCenterRow struct {
	LocationID        string     `bigquery:"location_id"`
	BusinessDate      civil.Date `bigquery:"business_date"`
	RevenueCenterID   string     `bigquery:"revenue_center_id"`
	Name              string     `bigquery:"name"`
	IsOutdoor         bool       `bigquery:"is_outdoor"`
	NetSales          *big.Rat   `bigquery:"net_sales"`
	OrderCount        int64      `bigquery:"order_count"`
	CheckCount        int64      `bigquery:"check_count"`
	AverageCheck      *big.Rat   `bigquery:"average_check"`
	FoodSales         *big.Rat   `bigquery:"food_sales"`
	BeerSales         *big.Rat   `bigquery:"beer_sales"`
	WineSales         *big.Rat   `bigquery:"wine_sales"`
	LiquorSales       *big.Rat   `bigquery:"liquor_sales"`
	NonAlcoholicSales *big.Rat   `bigquery:"non_alcoholic_sales"`
	SyncRunID         string     `bigquery:"sync_run_id"`
	ExportedAt        time.Time  `bigquery:"exported_at"`
}

func dailyRow(f models.DailyRevenueFact, at time.Time) DailyRevenueRow {
	return DailyRevenueRow{
		LocationID:      f.LocationID.String(),
		BusinessDate:    civil.DateOf(f.BusinessDate),
		GrossSales:      numeric(f.GrossSales),
		NetSales:        numeric(f.NetSales),
		Discounts:       numeric(f.Discounts),
		Refunds:         numeric(f.Refunds),
		Voids:           numeric(f.Voids),
		ServiceCharges:  numeric(f.ServiceCharges),
		DeferredRevenue: numeric(f.DeferredRevenue),
		CashSales:       numeric(f.CashSales),
		CardSales:       numeric(f.CardSales),
		GiftCardSales:   numeric(f.GiftCardSales),
		OtherSales:      numeric(f.OtherSales),
		Tips:            numeric(f.Tips),
		OrderCount:      int64(f.OrderCount),
		CheckCount:      int64(f.CheckCount),
		AverageCheck:    numeric(f.AverageCheck),
		AverageTip:      numeric(f.AverageTip),
		SyncRunID:       runID(f.SyncRunID),
		ExportedAt:      at,
	}
}

func daypartRow(f models.DaypartFact, at time.Time) DaypartRow {
	return DaypartRow{
		LocationID:        f.LocationID.String(),
		BusinessDate:      civil.DateOf(f.BusinessDate),
		Daypart:           f.Daypart.String(),
		Revenue:           numeric(f.Revenue),
		Covers:            int64(f.Covers),
		OrderCount:        int64(f.OrderCount),
		FoodSales:         numeric(f.FoodSales),
		BeerSales:         numeric(f.BeerSales),
		WineSales:         numeric(f.WineSales),
		LiquorSales:       numeric(f.LiquorSales),
		NonAlcoholicSales: numeric(f.NonAlcoholicSales),
		SyncRunID:         runID(f.SyncRunID),
		ExportedAt:        at,
	}
}

func revenueCenterRow(f models.RevenueCenterFact, at time.Time) RevenueCenterRow {
	return RevenueCenterRow{
		LocationID:        f.LocationID.String(),
		BusinessDate:      civil.DateOf(f.BusinessDate),
		RevenueCenterID:   f.RevenueCenterID,
		Name:              f.Name,
		IsOutdoor:         f.IsOutdoor,
		NetSales:          numeric(f.NetSales),
		OrderCount:        int64(f.OrderCount),
		CheckCount:        int64(f.CheckCount),
		AverageCheck:      numeric(f.AverageCheck),
		FoodSales:         numeric(f.FoodSales),
		BeerSales:         numeric(f.BeerSales),
		WineSales:         numeric(f.WineSales),
		LiquorSales:       numeric(f.LiquorSales),
		NonAlcoholicSales: numeric(f.NonAlcoholicSales),
		SyncRunID:         runID(f.SyncRunID),
		ExportedAt:        at,
	}
}

// Batch is one sync's worth of warehouse rows.
type Batch struct {
	Daily          []DailyRevenueRow
	Dayparts       []DaypartRow
	RevenueCenters []RevenueCenterRow
}

// BatchFromFacts converts persisted fact rows into warehouse rows stamped with at.
func BatchFromFacts(rows facts.Rows, at time.Time) Batch {
	var b Batch
	for _, f := range rows.Daily {
		b.Daily = append(b.Daily, dailyRow(f, at))
	}
	for _, f := range rows.Dayparts {
		b.Dayparts = append(b.Dayparts, daypartRow(f, at))
	}
	for _, f := range rows.RevenueCenters {
		b.RevenueCenters = append(b.RevenueCenters, revenueCenterRow(f, at))
	}
	return b
}

func numeric(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func runID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
