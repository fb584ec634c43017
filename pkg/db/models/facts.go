package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// DailyRevenueFact is the transaction summary for one location and business date.
//
// Grain: (location_id, business_date). Rows are derived data; a sync deletes
// every row for the dates it touches and inserts fresh ones.
type DailyRevenueFact struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID      uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_daily_revenue_facts_day,priority:1"`
	BusinessDate    time.Time       `gorm:"column:business_date;type:date;not null;uniqueIndex:ux_daily_revenue_facts_day,priority:2"`
	GrossSales      decimal.Decimal `gorm:"column:gross_sales;type:numeric(14,2);not null"`
	NetSales        decimal.Decimal `gorm:"column:net_sales;type:numeric(14,2);not null"`
	Discounts       decimal.Decimal `gorm:"column:discounts;type:numeric(14,2);not null"`
	Refunds         decimal.Decimal `gorm:"column:refunds;type:numeric(14,2);not null"`
	Voids           decimal.Decimal `gorm:"column:voids;type:numeric(14,2);not null"`
	ServiceCharges  decimal.Decimal `gorm:"column:service_charges;type:numeric(14,2);not null"`
	DeferredRevenue decimal.Decimal `gorm:"column:deferred_revenue;type:numeric(14,2);not null"`
	CashSales       decimal.Decimal `gorm:"column:cash_sales;type:numeric(14,2);not null"`
	CardSales       decimal.Decimal `gorm:"column:card_sales;type:numeric(14,2);not null"`
	GiftCardSales   decimal.Decimal `gorm:"column:gift_card_sales;type:numeric(14,2);not null"`
	OtherSales      decimal.Decimal `gorm:"column:other_sales;type:numeric(14,2);not null"`
	Tips            decimal.Decimal `gorm:"column:tips;type:numeric(14,2);not null"`
	OrderCount      int             `gorm:"column:order_count;not null"`
	CheckCount      int             `gorm:"column:check_count;not null"`
	AverageCheck    decimal.Decimal `gorm:"column:average_check;type:numeric(14,2);not null"`
	AverageTip      decimal.Decimal `gorm:"column:average_tip;type:numeric(14,2);not null"`
	SyncRunID       *uuid.UUID      `gorm:"column:sync_run_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (f *DailyRevenueFact) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// CategoryColumns holds the five persisted category sales figures.
type CategoryColumns struct {
	FoodSales         decimal.Decimal `gorm:"column:food_sales;type:numeric(14,2);not null"`
	BeerSales         decimal.Decimal `gorm:"column:beer_sales;type:numeric(14,2);not null"`
	WineSales         decimal.Decimal `gorm:"column:wine_sales;type:numeric(14,2);not null"`
	LiquorSales       decimal.Decimal `gorm:"column:liquor_sales;type:numeric(14,2);not null"`
	NonAlcoholicSales decimal.Decimal `gorm:"column:non_alcoholic_sales;type:numeric(14,2);not null"`
}

// DaypartFact is one (location, business date, daypart) bucket.
type DaypartFact struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID   uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_daypart_facts_bucket,priority:1"`
	BusinessDate time.Time       `gorm:"column:business_date;type:date;not null;uniqueIndex:ux_daypart_facts_bucket,priority:2"`
	Daypart      enums.Daypart   `gorm:"column:daypart;type:daypart_enum;not null;uniqueIndex:ux_daypart_facts_bucket,priority:3"`
	Revenue      decimal.Decimal `gorm:"column:revenue;type:numeric(14,2);not null"`
	Covers       int             `gorm:"column:covers;not null"`
	OrderCount   int             `gorm:"column:order_count;not null"`
	CategoryColumns
	SyncRunID *uuid.UUID `gorm:"column:sync_run_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (f *DaypartFact) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// RevenueCenterFact is one (location, business date, revenue center) bucket.
type RevenueCenterFact struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID      uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_revenue_center_facts_bucket,priority:1"`
	BusinessDate    time.Time       `gorm:"column:business_date;type:date;not null;uniqueIndex:ux_revenue_center_facts_bucket,priority:2"`
	RevenueCenterID string          `gorm:"column:revenue_center_id;not null;uniqueIndex:ux_revenue_center_facts_bucket,priority:3"`
	Name            string          `gorm:"column:name;not null"`
	IsOutdoor       bool            `gorm:"column:is_outdoor;not null"`
	NetSales        decimal.Decimal `gorm:"column:net_sales;type:numeric(14,2);not null"`
	OrderCount      int             `gorm:"column:order_count;not null"`
	CheckCount      int             `gorm:"column:check_count;not null"`
	AverageCheck    decimal.Decimal `gorm:"column:average_check;type:numeric(14,2);not null"`
	CategoryColumns
	SyncRunID *uuid.UUID `gorm:"column:sync_run_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (f *RevenueCenterFact) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
