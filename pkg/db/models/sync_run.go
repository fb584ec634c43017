package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// SyncRun records one POS sync attempt and the audit totals it produced.
type SyncRun struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	LocationID     uuid.UUID         `gorm:"column:location_id;type:uuid;not null;index"`
	Provider       enums.POSProvider `gorm:"column:provider;type:pos_provider_enum;not null"`
	Trigger        string            `gorm:"column:trigger_source;not null"`
	RangeStart     time.Time         `gorm:"column:range_start;type:date;not null"`
	RangeEnd       time.Time         `gorm:"column:range_end;type:date;not null"`
	Status         enums.SyncStatus  `gorm:"column:status;type:sync_status_enum;not null"`
	OrdersFetched  int               `gorm:"column:orders_fetched;not null;default:0"`
	DaysWritten    int               `gorm:"column:days_written;not null;default:0"`
	NetSales       decimal.Decimal   `gorm:"column:net_sales;type:numeric(14,2);not null;default:0"`
	VoidedAmount   decimal.Decimal   `gorm:"column:voided_amount;type:numeric(14,2);not null;default:0"`
	RefundsAudited decimal.Decimal   `gorm:"column:refunds_audited;type:numeric(14,2);not null;default:0"`
	DeferredAmount decimal.Decimal   `gorm:"column:deferred_amount;type:numeric(14,2);not null;default:0"`
	Error          string            `gorm:"column:error;not null;default:''"`
	StartedAt      time.Time         `gorm:"column:started_at;not null"`
	FinishedAt     *time.Time        `gorm:"column:finished_at"`
}

func (r *SyncRun) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
