package facts

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
)

const insertBatchSize = 200

// Repository persists derived fact rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReplaceRange(ctx context.Context, locationID uuid.UUID, rows Rows) error
	ListDaily(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyRevenueFact, error)
	ListDayparts(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DaypartFact, error)
	ListRevenueCenters(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.RevenueCenterFact, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a facts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// ReplaceRange deletes every fact row of the location on rows.Dates from all
// three tables and inserts the new rows, in one transaction. Dates with no
// surviving orders end up with only their daily row.
func (r *repositoryImpl) ReplaceRange(ctx context.Context, locationID uuid.UUID, rows Rows) error {
	if len(rows.Dates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.DailyRevenueFact{}, &models.DaypartFact{}, &models.RevenueCenterFact{}} {
			if err := tx.Where("location_id = ? AND business_date IN ?", locationID, rows.Dates).Delete(model).Error; err != nil {
				return err
			}
		}

		if len(rows.Daily) > 0 {
			if err := tx.CreateInBatches(&rows.Daily, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.Dayparts) > 0 {
			if err := tx.CreateInBatches(&rows.Dayparts, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.RevenueCenters) > 0 {
			if err := tx.CreateInBatches(&rows.RevenueCenters, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) ListDaily(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyRevenueFact, error) {
	var rows []models.DailyRevenueFact
	err := r.rangeQuery(ctx, &models.DailyRevenueFact{}, locationID, from, to).
		Order("business_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListDayparts(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DaypartFact, error) {
	var rows []models.DaypartFact
	if err := r.rangeQuery(ctx, &models.DaypartFact{}, locationID, from, to).
		Order("business_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].BusinessDate.Equal(rows[j].BusinessDate) {
			return rows[i].BusinessDate.Before(rows[j].BusinessDate)
		}
		return rows[i].Daypart.Rank() < rows[j].Daypart.Rank()
	})
	return rows, nil
}

func (r *repositoryImpl) ListRevenueCenters(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.RevenueCenterFact, error) {
	var rows []models.RevenueCenterFact
	err := r.rangeQuery(ctx, &models.RevenueCenterFact{}, locationID, from, to).
		Order("business_date ASC, revenue_center_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) rangeQuery(ctx context.Context, model any, locationID uuid.UUID, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(model).
		Where("location_id = ? AND business_date >= ? AND business_date <= ?", locationID, from, to)
}
