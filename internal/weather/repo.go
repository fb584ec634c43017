package weather

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
)

// Repository persists classified observations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Replace(ctx context.Context, locationID uuid.UUID, rows []models.DailyWeatherObservation) error
	List(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyWeatherObservation, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Replace overwrites the observations for the dates present in rows.
func (r *repositoryImpl) Replace(ctx context.Context, locationID uuid.UUID, rows []models.DailyWeatherObservation) error {
	if len(rows) == 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(rows))
	for i := range rows {
		rows[i].LocationID = locationID
		dates = append(dates, rows[i].ObservedDate)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ? AND observed_date IN ?", locationID, dates).
			Delete(&models.DailyWeatherObservation{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
}

func (r *repositoryImpl) List(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]models.DailyWeatherObservation, error) {
	var rows []models.DailyWeatherObservation
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND observed_date >= ? AND observed_date <= ?", locationID, from, to).
		Order("observed_date ASC").
		Find(&rows).Error
	return rows, err
}
