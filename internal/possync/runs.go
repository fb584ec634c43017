package possync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/internal/repo"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/pagination"
)

// RunRepository persists SyncRun records.
type RunRepository interface {
	WithTx(tx *gorm.DB) RunRepository
	Create(ctx context.Context, run *models.SyncRun) error
	Finish(ctx context.Context, run *models.SyncRun) error
	Latest(ctx context.Context, locationID uuid.UUID) (*models.SyncRun, error)
	List(ctx context.Context, locationID uuid.UUID, params pagination.Params) (pagination.Page[models.SyncRun], error)
}

type runRepository struct {
	repo.Base
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{Base: repo.NewBase(db)}
}

func (r *runRepository) WithTx(tx *gorm.DB) RunRepository {
	if tx == nil {
		return r
	}
	return &runRepository{Base: repo.NewBase(tx)}
}

func (r *runRepository) Create(ctx context.Context, run *models.SyncRun) error {
	return r.DB(ctx).Create(run).Error
}

// Finish writes the terminal status, counts and audit totals of a run.
func (r *runRepository) Finish(ctx context.Context, run *models.SyncRun) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	return r.DB(ctx).
		Model(&models.SyncRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"status":          run.Status,
			"orders_fetched":  run.OrdersFetched,
			"days_written":    run.DaysWritten,
			"net_sales":       run.NetSales,
			"voided_amount":   run.VoidedAmount,
			"refunds_audited": run.RefundsAudited,
			"deferred_amount": run.DeferredAmount,
			"error":           run.Error,
			"finished_at":     run.FinishedAt,
		}).Error
}

// Latest returns the most recently started run for a location, nil when none.
func (r *runRepository) Latest(ctx context.Context, locationID uuid.UUID) (*models.SyncRun, error) {
	var runs []models.SyncRun
	err := r.DB(ctx).
		Where("location_id = ?", locationID).
		Order("started_at DESC").
		Limit(1).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// List pages through a location's runs, newest first.
func (r *runRepository) List(ctx context.Context, locationID uuid.UUID, params pagination.Params) (pagination.Page[models.SyncRun], error) {
	q := r.DB(ctx).Where("location_id = ?", locationID)
	if c := params.Cursor; c != nil {
		q = q.Where("(started_at < ?) OR (started_at = ? AND id < ?)", c.At, c.At, c.ID)
	}

	var runs []models.SyncRun
	if err := q.Order("started_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&runs).Error; err != nil {
		return pagination.Page[models.SyncRun]{}, err
	}
	return pagination.Paginate(runs, params.Limit, func(run models.SyncRun) pagination.Cursor {
		return pagination.Cursor{At: run.StartedAt, ID: run.ID}
	}), nil
}
