// Package locations stores restaurants and their cached POS lookup tables.
package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/db"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

// Repository exposes persistence helpers for locations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, loc *models.Location) error
	Get(ctx context.Context, id uuid.UUID) (*models.Location, error)
	ListActive(ctx context.Context) ([]models.Location, error)
	Lookups(ctx context.Context, locationID uuid.UUID) (pos.Lookups, error)
	ReplaceLookups(ctx context.Context, locationID uuid.UUID, kind enums.LookupKind, entries map[string]string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a locations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, loc *models.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var loc models.Location
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load location")
	}
	return &loc, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.Location, error) {
	var locs []models.Location
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC, id ASC").
		Find(&locs).Error
	return locs, err
}

// Lookups assembles the cached configuration tables of a location.
func (r *repositoryImpl) Lookups(ctx context.Context, locationID uuid.UUID) (pos.Lookups, error) {
	var entries []models.LookupEntry
	if err := r.db.WithContext(ctx).Where("location_id = ?", locationID).Find(&entries).Error; err != nil {
		return pos.Lookups{}, err
	}

	lookups := pos.Lookups{
		Categories:     map[string]string{},
		ServicePeriods: map[string]string{},
		RevenueCenters: map[string]string{},
	}
	for _, e := range entries {
		switch e.Kind {
		case enums.LookupKindSalesCategory:
			lookups.Categories[e.ExternalID] = e.Name
		case enums.LookupKindServicePeriod:
			lookups.ServicePeriods[e.ExternalID] = e.Name
		case enums.LookupKindRevenueCenter:
			lookups.RevenueCenters[e.ExternalID] = e.Name
		}
	}
	return lookups, nil
}

// ReplaceLookups swaps one lookup table wholesale.
func (r *repositoryImpl) ReplaceLookups(ctx context.Context, locationID uuid.UUID, kind enums.LookupKind, entries map[string]string) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid lookup kind")
	}
	rows := make([]models.LookupEntry, 0, len(entries))
	for id, name := range entries {
		if id == "" {
			continue
		}
		rows = append(rows, models.LookupEntry{LocationID: locationID, Kind: kind, ExternalID: id, Name: name})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ? AND kind = ?", locationID, kind).
			Delete(&models.LookupEntry{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
