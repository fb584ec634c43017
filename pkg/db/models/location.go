package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// Location is a single restaurant that syncs from one POS account.
type Location struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrgID       uuid.UUID         `gorm:"column:org_id;type:uuid;not null;index"`
	Name        string            `gorm:"column:name;not null"`
	Timezone    string            `gorm:"column:timezone;not null;default:'America/New_York'"`
	Latitude    float64           `gorm:"column:latitude;not null"`
	Longitude   float64           `gorm:"column:longitude;not null"`
	POSProvider enums.POSProvider `gorm:"column:pos_provider;type:pos_provider_enum;not null"`
	ExternalID  string            `gorm:"column:external_id;not null"`
	Active      bool              `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Location) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// TimeLocation resolves the IANA zone, falling back to UTC for unknown names.
func (l Location) TimeLocation() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LookupEntry is one row of a POS configuration table (sales categories,
// service periods, revenue centers) cached per location.
type LookupEntry struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	LocationID uuid.UUID        `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_lookup_entries_key,priority:1"`
	Kind       enums.LookupKind `gorm:"column:kind;type:lookup_kind_enum;not null;uniqueIndex:ux_lookup_entries_key,priority:2"`
	ExternalID string           `gorm:"column:external_id;not null;uniqueIndex:ux_lookup_entries_key,priority:3"`
	Name       string           `gorm:"column:name;not null"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *LookupEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
