package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tablesight/tablesight-backend/pkg/db/models"
)

// NewSQLiteTestClient opens an isolated in-memory sqlite database with the
// analytics schema migrated. Each call gets its own database.
func NewSQLiteTestClient(t testing.TB) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(AllModels()...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &Client{conn: conn}
}

// AllModels lists every persisted model.
func AllModels() []any {
	return []any{
		&models.Location{},
		&models.LookupEntry{},
		&models.DailyRevenueFact{},
		&models.DaypartFact{},
		&models.RevenueCenterFact{},
		&models.DailyWeatherObservation{},
		&models.SyncRun{},
	}
}
