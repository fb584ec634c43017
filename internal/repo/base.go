// Package repo holds the GORM plumbing shared by domain repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base binds a repository to a connection or an open transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
