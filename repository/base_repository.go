package repository

import (
	"context"
	"fmt"

	"bidemoloader/models"

	"gorm.io/gorm"
)

// BaseRepository provides transaction management capabilities for database operations.
type BaseRepository interface {
	BeginContext(ctx context.Context) *gorm.DB
	DB() *gorm.DB
}

type baseRepository struct {
	db *gorm.DB
}

// NewBaseRepository creates a new base repository instance with database connection.
func NewBaseRepository(db *gorm.DB) BaseRepository {
	return &baseRepository{db: db}
}

// BeginContext starts a transaction bound to ctx.
func (r *baseRepository) BeginContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *baseRepository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate creates or updates the tables for every loader model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return nil
}

// conn returns tx when the caller runs inside a transaction, else the repository handle.
func conn(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// firstOrNil loads the first row matching query, or nil when nothing matches.
// Find is used instead of First so a miss is not logged as an error by gorm.
func firstOrNil[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var rows []T
	if err := db.Where(query, args...).Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
