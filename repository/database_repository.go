package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// DatabaseRepository provides data access operations for database connection records.
type DatabaseRepository interface {
	GetByName(tx *gorm.DB, name string) (*models.Database, error)
	Save(tx *gorm.DB, database *models.Database) error
}

type databaseRepository struct {
	db *gorm.DB
}

// NewDatabaseRepository creates a new database connection repository instance.
func NewDatabaseRepository(db *gorm.DB) DatabaseRepository {
	return &databaseRepository{db: db}
}

func (r *databaseRepository) GetByName(tx *gorm.DB, name string) (*models.Database, error) {
	return firstOrNil[models.Database](conn(tx, r.db), "database_name = ?", name)
}

func (r *databaseRepository) Save(tx *gorm.DB, database *models.Database) error {
	return conn(tx, r.db).Save(database).Error
}
