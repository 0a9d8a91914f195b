package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// SliceRepository provides data access operations for slice records.
type SliceRepository interface {
	GetByName(tx *gorm.DB, name string) (*models.Slice, error)
	Create(tx *gorm.DB, slc *models.Slice) error
	Delete(tx *gorm.DB, slc *models.Slice) error
}

type sliceRepository struct {
	db *gorm.DB
}

// NewSliceRepository creates a new slice repository instance.
func NewSliceRepository(db *gorm.DB) SliceRepository {
	return &sliceRepository{db: db}
}

func (r *sliceRepository) GetByName(tx *gorm.DB, name string) (*models.Slice, error) {
	return firstOrNil[models.Slice](conn(tx, r.db), "slice_name = ?", name)
}

func (r *sliceRepository) Create(tx *gorm.DB, slc *models.Slice) error {
	return conn(tx, r.db).Omit("Table", "SearchDatasource", "Dashboards").Create(slc).Error
}

// Delete removes the slice together with its dashboard memberships.
func (r *sliceRepository) Delete(tx *gorm.DB, slc *models.Slice) error {
	db := conn(tx, r.db)
	if err := db.Model(slc).Association("Dashboards").Clear(); err != nil {
		return err
	}
	return db.Delete(&models.Slice{}, slc.ID).Error
}
