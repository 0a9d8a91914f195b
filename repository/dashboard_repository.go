package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// DashboardRepository provides data access operations for dashboard records.
type DashboardRepository interface {
	GetBySlug(tx *gorm.DB, slug string) (*models.Dashboard, error)
	GetByTitle(tx *gorm.DB, title string) (*models.Dashboard, error)
	GetWithSlices(tx *gorm.DB, id uint) (*models.Dashboard, error)
	Save(tx *gorm.DB, dash *models.Dashboard) error
	ReplaceSlices(tx *gorm.DB, dash *models.Dashboard, slices []*models.Slice) error
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository instance.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) GetBySlug(tx *gorm.DB, slug string) (*models.Dashboard, error) {
	return firstOrNil[models.Dashboard](conn(tx, r.db), "slug = ?", slug)
}

func (r *dashboardRepository) GetByTitle(tx *gorm.DB, title string) (*models.Dashboard, error) {
	return firstOrNil[models.Dashboard](conn(tx, r.db), "dashboard_title = ?", title)
}

func (r *dashboardRepository) GetWithSlices(tx *gorm.DB, id uint) (*models.Dashboard, error) {
	var dash models.Dashboard
	if err := conn(tx, r.db).Preload("Slices").Where("id = ?", id).First(&dash).Error; err != nil {
		return nil, err
	}
	return &dash, nil
}

// Save writes the dashboard's own columns; membership goes through ReplaceSlices.
func (r *dashboardRepository) Save(tx *gorm.DB, dash *models.Dashboard) error {
	return conn(tx, r.db).Omit("Slices").Save(dash).Error
}

func (r *dashboardRepository) ReplaceSlices(tx *gorm.DB, dash *models.Dashboard, slices []*models.Slice) error {
	return conn(tx, r.db).Model(dash).Association("Slices").Replace(slices)
}
