package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// CssTemplateRepository provides data access operations for CSS template records.
type CssTemplateRepository interface {
	GetByName(tx *gorm.DB, name string) (*models.CssTemplate, error)
	Save(tx *gorm.DB, tmpl *models.CssTemplate) error
}

type cssTemplateRepository struct {
	db *gorm.DB
}

// NewCssTemplateRepository creates a new CSS template repository instance.
func NewCssTemplateRepository(db *gorm.DB) CssTemplateRepository {
	return &cssTemplateRepository{db: db}
}

func (r *cssTemplateRepository) GetByName(tx *gorm.DB, name string) (*models.CssTemplate, error) {
	return firstOrNil[models.CssTemplate](conn(tx, r.db), "template_name = ?", name)
}

func (r *cssTemplateRepository) Save(tx *gorm.DB, tmpl *models.CssTemplate) error {
	return conn(tx, r.db).Save(tmpl).Error
}
