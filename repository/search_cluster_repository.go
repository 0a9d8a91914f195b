package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// SearchClusterRepository provides data access operations for search cluster records.
type SearchClusterRepository interface {
	GetByName(tx *gorm.DB, name string) (*models.SearchCluster, error)
	Save(tx *gorm.DB, cluster *models.SearchCluster) error
}

type searchClusterRepository struct {
	db *gorm.DB
}

// NewSearchClusterRepository creates a new search cluster repository instance.
func NewSearchClusterRepository(db *gorm.DB) SearchClusterRepository {
	return &searchClusterRepository{db: db}
}

func (r *searchClusterRepository) GetByName(tx *gorm.DB, name string) (*models.SearchCluster, error) {
	return firstOrNil[models.SearchCluster](conn(tx, r.db), "cluster_name = ?", name)
}

func (r *searchClusterRepository) Save(tx *gorm.DB, cluster *models.SearchCluster) error {
	return conn(tx, r.db).Save(cluster).Error
}
