package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
)

// SqlTableRepository provides data access operations for table datasource records.
type SqlTableRepository interface {
	GetByName(tx *gorm.DB, tableName string) (*models.SqlTable, error)
	Save(tx *gorm.DB, table *models.SqlTable) error
}

type sqlTableRepository struct {
	db *gorm.DB
}

// NewSqlTableRepository creates a new table datasource repository instance.
func NewSqlTableRepository(db *gorm.DB) SqlTableRepository {
	return &sqlTableRepository{db: db}
}

func (r *sqlTableRepository) GetByName(tx *gorm.DB, tableName string) (*models.SqlTable, error) {
	return firstOrNil[models.SqlTable](conn(tx, r.db), "table_name = ?", tableName)
}

// Save persists the table record. The Database association is omitted so the
// connection record is only ever written by its own repository.
func (r *sqlTableRepository) Save(tx *gorm.DB, table *models.SqlTable) error {
	return conn(tx, r.db).Omit("Database").Save(table).Error
}

// SearchDatasourceRepository provides data access operations for index datasource records.
type SearchDatasourceRepository interface {
	GetByName(tx *gorm.DB, name string) (*models.SearchDatasource, error)
	Save(tx *gorm.DB, ds *models.SearchDatasource) error
}

type searchDatasourceRepository struct {
	db *gorm.DB
}

// NewSearchDatasourceRepository creates a new index datasource repository instance.
func NewSearchDatasourceRepository(db *gorm.DB) SearchDatasourceRepository {
	return &searchDatasourceRepository{db: db}
}

func (r *searchDatasourceRepository) GetByName(tx *gorm.DB, name string) (*models.SearchDatasource, error) {
	return firstOrNil[models.SearchDatasource](conn(tx, r.db), "datasource_name = ?", name)
}

func (r *searchDatasourceRepository) Save(tx *gorm.DB, ds *models.SearchDatasource) error {
	return conn(tx, r.db).Omit("Cluster").Save(ds).Error
}
