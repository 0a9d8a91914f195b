package models

// Datasource type discriminators stored on slices and column/metric rows.
const (
	DatasourceTypeTable  = "table"
	DatasourceTypeSearch = "elasticsearch"
)

// Datasource is a registered, queryable dataset backed by either a
// relational table or a search index.
type Datasource interface {
	DatasourceType() string
	DatasourceID() uint
	DatasourceName() string
}

// SqlTable registers a relational table as a datasource.
type SqlTable struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:table_name;size:250;uniqueIndex" json:"table_name" validate:"required"`
	DatabaseID  uint      `gorm:"column:database_id" json:"database_id" validate:"required"`
	Database    *Database `gorm:"foreignKey:DatabaseID" json:"-"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	MainDttmCol string    `gorm:"column:main_dttm_col;size:250" json:"main_dttm_col"` // Primary time column
	IsFeatured  bool      `gorm:"column:is_featured" json:"is_featured"`
}

// TableName specifies the static table name for GORM.
func (SqlTable) TableName() string {
	return "tables"
}

func (t *SqlTable) DatasourceType() string { return DatasourceTypeTable }
func (t *SqlTable) DatasourceID() uint     { return t.ID }
func (t *SqlTable) DatasourceName() string { return t.Name }

// SearchDatasource registers a search-cluster index as a datasource.
type SearchDatasource struct {
	ID          uint           `gorm:"primaryKey;column:id" json:"id"`
	Name        string         `gorm:"column:datasource_name;size:250;uniqueIndex" json:"datasource_name" validate:"required"`
	ClusterID   uint           `gorm:"column:cluster_id" json:"cluster_id" validate:"required"`
	Cluster     *SearchCluster `gorm:"foreignKey:ClusterID" json:"-"`
	IndexName   string         `gorm:"column:index_name;size:250" json:"index_name" validate:"required"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	MainDttmCol string         `gorm:"column:main_dttm_col;size:250" json:"main_dttm_col"`
	IsFeatured  bool           `gorm:"column:is_featured" json:"is_featured"`
}

// TableName specifies the static table name for GORM.
func (SearchDatasource) TableName() string {
	return "elasticsearch_datasources"
}

func (d *SearchDatasource) DatasourceType() string { return DatasourceTypeSearch }
func (d *SearchDatasource) DatasourceID() uint     { return d.ID }
func (d *SearchDatasource) DatasourceName() string { return d.Name }
