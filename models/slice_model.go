package models

// Slice is a saved chart configuration bound to one datasource. Exactly one
// of TableID and SearchDatasourceID is set, matching DatasourceType.
type Slice struct {
	ID                 uint              `gorm:"primaryKey;column:id" json:"id"`
	SliceName          string            `gorm:"column:slice_name;size:250;uniqueIndex" json:"slice_name" validate:"required"`
	VizType            string            `gorm:"column:viz_type;size:250" json:"viz_type" validate:"required"`
	DatasourceType     string            `gorm:"column:datasource_type;size:200" json:"datasource_type" validate:"oneof=table elasticsearch"`
	TableID            *uint             `gorm:"column:table_id" json:"table_id,omitempty"`
	Table              *SqlTable         `gorm:"foreignKey:TableID" json:"-"`
	SearchDatasourceID *uint             `gorm:"column:elasticsearch_datasource_id" json:"elasticsearch_datasource_id,omitempty"`
	SearchDatasource   *SearchDatasource `gorm:"foreignKey:SearchDatasourceID" json:"-"`
	Params             string            `gorm:"column:params;type:text" json:"params"` // Serialized form data, sorted keys
	Dashboards         []*Dashboard      `gorm:"many2many:dashboard_slices" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Slice) TableName() string {
	return "slices"
}
