package models

// Column describes one field of a datasource as discovered by the metadata
// refresh. Rows are keyed by (datasource_type, datasource_id, column_name).
type Column struct {
	ID             uint   `gorm:"primaryKey;column:id" json:"id"`
	DatasourceType string `gorm:"column:datasource_type;size:32;uniqueIndex:idx_datasource_column" json:"datasource_type"`
	DatasourceID   uint   `gorm:"column:datasource_id;uniqueIndex:idx_datasource_column" json:"datasource_id"`
	ColumnName     string `gorm:"column:column_name;size:250;uniqueIndex:idx_datasource_column" json:"column_name"`
	Type           string `gorm:"column:type;size:64" json:"type"`
	IsDttm         bool   `gorm:"column:is_dttm" json:"is_dttm"`
	Groupby        bool   `gorm:"column:groupby" json:"groupby"`
	Filterable     bool   `gorm:"column:filterable" json:"filterable"`
	Sum            bool   `gorm:"column:sum" json:"sum"`
	Avg            bool   `gorm:"column:avg" json:"avg"`
}

// TableName specifies the static table name for GORM.
func (Column) TableName() string {
	return "datasource_columns"
}

// Metric is a named aggregate expression available to slices, e.g. sum__value.
type Metric struct {
	ID             uint   `gorm:"primaryKey;column:id" json:"id"`
	DatasourceType string `gorm:"column:datasource_type;size:32;uniqueIndex:idx_datasource_metric" json:"datasource_type"`
	DatasourceID   uint   `gorm:"column:datasource_id;uniqueIndex:idx_datasource_metric" json:"datasource_id"`
	MetricName     string `gorm:"column:metric_name;size:250;uniqueIndex:idx_datasource_metric" json:"metric_name"`
	VerboseName    string `gorm:"column:verbose_name;size:1024" json:"verbose_name"`
	MetricType     string `gorm:"column:metric_type;size:32" json:"metric_type"`
	Expression     string `gorm:"column:expression;type:text" json:"expression"`
}

// TableName specifies the static table name for GORM.
func (Metric) TableName() string {
	return "datasource_metrics"
}
