package repository

import (
	"bidemoloader/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ColumnRepository stores the column and metric metadata discovered for datasources.
type ColumnRepository interface {
	ReplaceColumns(tx *gorm.DB, dsType string, dsID uint, columns []models.Column) error
	UpsertMetrics(tx *gorm.DB, dsType string, dsID uint, metrics []models.Metric) error
	GetColumns(tx *gorm.DB, dsType string, dsID uint) ([]models.Column, error)
	GetMetrics(tx *gorm.DB, dsType string, dsID uint) ([]models.Metric, error)
}

type columnRepository struct {
	db *gorm.DB
}

// NewColumnRepository creates a new column metadata repository instance.
func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &columnRepository{db: db}
}

var datasourceKey = []clause.Column{{Name: "datasource_type"}, {Name: "datasource_id"}}

// ReplaceColumns upserts columns and removes rows for columns that no longer exist.
func (r *columnRepository) ReplaceColumns(tx *gorm.DB, dsType string, dsID uint, columns []models.Column) error {
	db := conn(tx, r.db)

	names := make([]string, 0, len(columns))
	for i := range columns {
		columns[i].DatasourceType = dsType
		columns[i].DatasourceID = dsID
		names = append(names, columns[i].ColumnName)
	}

	stale := db.Where("datasource_type = ? AND datasource_id = ?", dsType, dsID)
	if len(names) > 0 {
		stale = stale.Where("column_name NOT IN ?", names)
	}
	if err := stale.Delete(&models.Column{}).Error; err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{
		Columns:   append(datasourceKey, clause.Column{Name: "column_name"}),
		DoUpdates: clause.AssignmentColumns([]string{"type", "is_dttm", "groupby", "filterable", "sum", "avg"}),
	}).Create(&columns).Error
}

// UpsertMetrics inserts metrics or refreshes their expression. Metrics a user
// added by hand are left in place.
func (r *columnRepository) UpsertMetrics(tx *gorm.DB, dsType string, dsID uint, metrics []models.Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	for i := range metrics {
		metrics[i].DatasourceType = dsType
		metrics[i].DatasourceID = dsID
	}
	return conn(tx, r.db).Clauses(clause.OnConflict{
		Columns:   append(datasourceKey, clause.Column{Name: "metric_name"}),
		DoUpdates: clause.AssignmentColumns([]string{"verbose_name", "metric_type", "expression"}),
	}).Create(&metrics).Error
}

func (r *columnRepository) GetColumns(tx *gorm.DB, dsType string, dsID uint) ([]models.Column, error) {
	var columns []models.Column
	if err := conn(tx, r.db).
		Where("datasource_type = ? AND datasource_id = ?", dsType, dsID).
		Order("column_name").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *columnRepository) GetMetrics(tx *gorm.DB, dsType string, dsID uint) ([]models.Metric, error) {
	var metrics []models.Metric
	if err := conn(tx, r.db).
		Where("datasource_type = ? AND datasource_id = ?", dsType, dsID).
		Order("metric_name").
		Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}
