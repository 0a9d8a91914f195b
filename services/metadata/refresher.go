// Package metadata derives column and metric records for registered
// datasources from the storage that backs them.
package metadata

import (
	"context"
	"fmt"
	"strings"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/repository"
	"bidemoloader/services/search"

	"gorm.io/gorm"
)

// Refresher re-derives datasource metadata after data has been loaded.
type Refresher interface {
	// FetchMetadata reads the table's columns from the relational store and
	// regenerates its columns and metrics.
	FetchMetadata(ctx context.Context, table *models.SqlTable) error
	// RefreshFields reads the index mapping from the search cluster.
	RefreshFields(ctx context.Context, ds *models.SearchDatasource) error
	// GenerateMetrics builds metrics from the fields stored by RefreshFields.
	GenerateMetrics(ctx context.Context, ds *models.SearchDatasource) error
}

type kind int

const (
	kindString kind = iota
	kindNumeric
	kindTemporal
	kindOther
)

type refresher struct {
	db         *gorm.DB
	columnRepo repository.ColumnRepository
	newClient  search.Factory
}

// NewRefresher creates a Refresher. newClient may be nil when no search
// cluster is used.
func NewRefresher(db *gorm.DB, columnRepo repository.ColumnRepository, newClient search.Factory) Refresher {
	return &refresher{db: db, columnRepo: columnRepo, newClient: newClient}
}

func (r *refresher) FetchMetadata(ctx context.Context, table *models.SqlTable) error {
	db := r.db.WithContext(ctx)
	colTypes, err := db.Migrator().ColumnTypes(table.Name)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", table.Name, err)
	}
	if len(colTypes) == 0 {
		return fmt.Errorf("table %s has no columns", table.Name)
	}

	columns := make([]models.Column, 0, len(colTypes))
	for _, ct := range colTypes {
		columns = append(columns, newColumn(ct.Name(), ct.DatabaseTypeName(), classifySQLType(ct.DatabaseTypeName())))
	}

	if err := r.columnRepo.ReplaceColumns(db, models.DatasourceTypeTable, table.ID, columns); err != nil {
		return fmt.Errorf("save columns of %s: %w", table.Name, err)
	}
	if err := r.columnRepo.UpsertMetrics(db, models.DatasourceTypeTable, table.ID, sqlMetrics(columns)); err != nil {
		return fmt.Errorf("save metrics of %s: %w", table.Name, err)
	}
	logger.Debugf("Fetched metadata for table %s: %d columns", table.Name, len(columns))
	return nil
}

func (r *refresher) RefreshFields(ctx context.Context, ds *models.SearchDatasource) error {
	if ds.Cluster == nil {
		return fmt.Errorf("datasource %s has no cluster loaded", ds.Name)
	}
	if r.newClient == nil {
		return fmt.Errorf("no search client configured")
	}
	client, err := r.newClient(ds.Cluster.URLs)
	if err != nil {
		return err
	}
	fields, err := client.FieldTypes(ctx, ds.IndexName)
	if err != nil {
		return err
	}

	columns := make([]models.Column, 0, len(fields))
	for _, name := range search.SortedFields(fields) {
		columns = append(columns, newColumn(name, fields[name], classifyFieldType(fields[name])))
	}
	if err := r.columnRepo.ReplaceColumns(r.db.WithContext(ctx), models.DatasourceTypeSearch, ds.ID, columns); err != nil {
		return fmt.Errorf("save fields of %s: %w", ds.Name, err)
	}
	logger.Debugf("Refreshed fields for index %s: %d fields", ds.IndexName, len(columns))
	return nil
}

func (r *refresher) GenerateMetrics(ctx context.Context, ds *models.SearchDatasource) error {
	db := r.db.WithContext(ctx)
	columns, err := r.columnRepo.GetColumns(db, models.DatasourceTypeSearch, ds.ID)
	if err != nil {
		return fmt.Errorf("load fields of %s: %w", ds.Name, err)
	}

	metrics := []models.Metric{{MetricName: "count", VerboseName: "COUNT(*)", MetricType: "count", Expression: `{"type":"count"}`}}
	for _, c := range columns {
		if !c.Sum {
			continue
		}
		metrics = append(metrics,
			models.Metric{MetricName: "sum__" + c.ColumnName, VerboseName: "SUM(" + c.ColumnName + ")", MetricType: "sum",
				Expression: fmt.Sprintf(`{"type":"sum","field":%q}`, c.ColumnName)},
			models.Metric{MetricName: "avg__" + c.ColumnName, VerboseName: "AVG(" + c.ColumnName + ")", MetricType: "avg",
				Expression: fmt.Sprintf(`{"type":"avg","field":%q}`, c.ColumnName)},
		)
	}
	if err := r.columnRepo.UpsertMetrics(db, models.DatasourceTypeSearch, ds.ID, metrics); err != nil {
		return fmt.Errorf("save metrics of %s: %w", ds.Name, err)
	}
	return nil
}

func newColumn(name, typ string, k kind) models.Column {
	return models.Column{
		ColumnName: name,
		Type:       strings.ToUpper(typ),
		IsDttm:     k == kindTemporal,
		Groupby:    k == kindString,
		Filterable: k == kindString,
		Sum:        k == kindNumeric,
		Avg:        k == kindNumeric,
	}
}

func sqlMetrics(columns []models.Column) []models.Metric {
	metrics := []models.Metric{{MetricName: "count", VerboseName: "COUNT(*)", MetricType: "count", Expression: "COUNT(*)"}}
	for _, c := range columns {
		if !c.Sum {
			continue
		}
		metrics = append(metrics,
			models.Metric{MetricName: "sum__" + c.ColumnName, VerboseName: "SUM(" + c.ColumnName + ")", MetricType: "sum",
				Expression: "SUM(" + c.ColumnName + ")"},
			models.Metric{MetricName: "avg__" + c.ColumnName, VerboseName: "AVG(" + c.ColumnName + ")", MetricType: "avg",
				Expression: "AVG(" + c.ColumnName + ")"},
		)
	}
	return metrics
}

// classifySQLType buckets a database type name as reported by the driver.
func classifySQLType(typeName string) kind {
	t := strings.ToUpper(typeName)
	switch {
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return kindTemporal
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"), t == "STRING":
		return kindString
	case strings.Contains(t, "INT"), strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"),
		strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return kindNumeric
	case strings.Contains(t, "BOOL"), t == "BIT":
		return kindString
	}
	return kindOther
}

func classifyFieldType(typeName string) kind {
	switch typeName {
	case "date", "date_nanos":
		return kindTemporal
	case "keyword", "text", "boolean", "ip":
		return kindString
	case "long", "integer", "short", "byte", "double", "float", "half_float", "scaled_float", "unsigned_long":
		return kindNumeric
	}
	return kindOther
}
