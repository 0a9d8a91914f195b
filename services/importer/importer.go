// Package importer loads example files into a relational table or a search
// index and registers the result as a datasource.
package importer

import (
	"context"
	"fmt"
	"io"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/pkg/metrics"
	"bidemoloader/repository"
	"bidemoloader/services/datafiles"
	"bidemoloader/services/metadata"
	"bidemoloader/services/search"
	"bidemoloader/utils"

	"gorm.io/gorm"
)

// MainDatabaseName is the connection record example tables are registered under.
const MainDatabaseName = "main"

// IndexPrefix is prepended to the table name to form the search index name.
const IndexPrefix = "example-"

// ImportSpec describes one packaged gzip JSON file and its target.
type ImportSpec struct {
	FileName    string `validate:"required"`
	TableName   string `validate:"required"`
	Description string
	DTypes      map[string]ColumnType
}

// TableSpec describes rows already in memory and the table they replace.
type TableSpec struct {
	TableName   string `validate:"required"`
	Description string
	MainDttmCol string
	IsFeatured  bool
	Columns     []string `validate:"required,min=1"`
	Rows        []map[string]interface{}
	DTypes      map[string]ColumnType
}

// DatabaseResolver finds or creates connection records by name.
type DatabaseResolver interface {
	GetOrCreateDatabase(ctx context.Context, name, uri string) (*models.Database, error)
}

// Options carries the collaborators of an Importer.
type Options struct {
	Source      datafiles.Source
	Databases   DatabaseResolver
	Refresher   metadata.Refresher
	NewSearch   search.Factory
	Metrics     *metrics.Recorder
	DatabaseURI string // stored on the main connection record
}

// Importer writes example data and registers datasources.
type Importer struct {
	db          *gorm.DB
	writer      *TableWriter
	tableRepo   repository.SqlTableRepository
	searchRepo  repository.SearchDatasourceRepository
	source      datafiles.Source
	databases   DatabaseResolver
	refresher   metadata.Refresher
	newSearch   search.Factory
	metrics     *metrics.Recorder
	databaseURI string
}

// New creates an Importer writing tables and metadata through db.
func New(db *gorm.DB, opts Options) *Importer {
	newSearch := opts.NewSearch
	if newSearch == nil {
		newSearch = search.NewClient
	}
	return &Importer{
		db:          db,
		writer:      NewTableWriter(db),
		tableRepo:   repository.NewSqlTableRepository(db),
		searchRepo:  repository.NewSearchDatasourceRepository(db),
		source:      opts.Source,
		databases:   opts.Databases,
		refresher:   opts.Refresher,
		newSearch:   newSearch,
		metrics:     opts.Metrics,
		databaseURI: opts.DatabaseURI,
	}
}

// relational main time columns; everything else has none.
var tableMainDttm = map[string]string{
	"birth_names":          "ds",
	"wb_health_population": "year",
	"random_time_series":   "ds",
}

var indexMainDttm = map[string]string{
	"birth_names":          "ds",
	"wb_health_population": "year",
}

var notFeatured = map[string]bool{
	"random_time_series": true,
}

// ImportData loads spec.FileName into a search index when cluster is set,
// otherwise into a relational table, and returns the refreshed datasource.
func (im *Importer) ImportData(ctx context.Context, spec ImportSpec, cluster *models.SearchCluster) (models.Datasource, error) {
	if err := utils.ValidateStruct(spec); err != nil {
		return nil, err
	}
	if cluster != nil {
		ds, err := im.importIndex(ctx, spec, cluster)
		if err != nil {
			return nil, err
		}
		return ds, nil
	}

	logger.Infof("Creating table [%s] from [%s]", spec.TableName, im.source.Location(spec.FileName))
	recs, err := im.readRecords(ctx, spec.FileName, utils.ReadGzipJSONRecords)
	if err != nil {
		return nil, err
	}
	columns := normalizeColumns(recs.Columns, recs.Rows)
	if err := coerceDates(spec.TableName, recs.Rows); err != nil {
		return nil, fmt.Errorf("coerce dates of %s: %w", spec.TableName, err)
	}

	table, err := im.ImportTable(ctx, TableSpec{
		TableName:   spec.TableName,
		Description: spec.Description,
		MainDttmCol: tableMainDttm[spec.TableName],
		IsFeatured:  !notFeatured[spec.TableName],
		Columns:     columns,
		Rows:        recs.Rows,
		DTypes:      spec.DTypes,
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ImportTable replaces spec.TableName with spec.Rows and upserts its table
// record under the main database.
func (im *Importer) ImportTable(ctx context.Context, spec TableSpec) (*models.SqlTable, error) {
	if err := utils.ValidateStruct(spec); err != nil {
		return nil, err
	}
	n, err := im.writer.ReplaceTable(ctx, spec.TableName, spec.Columns, spec.DTypes, spec.Rows)
	if err != nil {
		return nil, err
	}
	im.metrics.RowsLoaded(spec.TableName, models.DatasourceTypeTable, int(n))

	logger.Infof("Creating table [%s] reference", spec.TableName)
	database, err := im.databases.GetOrCreateDatabase(ctx, MainDatabaseName, im.databaseURI)
	if err != nil {
		return nil, err
	}

	tx := im.db.WithContext(ctx)
	table, err := im.tableRepo.GetByName(tx, spec.TableName)
	if err != nil {
		return nil, fmt.Errorf("look up table %s: %w", spec.TableName, err)
	}
	if table == nil {
		table = &models.SqlTable{Name: spec.TableName}
	}
	table.IsFeatured = spec.IsFeatured
	table.MainDttmCol = spec.MainDttmCol
	table.DatabaseID = database.ID
	table.Database = database
	table.Description = spec.Description
	if err := im.tableRepo.Save(tx, table); err != nil {
		return nil, fmt.Errorf("save table %s: %w", spec.TableName, err)
	}

	if err := im.refresher.FetchMetadata(ctx, table); err != nil {
		return nil, fmt.Errorf("fetch metadata of %s: %w", spec.TableName, err)
	}
	logger.Infof("Imported table %s", spec.TableName)
	return table, nil
}

func (im *Importer) importIndex(ctx context.Context, spec ImportSpec, cluster *models.SearchCluster) (*models.SearchDatasource, error) {
	index := IndexPrefix + spec.TableName
	logger.Infof("Dumping to search index [%s] from [%s]", index, im.source.Location(spec.FileName))

	rc, err := im.source.Open(ctx, spec.FileName)
	if err != nil {
		return nil, err
	}
	docs, err := utils.ReadGzipJSON(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", spec.FileName, err)
	}

	client, err := im.newSearch(cluster.URLs)
	if err != nil {
		return nil, err
	}
	if err := client.DeleteIndex(ctx, index); err != nil {
		return nil, err
	}
	n, err := client.BulkIndex(ctx, index, docs)
	if err != nil {
		return nil, err
	}
	im.metrics.RowsLoaded(index, models.DatasourceTypeSearch, n)

	logger.Infof("Creating search datasource [%s] reference", index)
	tx := im.db.WithContext(ctx)
	ds, err := im.searchRepo.GetByName(tx, index)
	if err != nil {
		return nil, fmt.Errorf("look up datasource %s: %w", index, err)
	}
	if ds == nil {
		ds = &models.SearchDatasource{Name: index}
	}
	if col, ok := indexMainDttm[spec.TableName]; ok {
		ds.MainDttmCol = col
	}
	ds.ClusterID = cluster.ID
	ds.Cluster = cluster
	ds.IndexName = index
	ds.Description = spec.Description
	ds.IsFeatured = true
	if err := im.searchRepo.Save(tx, ds); err != nil {
		return nil, fmt.Errorf("save datasource %s: %w", index, err)
	}

	if err := im.refresher.RefreshFields(ctx, ds); err != nil {
		return nil, fmt.Errorf("refresh fields of %s: %w", index, err)
	}
	if err := im.refresher.GenerateMetrics(ctx, ds); err != nil {
		return nil, fmt.Errorf("generate metrics of %s: %w", index, err)
	}
	return ds, nil
}

// ReadCSV reads a packaged CSV file.
func (im *Importer) ReadCSV(ctx context.Context, fileName string) (*utils.Records, error) {
	logger.Infof("Reading [%s]", im.source.Location(fileName))
	return im.readRecords(ctx, fileName, utils.ReadCSVRecords)
}

func (im *Importer) readRecords(ctx context.Context, fileName string, decode func(io.Reader) (*utils.Records, error)) (*utils.Records, error) {
	rc, err := im.source.Open(ctx, fileName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := decode(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	return recs, nil
}
