package metadata

import (
	"context"
	"testing"

	"bidemoloader/models"
	"bidemoloader/pkg/testdb"
	"bidemoloader/repository"
	"bidemoloader/services/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	fields map[string]string
}

func (s *stubSearch) DeleteIndex(context.Context, string) error { return nil }
func (s *stubSearch) BulkIndex(_ context.Context, _ string, docs []map[string]interface{}) (int, error) {
	return len(docs), nil
}
func (s *stubSearch) FieldTypes(context.Context, string) (map[string]string, error) {
	return s.fields, nil
}

func metricNames(metrics []models.Metric) []string {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.MetricName)
	}
	return names
}

func TestFetchMetadata(t *testing.T) {
	db := testdb.Open(t)
	require.NoError(t, db.Exec(`CREATE TABLE energy_usage (source VARCHAR(255), target VARCHAR(255), value REAL, ds DATETIME)`).Error)

	dbRec := &models.Database{DatabaseName: "main", SqlalchemyURI: "sqlite://x.db"}
	require.NoError(t, db.Create(dbRec).Error)
	table := &models.SqlTable{Name: "energy_usage", DatabaseID: dbRec.ID}
	require.NoError(t, db.Omit("Database").Create(table).Error)

	columnRepo := repository.NewColumnRepository(db)
	r := NewRefresher(db, columnRepo, nil)
	require.NoError(t, r.FetchMetadata(context.Background(), table))
	// A second refresh updates in place.
	require.NoError(t, r.FetchMetadata(context.Background(), table))

	columns, err := columnRepo.GetColumns(nil, models.DatasourceTypeTable, table.ID)
	require.NoError(t, err)
	require.Len(t, columns, 4)
	byName := map[string]models.Column{}
	for _, c := range columns {
		byName[c.ColumnName] = c
	}
	assert.True(t, byName["ds"].IsDttm)
	assert.True(t, byName["source"].Groupby)
	assert.True(t, byName["value"].Sum)
	assert.False(t, byName["source"].Sum)

	metrics, err := columnRepo.GetMetrics(nil, models.DatasourceTypeTable, table.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"avg__value", "count", "sum__value"}, metricNames(metrics))
}

func TestFetchMetadata_DropsStaleColumns(t *testing.T) {
	db := testdb.Open(t)
	require.NoError(t, db.Exec(`CREATE TABLE t1 (a TEXT, b INTEGER)`).Error)
	table := &models.SqlTable{ID: 7, Name: "t1", DatabaseID: 1}

	columnRepo := repository.NewColumnRepository(db)
	r := NewRefresher(db, columnRepo, nil)
	require.NoError(t, r.FetchMetadata(context.Background(), table))

	require.NoError(t, db.Exec(`DROP TABLE t1`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE t1 (a TEXT)`).Error)
	require.NoError(t, r.FetchMetadata(context.Background(), table))

	columns, err := columnRepo.GetColumns(nil, models.DatasourceTypeTable, 7)
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Equal(t, "a", columns[0].ColumnName)
}

func TestRefreshFieldsAndGenerateMetrics(t *testing.T) {
	db := testdb.Open(t)
	stub := &stubSearch{fields: map[string]string{"source": "keyword", "value": "float", "ds": "date"}}
	var gotURLs []string
	factory := func(urls []string) (search.Client, error) {
		gotURLs = urls
		return stub, nil
	}

	ds := &models.SearchDatasource{
		ID:        3,
		Name:      "example-energy_usage",
		IndexName: "example-energy_usage",
		Cluster:   &models.SearchCluster{ClusterName: "c", URLs: []string{"http://es:9200"}},
	}
	columnRepo := repository.NewColumnRepository(db)
	r := NewRefresher(db, columnRepo, factory)
	require.NoError(t, r.RefreshFields(context.Background(), ds))
	require.NoError(t, r.GenerateMetrics(context.Background(), ds))
	assert.Equal(t, []string{"http://es:9200"}, gotURLs)

	columns, err := columnRepo.GetColumns(nil, models.DatasourceTypeSearch, 3)
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	metrics, err := columnRepo.GetMetrics(nil, models.DatasourceTypeSearch, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"avg__value", "count", "sum__value"}, metricNames(metrics))
}

func TestRefreshFields_NoCluster(t *testing.T) {
	r := NewRefresher(testdb.Open(t), nil, nil)
	assert.Error(t, r.RefreshFields(context.Background(), &models.SearchDatasource{Name: "x"}))
}

func TestClassifySQLType(t *testing.T) {
	cases := map[string]kind{
		"VARCHAR(255)": kindString,
		"text":         kindString,
		"nvarchar":     kindString,
		"REAL":         kindNumeric,
		"double":       kindNumeric,
		"BIGINT":       kindNumeric,
		"float8":       kindNumeric,
		"DATETIME":     kindTemporal,
		"timestamptz":  kindTemporal,
		"date":         kindTemporal,
		"BLOB":         kindOther,
	}
	for typ, want := range cases {
		assert.Equal(t, want, classifySQLType(typ), typ)
	}
}
