package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"bidemoloader/models"
	"bidemoloader/pkg/metrics"
	"bidemoloader/pkg/testdb"
	"bidemoloader/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	refs   ReferenceService
	slices SliceService
	dashes DashboardService
	css    CssTemplateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	base := repository.NewBaseRepository(db)
	rec := metrics.NewRecorder()
	return &fixture{
		db:     db,
		refs:   NewReferenceService(base, repository.NewDatabaseRepository(db), repository.NewSearchClusterRepository(db)),
		slices: NewSliceService(base, repository.NewSliceRepository(db), rec),
		dashes: NewDashboardService(base, repository.NewDashboardRepository(db), rec),
		css:    NewCssTemplateService(base, repository.NewCssTemplateRepository(db)),
	}
}

func (f *fixture) table(t *testing.T, name string) *models.SqlTable {
	t.Helper()
	dbRec, err := f.refs.GetOrCreateDatabase(context.Background(), "main", "sqlite://examples.db")
	require.NoError(t, err)
	tbl := &models.SqlTable{Name: name, DatabaseID: dbRec.ID, IsFeatured: true}
	require.NoError(t, repository.NewSqlTableRepository(f.db).Save(nil, tbl))
	return tbl
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestGetOrCreateDatabase_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.refs.GetOrCreateDatabase(ctx, "main", "sqlite://one.db")
	require.NoError(t, err)
	second, err := f.refs.GetOrCreateDatabase(ctx, "main", "sqlite://two.db")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, f.count(t, &models.Database{}))

	var stored models.Database
	require.NoError(t, f.db.First(&stored, first.ID).Error)
	assert.Equal(t, "sqlite://two.db", stored.SqlalchemyURI)

	_, err = f.refs.GetOrCreateDatabase(ctx, "main", "")
	assert.Error(t, err)
}

func TestGetOrCreateSearchCluster_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.refs.GetOrCreateSearchCluster(ctx, SearchClusterName, []string{"http://a:9200"})
	require.NoError(t, err)
	cluster, err := f.refs.GetOrCreateSearchCluster(ctx, SearchClusterName, []string{"http://b:9200", "http://c:9200"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &models.SearchCluster{}))
	var stored models.SearchCluster
	require.NoError(t, f.db.First(&stored, cluster.ID).Error)
	assert.Equal(t, []string{"http://b:9200", "http://c:9200"}, []string(stored.URLs))
}

func TestBuildParams_OverridesWin(t *testing.T) {
	ds := &models.SqlTable{ID: 4, Name: "birth_names"}
	defaults := map[string]interface{}{"metric": "sum__num", "row_limit": 50000, "since": "100 years ago"}
	params := map[string]interface{}{"row_limit": 50, "groupby": []string{"name"}, "viz_type": "ignored"}

	p := BuildParams("Girls", "table", ds, defaults, params)

	var keys []string
	for k := range p {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"metric", "row_limit", "since", "groupby", "viz_type",
		"slice_name", "datasource_type", "datasource_id", "datasource_name",
	}, keys)
	assert.Equal(t, 50, p["row_limit"])
	assert.Equal(t, "ignored", p["viz_type"])
	assert.Equal(t, "table", p["datasource_type"])
	assert.Equal(t, uint(4), p["datasource_id"])
	assert.Equal(t, "birth_names", p["datasource_name"])
	// defaults are not mutated
	assert.Equal(t, 50000, defaults["row_limit"])
}

func TestMarshalParams_Format(t *testing.T) {
	out, err := MarshalParams(map[string]interface{}{
		"where": "",
		"code":  `<div style="text-align:center">&</div>`,
		"b":     []string{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n"+
		"    \"b\": [\n"+
		"        \"x\"\n"+
		"    ],\n"+
		"    \"code\": \"<div style=\\\"text-align:center\\\">&</div>\",\n"+
		"    \"where\": \"\"\n"+
		"}", out)
}

func TestGetOrCreateSlice_ReplacesByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tbl := f.table(t, "energy_usage")

	spec := SliceSpec{
		Name:       "Heatmap",
		VizType:    "heatmap",
		Datasource: tbl,
		Params:     map[string]interface{}{"metric": "sum__value"},
	}
	first, err := f.slices.GetOrCreateSlice(ctx, spec)
	require.NoError(t, err)

	spec.Params = map[string]interface{}{"metric": "sum__value", "where": "x"}
	second, err := f.slices.GetOrCreateSlice(ctx, spec)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.EqualValues(t, 1, f.count(t, &models.Slice{}))
	require.NotNil(t, second.TableID)
	assert.Equal(t, tbl.ID, *second.TableID)
	assert.Nil(t, second.SearchDatasourceID)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(second.Params), &params))
	assert.Equal(t, "sum__value", params["metric"])
	assert.Equal(t, "x", params["where"])
	assert.Equal(t, "Heatmap", params["slice_name"])
}

func TestGetOrCreateSlice_SearchDatasource(t *testing.T) {
	f := newFixture(t)
	ds := &models.SearchDatasource{ID: 9, Name: "example-energy_usage", ClusterID: 1, IndexName: "example-energy_usage"}

	slc, err := f.slices.GetOrCreateSlice(context.Background(), SliceSpec{Name: "Heatmap", VizType: "heatmap", Datasource: ds})
	require.NoError(t, err)
	assert.Equal(t, "Heatmap (ES)", slc.SliceName)
	assert.Equal(t, models.DatasourceTypeSearch, slc.DatasourceType)
	require.NotNil(t, slc.SearchDatasourceID)
	assert.EqualValues(t, 9, *slc.SearchDatasourceID)
	assert.True(t, strings.Contains(slc.Params, `"slice_name": "Heatmap (ES)"`))
}

func TestGetOrCreateSlice_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.slices.GetOrCreateSlice(context.Background(), SliceSpec{Name: "x", VizType: "table"})
	assert.Error(t, err)
	_, err = f.slices.GetOrCreateSlice(context.Background(), SliceSpec{VizType: "table", Datasource: &models.SqlTable{ID: 1}})
	assert.Error(t, err)
}

func createSlices(t *testing.T, f *fixture, tbl *models.SqlTable, names ...string) []*models.Slice {
	t.Helper()
	out := make([]*models.Slice, 0, len(names))
	for _, n := range names {
		slc, err := f.slices.GetOrCreateSlice(context.Background(), SliceSpec{Name: n, VizType: "table", Datasource: tbl})
		require.NoError(t, err)
		out = append(out, slc)
	}
	return out
}

func TestDashboardUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tbl := f.table(t, "birth_names")
	slices := createSlices(t, f, tbl, "Girls", "Boys", "Number of Girls")

	spec := DashboardSpec{
		Title:    "Births",
		Slug:     "births",
		LookupBy: LookupByTitle,
		Layout: []LayoutSlot{
			{SliceName: "Girls", Col: 8, Row: 7, SizeX: 2, SizeY: 4},
			{SliceName: "Boys", Col: 10, Row: 7, SizeX: 2, SizeY: 4},
		},
		Members: slices[:2],
	}
	dash, err := f.dashes.Upsert(ctx, spec)
	require.NoError(t, err)

	// Second run with recreated slices keeps one dashboard and follows the new IDs.
	slices = createSlices(t, f, tbl, "Girls", "Boys", "Number of Girls")
	spec.Members = slices[:2]
	again, err := f.dashes.Upsert(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, dash.ID, again.ID)
	assert.EqualValues(t, 1, f.count(t, &models.Dashboard{}))

	stored, err := repository.NewDashboardRepository(f.db).GetWithSlices(nil, dash.ID)
	require.NoError(t, err)
	assert.Equal(t, "births", stored.Slug)
	require.Len(t, stored.Slices, 2)
	var memberNames []string
	for _, s := range stored.Slices {
		memberNames = append(memberNames, s.SliceName)
	}
	assert.ElementsMatch(t, []string{"Girls", "Boys"}, memberNames)

	var positions []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stored.PositionJSON), &positions))
	require.Len(t, positions, 2)
	assert.Equal(t, strconv.FormatUint(uint64(slices[0].ID), 10), positions[0]["slice_id"])
	assert.Equal(t, strconv.FormatUint(uint64(slices[1].ID), 10), positions[1]["slice_id"])
	assert.EqualValues(t, 8, positions[0]["col"])
	assert.True(t, strings.HasPrefix(stored.PositionJSON, "[\n    {\n        \"size_y\": 4,"))
}

func TestDashboardUpsert_SlugLookupUpdatesTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slices := createSlices(t, f, f.table(t, "wb_health_population"), "Region Filter")
	layout := []LayoutSlot{{SliceName: "Region Filter", Col: 10, Row: 1, SizeX: 3, SizeY: 2}}

	first, err := f.dashes.Upsert(ctx, DashboardSpec{Title: "Old", Slug: "world_health", Layout: layout, Members: slices})
	require.NoError(t, err)
	second, err := f.dashes.Upsert(ctx, DashboardSpec{Title: "World's Bank Data", Slug: "world_health", Layout: layout, Members: slices})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "World's Bank Data", second.DashboardTitle)
}

func TestBuildPositionJSON_Errors(t *testing.T) {
	a := &models.Slice{ID: 1, SliceName: "A"}
	b := &models.Slice{ID: 2, SliceName: "B (ES)"}
	slot := func(name string) LayoutSlot { return LayoutSlot{SliceName: name, Col: 1, Row: 1, SizeX: 1, SizeY: 1} }

	_, err := BuildPositionJSON([]LayoutSlot{slot("A"), slot("B")}, []*models.Slice{a, b})
	assert.NoError(t, err, "search suffix is ignored when matching")

	_, err = BuildPositionJSON([]LayoutSlot{slot("A"), slot("C")}, []*models.Slice{a, b})
	assert.ErrorContains(t, err, `"C"`)

	_, err = BuildPositionJSON([]LayoutSlot{slot("A")}, []*models.Slice{a, b})
	assert.ErrorContains(t, err, "no layout slot")

	_, err = BuildPositionJSON([]LayoutSlot{slot("A"), slot("A"), slot("B")}, []*models.Slice{a, b})
	assert.ErrorContains(t, err, "occupies slots")
}

func TestDashboardUpsert_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.dashes.Upsert(context.Background(), DashboardSpec{Title: "x", Slug: "Not A Slug",
		Layout: []LayoutSlot{{SliceName: "a", Col: 1, Row: 1, SizeX: 1, SizeY: 1}}, Members: []*models.Slice{{ID: 1, SliceName: "a"}}})
	assert.Error(t, err)

	_, err = f.dashes.Upsert(context.Background(), DashboardSpec{Title: "x", Slug: "x",
		Layout: []LayoutSlot{{SliceName: "a", Col: 1, Row: 1, SizeX: 1, SizeY: 1}}, Members: []*models.Slice{{SliceName: "a"}}})
	assert.ErrorContains(t, err, "persisted")
}

func TestDeleteSliceClearsMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tbl := f.table(t, "unicode_test")
	slices := createSlices(t, f, tbl, "Unicode Cloud")
	_, err := f.dashes.Upsert(ctx, DashboardSpec{Title: "Unicode Test", Slug: "unicode-test", LookupBy: LookupByTitle,
		Layout: []LayoutSlot{{SliceName: "Unicode Cloud", Col: 1, Row: 1, SizeX: 4, SizeY: 4}}, Members: slices})
	require.NoError(t, err)

	createSlices(t, f, tbl, "Unicode Cloud")

	var links int64
	require.NoError(t, f.db.Table("dashboard_slices").Count(&links).Error)
	assert.Zero(t, links)
}

func TestCssTemplateUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.css.Upsert(ctx, "Flat", ".a {}")
	require.NoError(t, err)
	tmpl, err := f.css.Upsert(ctx, "Flat", ".b {}")
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &models.CssTemplate{}))
	assert.Equal(t, ".b {}", tmpl.Css)
	_, err = f.css.Upsert(ctx, "", ".c {}")
	assert.Error(t, err)
}
