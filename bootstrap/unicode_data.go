package bootstrap

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"bidemoloader/models"
	"bidemoloader/services"
	"bidemoloader/services/importer"
)

// LoadUnicodeTestData loads the unicode phrase CSV with a generated date and
// value column. It always writes to the relational database.
func (l *Loader) LoadUnicodeTestData(ctx context.Context, _ *models.SearchCluster) error {
	recs, err := l.importer.ReadCSV(ctx, "unicode_utf8_unixnl_test.csv")
	if err != nil {
		return err
	}

	now := l.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, row := range recs.Rows {
		row["date"] = today
		row["value"] = float64(rand.IntN(100) + 1)
	}
	columns := recs.Columns
	for _, extra := range []string{"date", "value"} {
		if !slices.Contains(columns, extra) {
			columns = append(columns, extra)
		}
	}

	table, err := l.importer.ImportTable(ctx, importer.TableSpec{
		TableName:   "unicode_test",
		MainDttmCol: "date",
		IsFeatured:  false,
		Columns:     columns,
		Rows:        recs.Rows,
		DTypes: map[string]importer.ColumnType{
			"phrase":       importer.String(500),
			"short_phrase": importer.String(10),
			"with_missing": importer.String(100),
			"date":         importer.Date(),
			"value":        importer.Float(),
		},
	})
	if err != nil {
		return err
	}
	l.summary.Datasources = append(l.summary.Datasources, table.Name)

	created, err := l.createSlices(ctx, table, map[string]interface{}{}, []sliceDef{{
		name:    "Unicode Cloud",
		vizType: "word_cloud",
		params: map[string]interface{}{
			"flt_op_1":    "in",
			"granularity": "date",
			"groupby":     []string{},
			"metric":      "sum__value",
			"row_limit":   l.rowLimit,
			"since":       "100 years ago",
			"until":       "now",
			"where":       "",
			"viz_type":    "word_cloud",
			"size_from":   "10",
			"series":      "short_phrase",
			"size_to":     "70",
			"rotation":    "square",
			"limit":       "100",
		},
	}})
	if err != nil {
		return err
	}

	return l.upsertDashboard(ctx, services.DashboardSpec{
		Title:    "Unicode Test",
		Slug:     "unicode-test",
		LookupBy: services.LookupByTitle,
		Layout:   []services.LayoutSlot{{SliceName: "Unicode Cloud", Col: 1, Row: 1, SizeX: 4, SizeY: 4}},
		Members:  created,
	})
}
