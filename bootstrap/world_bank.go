package bootstrap

import (
	"context"
	"fmt"
	"io"

	"bidemoloader/models"
	"bidemoloader/services"
	"bidemoloader/services/importer"
)

func (l *Loader) worldBankDefaults() map[string]interface{} {
	return map[string]interface{}{
		"compare_lag":       "10",
		"compare_suffix":    "o10Y",
		"limit":             "25",
		"granularity":       "year",
		"groupby":           []string{},
		"metric":            "sum__SP_POP_TOTL",
		"metrics":           []string{"sum__SP_POP_TOTL"},
		"row_limit":         l.rowLimit,
		"since":             "2014-01-01",
		"until":             "2014-01-01",
		"where":             "",
		"markup_type":       "markdown",
		"country_fieldtype": "cca3",
		"secondary_metric":  "sum__SP_POP_TOTL",
		"entity":            "country_code",
		"show_bubbles":      "y",
	}
}

var worldBankSlices = []sliceDef{
	{"Region Filter", "filter_box", map[string]interface{}{
		"groupby": []string{"region", "country_name"},
	}},
	{"World's Population", "big_number", map[string]interface{}{
		"since":          "2000",
		"compare_lag":    "10",
		"metric":         "sum__SP_POP_TOTL",
		"compare_suffix": "over 10Y",
	}},
	{"Most Populated Countries", "table", map[string]interface{}{
		"metrics": []string{"sum__SP_POP_TOTL"},
		"groupby": []string{"country_name"},
	}},
	{"Growth Rate", "line", map[string]interface{}{
		"since":              "1960-01-01",
		"metrics":            []string{"sum__SP_POP_TOTL"},
		"num_period_compare": "10",
		"groupby":            []string{"country_name"},
	}},
	{"% Rural", "world_map", map[string]interface{}{
		"metric":             "sum__SP_RUR_TOTL_ZS",
		"num_period_compare": "10",
	}},
	{"Life Expexctancy VS Rural %", "bubble", map[string]interface{}{
		"since":              "2011-01-01",
		"until":              "2011-01-01",
		"series":             "region",
		"limit":              "0",
		"entity":             "country_name",
		"x":                  "sum__SP_RUR_TOTL_ZS",
		"y":                  "sum__SP_DYN_LE00_IN",
		"size":               "sum__SP_POP_TOTL",
		"max_bubble_size":    "50",
		"flt_col_1":          "country_code",
		"flt_op_1":           "not in",
		"flt_eq_1":           "TCA,MNP,DMA,MHL,MCO,SXM,CYM,TUV,IMY,KNA,ASM,ADO,AMA,PLW",
		"num_period_compare": "10",
	}},
	{"Rural Breakdown", "sunburst", map[string]interface{}{
		"groupby":          []string{"region", "country_name"},
		"secondary_metric": "sum__SP_RUR_TOTL",
		"since":            "2011-01-01",
		"until":            "2011-01-01",
	}},
	{"World's Pop Growth", "area", map[string]interface{}{
		"since":   "1960-01-01",
		"until":   "now",
		"groupby": []string{"region"},
	}},
	{"Box plot", "box_plot", map[string]interface{}{
		"since":           "1960-01-01",
		"until":           "now",
		"whisker_options": "Tukey",
		"groupby":         []string{"region"},
	}},
	{"Treemap", "treemap", map[string]interface{}{
		"since":   "1960-01-01",
		"until":   "now",
		"metrics": []string{"sum__SP_POP_TOTL"},
		"groupby": []string{"region", "country_code"},
	}},
	// Created for the slice list but kept off the dashboard.
	{"Parallel Coordinates", "para", map[string]interface{}{
		"since":            "2011-01-01",
		"until":            "2011-01-01",
		"limit":            100,
		"metrics":          []string{"sum__SP_POP_TOTL", "sum__SP_RUR_TOTL_ZS", "sum__SH_DYN_AIDS"},
		"secondary_metric": "sum__SP_POP_TOTL",
		"series":           []string{"country_name"},
	}},
}

var worldBankLayout = []services.LayoutSlot{
	{SliceName: "Region Filter", Col: 10, Row: 1, SizeX: 3, SizeY: 2},
	{SliceName: "World's Population", Col: 10, Row: 3, SizeX: 3, SizeY: 3},
	{SliceName: "Most Populated Countries", Col: 1, Row: 1, SizeX: 3, SizeY: 8},
	{SliceName: "Growth Rate", Col: 4, Row: 6, SizeX: 6, SizeY: 3},
	{SliceName: "% Rural", Col: 4, Row: 1, SizeX: 6, SizeY: 5},
	{SliceName: "Life Expexctancy VS Rural %", Col: 7, Row: 9, SizeX: 6, SizeY: 4},
	{SliceName: "Rural Breakdown", Col: 10, Row: 6, SizeX: 3, SizeY: 3},
	{SliceName: "World's Pop Growth", Col: 1, Row: 9, SizeX: 6, SizeY: 4},
	{SliceName: "Box plot", Col: 8, Row: 13, SizeX: 5, SizeY: 4},
	{SliceName: "Treemap", Col: 1, Row: 13, SizeX: 7, SizeY: 4},
}

// LoadWorldBankHealthNPop loads the world bank health and population
// dataset, its slices and the "World's Bank Data" dashboard.
func (l *Loader) LoadWorldBankHealthNPop(ctx context.Context, cluster *models.SearchCluster) error {
	description, err := l.readText(ctx, "countries.md")
	if err != nil {
		return err
	}

	ds, err := l.importData(ctx, importer.ImportSpec{
		FileName:    "countries.json.gz",
		TableName:   "wb_health_population",
		Description: description,
		DTypes: map[string]importer.ColumnType{
			"year":         importer.DateTime(),
			"country_code": importer.String(3),
			"country_name": importer.String(255),
			"region":       importer.String(255),
		},
	}, cluster)
	if err != nil {
		return err
	}

	slices, err := l.createSlices(ctx, ds, l.worldBankDefaults(), worldBankSlices)
	if err != nil {
		return err
	}

	return l.upsertDashboard(ctx, services.DashboardSpec{
		Title:    "World's Bank Data",
		Slug:     "world_health",
		LookupBy: services.LookupBySlug,
		Layout:   worldBankLayout,
		Members:  slices[:len(slices)-1],
	})
}

func (l *Loader) readText(ctx context.Context, name string) (string, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}
