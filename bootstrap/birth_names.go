package bootstrap

import (
	"context"

	"bidemoloader/models"
	"bidemoloader/services"
	"bidemoloader/services/importer"
)

const birthNamesTitleMarkup = `<div style="text-align:center">
    <h1>Birth Names Dashboard</h1>
    <p>
        The source dataset came from
        <a href="https://github.com/hadley/babynames">[here]</a>
    </p>
    <img src="http://monblog.system-linux.net/image/tux/baby-tux_overlord59-tux.png">
</div>
`

func (l *Loader) birthNamesDefaults() map[string]interface{} {
	return map[string]interface{}{
		"compare_lag":    "10",
		"compare_suffix": "o10Y",
		"flt_op_1":       "in",
		"limit":          "25",
		"granularity":    "ds",
		"groupby":        []string{},
		"metric":         "sum__num",
		"metrics":        []string{"sum__num"},
		"row_limit":      l.rowLimit,
		"since":          "100 years ago",
		"until":          "now",
		"where":          "",
		"markup_type":    "markdown",
	}
}

var birthNamesSlices = []sliceDef{
	{"Girls", "table", map[string]interface{}{
		"groupby":   []string{"name"},
		"flt_col_1": "gender",
		"flt_eq_1":  "girl",
		"row_limit": 50,
	}},
	{"Boys", "table", map[string]interface{}{
		"groupby":   []string{"name"},
		"flt_col_1": "gender",
		"flt_eq_1":  "boy",
		"row_limit": 50,
	}},
	{"Participants", "big_number", map[string]interface{}{
		"granularity":    "ds",
		"compare_lag":    "5",
		"compare_suffix": "over 5Y",
	}},
	{"Genders", "pie", map[string]interface{}{
		"groupby": []string{"gender"},
	}},
	{"Genders by State", "dist_bar", map[string]interface{}{
		"flt_eq_1":  "other",
		"metrics":   []string{"sum__sum_girls", "sum__sum_boys"},
		"groupby":   []string{"state"},
		"flt_op_1":  "not in",
		"flt_col_1": "state",
	}},
	{"Trends", "line", map[string]interface{}{
		"groupby":      []string{"name"},
		"granularity":  "ds",
		"rich_tooltip": "y",
		"show_legend":  "y",
	}},
	{"Title", "markup", map[string]interface{}{
		"markup_type": "html",
		"code":        birthNamesTitleMarkup,
	}},
	{"Name Cloud", "word_cloud", map[string]interface{}{
		"size_from": "10",
		"series":    "name",
		"size_to":   "70",
		"rotation":  "square",
		"limit":     "100",
	}},
	{"Pivot Table", "pivot_table", map[string]interface{}{
		"metrics": []string{"sum__num"},
		"groupby": []string{"name"},
		"columns": []string{"state"},
	}},
	// Created for the slice list but kept off the dashboard.
	{"Number of Girls", "big_number_total", map[string]interface{}{
		"granularity": "ds",
		"flt_col_1":   "gender",
		"flt_eq_1":    "girl",
		"subheader":   "total female participants",
	}},
}

var birthNamesLayout = []services.LayoutSlot{
	{SliceName: "Girls", Col: 8, Row: 7, SizeX: 2, SizeY: 4},
	{SliceName: "Boys", Col: 10, Row: 7, SizeX: 2, SizeY: 4},
	{SliceName: "Participants", Col: 1, Row: 1, SizeX: 2, SizeY: 2},
	{SliceName: "Genders", Col: 3, Row: 1, SizeX: 2, SizeY: 2},
	{SliceName: "Genders by State", Col: 5, Row: 4, SizeX: 7, SizeY: 3},
	{SliceName: "Trends", Col: 1, Row: 7, SizeX: 7, SizeY: 4},
	{SliceName: "Title", Col: 9, Row: 1, SizeX: 3, SizeY: 3},
	{SliceName: "Name Cloud", Col: 5, Row: 1, SizeX: 4, SizeY: 3},
	{SliceName: "Pivot Table", Col: 1, Row: 3, SizeX: 4, SizeY: 4},
}

// LoadBirthNames loads the US birth names dataset, its slices and the
// "Births" dashboard.
func (l *Loader) LoadBirthNames(ctx context.Context, cluster *models.SearchCluster) error {
	ds, err := l.importData(ctx, importer.ImportSpec{
		FileName:    "birth_names.json.gz",
		TableName:   "birth_names",
		Description: "",
		DTypes: map[string]importer.ColumnType{
			"ds":        importer.DateTime(),
			"gender":    importer.String(16),
			"state":     importer.String(10),
			"name":      importer.String(255),
			"num":       importer.Integer(),
			"sum_boys":  importer.Integer(),
			"sum_girls": importer.Integer(),
		},
	}, cluster)
	if err != nil {
		return err
	}

	slices, err := l.createSlices(ctx, ds, l.birthNamesDefaults(), birthNamesSlices)
	if err != nil {
		return err
	}

	return l.upsertDashboard(ctx, services.DashboardSpec{
		Title:    "Births",
		Slug:     "births",
		LookupBy: services.LookupByTitle,
		Layout:   birthNamesLayout,
		Members:  slices[:len(slices)-1],
	})
}
