package bootstrap

import (
	"context"

	"bidemoloader/models"
	"bidemoloader/services/importer"
)

var energySlices = []sliceDef{
	{
		name:    "Energy Sankey",
		vizType: "sankey",
		params: map[string]interface{}{
			"collapsed_fieldsets": "",
			"flt_col_0":           "source",
			"flt_eq_0":            "",
			"flt_op_0":            "in",
			"groupby":             []string{"source", "target"},
			"having":              "",
			"metric":              "sum__value",
			"row_limit":           "5000",
			"slice_id":            "",
			"where":               "",
		},
	},
	{
		name:    "Energy Force Layout",
		vizType: "directed_force",
		params: map[string]interface{}{
			"charge":              "-500",
			"collapsed_fieldsets": "",
			"flt_col_0":           "source",
			"flt_eq_0":            "",
			"flt_op_0":            "in",
			"groupby":             []string{"source", "target"},
			"having":              "",
			"link_length":         "200",
			"metric":              "sum__value",
			"row_limit":           "5000",
			"where":               "",
		},
	},
	{
		name:    "Heatmap",
		vizType: "heatmap",
		params: map[string]interface{}{
			"all_columns_x":          "source",
			"all_columns_y":          "target",
			"canvas_image_rendering": "pixelated",
			"collapsed_fieldsets":    "",
			"flt_col_0":              "source",
			"flt_eq_0":               "",
			"flt_op_0":               "in",
			"having":                 "",
			"linear_color_scheme":    "blue_white_yellow",
			"metric":                 "sum__value",
			"normalize_across":       "heatmap",
			"where":                  "",
			"xscale_interval":        "1",
			"yscale_interval":        "1",
		},
	},
}

// LoadEnergy loads the energy flow dataset used by the sankey and graph slices.
func (l *Loader) LoadEnergy(ctx context.Context, cluster *models.SearchCluster) error {
	ds, err := l.importData(ctx, importer.ImportSpec{
		FileName:    "energy.json.gz",
		TableName:   "energy_usage",
		Description: "Energy consumption",
		DTypes: map[string]importer.ColumnType{
			"source": importer.String(255),
			"target": importer.String(255),
			"value":  importer.Float(),
		},
	}, cluster)
	if err != nil {
		return err
	}

	_, err = l.createSlices(ctx, ds, map[string]interface{}{}, energySlices)
	return err
}
