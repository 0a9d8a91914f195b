package bootstrap

import (
	"context"

	"bidemoloader/models"
	"bidemoloader/services/importer"
)

// LoadRandomTimeSeriesData loads a daily random series and its calendar heatmap.
func (l *Loader) LoadRandomTimeSeriesData(ctx context.Context, cluster *models.SearchCluster) error {
	ds, err := l.importData(ctx, importer.ImportSpec{
		FileName:    "random_time_series.json.gz",
		TableName:   "random_time_series",
		Description: "Random time series",
		DTypes: map[string]importer.ColumnType{
			"ds": importer.DateTime(),
		},
	}, cluster)
	if err != nil {
		return err
	}

	_, err = l.createSlices(ctx, ds, map[string]interface{}{}, []sliceDef{{
		name:    "Calendar Heatmap",
		vizType: "cal_heatmap",
		params: map[string]interface{}{
			"granularity":           "day",
			"row_limit":             l.rowLimit,
			"since":                 "1 year ago",
			"until":                 "now",
			"where":                 "",
			"domain_granularity":    "month",
			"subdomain_granularity": "day",
		},
	}})
	return err
}
