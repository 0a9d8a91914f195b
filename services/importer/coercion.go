package importer

import (
	"fmt"

	"bidemoloader/utils"
)

type dateCoercion struct {
	column  string
	convert func(interface{}) (interface{}, error)
}

// dateCoercions lists the example tables whose time column is not stored as
// a date in the source file.
var dateCoercions = map[string]dateCoercion{
	"birth_names": {column: "ds", convert: func(v interface{}) (interface{}, error) {
		return utils.EpochToTime(v, utils.Milliseconds)
	}},
	"wb_health_population": {column: "year", convert: utils.ParseTime},
	"random_time_series": {column: "ds", convert: func(v interface{}) (interface{}, error) {
		return utils.EpochToTime(v, utils.Seconds)
	}},
}

// coerceDates converts the time column of table in place. Tables without a
// rule are left untouched.
func coerceDates(table string, rows []map[string]interface{}) error {
	rule, ok := dateCoercions[table]
	if !ok {
		return nil
	}
	for i, row := range rows {
		v, ok := row[rule.column]
		if !ok {
			continue
		}
		t, err := rule.convert(v)
		if err != nil {
			return fmt.Errorf("row %d column %s: %w", i, rule.column, err)
		}
		row[rule.column] = t
	}
	return nil
}

// normalizeColumns rewrites dotted keys so they are usable as column names.
func normalizeColumns(columns []string, rows []map[string]interface{}) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = utils.NormalizeColumnName(c)
		if out[i] == c {
			continue
		}
		for _, row := range rows {
			if v, ok := row[c]; ok {
				delete(row, c)
				row[out[i]] = v
			}
		}
	}
	return out
}
