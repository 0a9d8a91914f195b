package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bidemoloader/pkg/logger"

	"gorm.io/gorm"
)

// BatchSize is the number of rows per INSERT statement.
const BatchSize = 500

// maxBindParams bounds the placeholders of one statement per dialect.
var maxBindParams = map[string]int{
	"sqlserver": 2000,
}

const defaultMaxBindParams = 30000

// TableWriter replaces relational tables with example data.
type TableWriter struct {
	db *gorm.DB
}

// NewTableWriter creates a TableWriter on db.
func NewTableWriter(db *gorm.DB) *TableWriter {
	return &TableWriter{db: db}
}

// ReplaceTable drops table if it exists, creates it with columns in order and
// inserts rows in batches. Columns without a type hint get an inferred type.
// It returns the number of rows written.
func (w *TableWriter) ReplaceTable(ctx context.Context, table string, columns []string, hints map[string]ColumnType, rows []map[string]interface{}) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("table %s: no columns", table)
	}
	db := w.db.WithContext(ctx)
	dialect := db.Dialector.Name()

	types := make(map[string]ColumnType, len(columns))
	for _, c := range columns {
		if t, ok := hints[c]; ok {
			types[c] = t
		} else {
			types[c] = InferColumnType(rows, c)
		}
	}

	if err := db.Exec("DROP TABLE IF EXISTS " + w.quote(table)).Error; err != nil {
		return 0, fmt.Errorf("drop table %s: %w", table, err)
	}
	if err := db.Exec(w.createTableSQL(table, columns, types, dialect)).Error; err != nil {
		return 0, fmt.Errorf("create table %s: %w", table, err)
	}

	size := batchSize(dialect, len(columns))
	var written int64
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]map[string]interface{}, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, storableRow(row, columns, types))
		}
		res := db.Table(table).Create(batch)
		if res.Error != nil {
			return written, fmt.Errorf("insert into %s (rows %d-%d): %w", table, start, end-1, res.Error)
		}
		written += int64(len(batch))
	}
	logger.Infof("Wrote %d rows to %s in batches of %d", written, table, size)
	return written, nil
}

func (w *TableWriter) quote(name string) string {
	var sb strings.Builder
	w.db.Dialector.QuoteTo(&sb, name)
	return sb.String()
}

func (w *TableWriter) createTableSQL(table string, columns []string, types map[string]ColumnType, dialect string) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	w.db.Dialector.QuoteTo(&sb, table)
	sb.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		w.db.Dialector.QuoteTo(&sb, c)
		sb.WriteByte(' ')
		sb.WriteString(types[c].SQLType(dialect))
	}
	sb.WriteString(")")
	return sb.String()
}

func batchSize(dialect string, columns int) int {
	limit, ok := maxBindParams[dialect]
	if !ok {
		limit = defaultMaxBindParams
	}
	size := BatchSize
	if columns > 0 && limit/columns < size {
		size = limit / columns
	}
	if size < 1 {
		size = 1
	}
	return size
}

// storableRow fills missing columns with NULL and converts decoded JSON
// values to driver values matching the column type.
func storableRow(row map[string]interface{}, columns []string, types map[string]ColumnType) map[string]interface{} {
	out := make(map[string]interface{}, len(columns))
	for _, c := range columns {
		out[c] = storableValue(row[c], types[c])
	}
	return out
}

func storableValue(v interface{}, t ColumnType) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		switch t.Kind {
		case KindInteger:
			if i, err := val.Int64(); err == nil {
				return i
			}
			if f, err := val.Float64(); err == nil {
				return f
			}
		case KindFloat:
			if f, err := val.Float64(); err == nil {
				return f
			}
		}
		return val.String()
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return v
}
