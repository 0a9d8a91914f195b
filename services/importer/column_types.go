package importer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind is the storage class of an example column.
type Kind int

const (
	KindText Kind = iota
	KindString
	KindFloat
	KindInteger
	KindBoolean
	KindDateTime
	KindDate
)

// ColumnType is a portable column type hint, rendered per SQL dialect.
type ColumnType struct {
	Kind   Kind
	Length int // only for KindString
}

func String(length int) ColumnType { return ColumnType{Kind: KindString, Length: length} }
func Text() ColumnType             { return ColumnType{Kind: KindText} }
func Float() ColumnType            { return ColumnType{Kind: KindFloat} }
func Integer() ColumnType          { return ColumnType{Kind: KindInteger} }
func boolean() ColumnType          { return ColumnType{Kind: KindBoolean} }
func DateTime() ColumnType         { return ColumnType{Kind: KindDateTime} }
func Date() ColumnType             { return ColumnType{Kind: KindDate} }

// SQLType renders the type for a gorm dialector name.
func (c ColumnType) SQLType(dialect string) string {
	switch dialect {
	case "sqlserver":
		switch c.Kind {
		case KindString:
			return fmt.Sprintf("NVARCHAR(%d)", c.Length)
		case KindFloat:
			return "FLOAT"
		case KindInteger:
			return "BIGINT"
		case KindBoolean:
			return "BIT"
		case KindDateTime:
			return "DATETIME2"
		case KindDate:
			return "DATE"
		}
		return "NVARCHAR(MAX)"
	case "postgres":
		switch c.Kind {
		case KindString:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case KindFloat:
			return "DOUBLE PRECISION"
		case KindInteger:
			return "BIGINT"
		case KindBoolean:
			return "BOOLEAN"
		case KindDateTime:
			return "TIMESTAMP"
		case KindDate:
			return "DATE"
		}
		return "TEXT"
	case "mysql":
		switch c.Kind {
		case KindString:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case KindFloat:
			return "DOUBLE"
		case KindInteger:
			return "BIGINT"
		case KindBoolean:
			return "BOOLEAN"
		case KindDateTime:
			return "DATETIME"
		case KindDate:
			return "DATE"
		}
		return "LONGTEXT"
	default: // sqlite
		switch c.Kind {
		case KindString:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		case KindFloat:
			return "REAL"
		case KindInteger:
			return "INTEGER"
		case KindBoolean:
			return "BOOLEAN"
		case KindDateTime:
			return "DATETIME"
		case KindDate:
			return "DATE"
		}
		return "TEXT"
	}
}

// InferColumnType picks a type for a column that has no hint from the values
// it holds. Integers widen to floats; anything mixed becomes text.
func InferColumnType(rows []map[string]interface{}, column string) ColumnType {
	var (
		kind Kind
		seen bool
	)
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		k := valueKind(v)
		switch {
		case !seen:
			kind, seen = k, true
		case kind == k:
		case (kind == KindInteger && k == KindFloat) || (kind == KindFloat && k == KindInteger):
			kind = KindFloat
		default:
			return Text()
		}
	}
	if !seen {
		return Text()
	}
	return inferredTypes[kind]()
}

// inferredTypes covers every Kind valueKind can report.
var inferredTypes = map[Kind]func() ColumnType{
	KindText:     Text,
	KindFloat:    Float,
	KindInteger:  Integer,
	KindBoolean:  boolean,
	KindDateTime: DateTime,
}

func valueKind(v interface{}) Kind {
	switch t := v.(type) {
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return KindFloat
		}
		return KindInteger
	case float32, float64:
		return KindFloat
	case int, int32, int64:
		return KindInteger
	case bool:
		return KindBoolean
	case time.Time:
		return KindDateTime
	}
	return KindText
}
