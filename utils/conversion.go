package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// EpochUnit is the resolution of a numeric timestamp.
type EpochUnit int

const (
	Seconds EpochUnit = iota
	Milliseconds
)

// ToFloat converts JSON-decoded numeric values to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// EpochToTime converts a numeric epoch value to a UTC time. nil stays nil.
func EpochToTime(v interface{}, unit EpochUnit) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := ToFloat(v)
	if !ok {
		return nil, fmt.Errorf("cannot convert %v (%T) to an epoch timestamp", v, v)
	}
	switch unit {
	case Milliseconds:
		return time.UnixMilli(int64(math.Round(f))).UTC(), nil
	default:
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseTime converts a loosely formatted date value to a UTC time. Strings are
// tried against common layouts; bare numbers below 10000 are calendar years,
// larger numbers are epoch milliseconds. nil stays nil.
func ParseTime(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return ParseTime(json.Number(s))
		}
		return nil, fmt.Errorf("cannot parse %q as a date", s)
	}

	f, ok := ToFloat(v)
	if !ok {
		return nil, fmt.Errorf("cannot convert %v (%T) to a date", v, v)
	}
	if f >= 0 && f < 10000 {
		return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return EpochToTime(f, Milliseconds)
}

// NormalizeColumnName makes a JSON key usable as a column name.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
