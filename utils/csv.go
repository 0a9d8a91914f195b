package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReadCSVRecords decodes a UTF-8 CSV file with a header row. A leading byte
// order mark is dropped, header names are NFC-normalized and empty cells
// become nil.
func ReadCSVRecords(r io.Reader) (*Records, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV file has no header row")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	out := &Records{Columns: make([]string, len(header))}
	for i, h := range header {
		out.Columns[i] = norm.NFC.String(strings.TrimSpace(h))
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", len(out.Rows)+1, err)
		}
		row := make(map[string]interface{}, len(out.Columns))
		for i, col := range out.Columns {
			if rec[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = rec[i]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
