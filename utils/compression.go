package utils

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// Records is a decoded JSON array of objects. Columns keeps the order in which
// keys were first seen so tables are created in file order.
type Records struct {
	Columns []string
	Rows    []map[string]interface{}
}

// ReadGzipJSONRecords decompresses r and decodes a top-level JSON array of objects.
func ReadGzipJSONRecords(r io.Reader) (*Records, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	return DecodeJSONRecords(gz)
}

// DecodeJSONRecords decodes a JSON array of objects. Numbers are kept as
// json.Number so integer and float columns can be told apart later.
func DecodeJSONRecords(r io.Reader) (*Records, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	out := &Records{}
	seen := make(map[string]bool)
	for dec.More() {
		row, err := decodeObject(dec, func(key string) {
			if !seen[key] {
				seen[key] = true
				out.Columns = append(out.Columns, key)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out.Rows), err)
		}
		out.Rows = append(out.Rows, row)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadGzipJSON decompresses r and decodes the JSON array into plain maps,
// as used for search-cluster documents.
func ReadGzipJSON(r io.Reader) ([]map[string]interface{}, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	var docs []map[string]interface{}
	if err := json.NewDecoder(gz).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}
	return docs, nil
}

func decodeObject(dec *json.Decoder, onKey func(string)) (map[string]interface{}, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	row := make(map[string]interface{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		onKey(key)
		row[key] = v
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return row, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("malformed JSON: expected %q, got %v", want, tok)
	}
	return nil
}
