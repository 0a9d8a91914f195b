package utils

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, s string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestReadGzipJSONRecords_KeepsKeyOrder(t *testing.T) {
	in := `[{"source":"Coal","target":"Heat","value":1.5},{"value":2,"source":"Oil","extra":null}]`

	recs, err := ReadGzipJSONRecords(gzipBytes(t, in))
	require.NoError(t, err)

	assert.Equal(t, []string{"source", "target", "value", "extra"}, recs.Columns)
	require.Len(t, recs.Rows, 2)
	assert.Equal(t, json.Number("1.5"), recs.Rows[0]["value"])
	assert.Equal(t, "Oil", recs.Rows[1]["source"])
	assert.Nil(t, recs.Rows[1]["extra"])
}

func TestDecodeJSONRecords_Malformed(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `[1,2]`, `[{"a":1}`, `not json`} {
		_, err := DecodeJSONRecords(strings.NewReader(in))
		assert.Error(t, err, "input %s", in)
	}
}

func TestReadGzipJSONRecords_NotGzip(t *testing.T) {
	_, err := ReadGzipJSONRecords(strings.NewReader(`[{"a":1}]`))
	assert.Error(t, err)
}

func TestReadGzipJSON(t *testing.T) {
	docs, err := ReadGzipJSON(gzipBytes(t, `[{"ds":1,"name":"a"},{"ds":2,"name":"b"}]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1]["name"])
}

func TestEpochToTime(t *testing.T) {
	got, err := EpochToTime(json.Number("1262304000000"), Milliseconds)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = EpochToTime(float64(1262304000), Seconds)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = EpochToTime(nil, Seconds)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = EpochToTime("yesterday", Seconds)
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	want := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []interface{}{"1960-01-01", "1960", json.Number("1960"), float64(1960), "1960-01-01T00:00:00Z", json.Number("-315619200000")} {
		got, err := ParseTime(in)
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, want, got, "input %v", in)
	}

	_, err := ParseTime("sixties")
	assert.Error(t, err)
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "SP_POP_TOTL", NormalizeColumnName("SP.POP.TOTL"))
	assert.Equal(t, "name", NormalizeColumnName("name"))
}

func TestValidateStruct(t *testing.T) {
	type dash struct {
		Title string `validate:"required"`
		Slug  string `validate:"required,slug"`
	}
	assert.NoError(t, ValidateStruct(dash{Title: "Births", Slug: "births"}))
	assert.NoError(t, ValidateStruct(dash{Title: "World", Slug: "world_health"}))
	assert.NoError(t, ValidateStruct(dash{Title: "Unicode", Slug: "unicode-test"}))
	assert.Error(t, ValidateStruct(dash{Title: "Bad", Slug: "Not A Slug"}))
	assert.Error(t, ValidateStruct(dash{Slug: "births"}))
}

func TestReadCSVRecords(t *testing.T) {
	in := "\ufeffphrase,short_phrase,with_missing\n" +
		"Под южно дърво,Под,\n" +
		"\"quoted, comma\",x,present\n"

	recs, err := ReadCSVRecords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"phrase", "short_phrase", "with_missing"}, recs.Columns)
	require.Len(t, recs.Rows, 2)
	assert.Equal(t, "Под южно дърво", recs.Rows[0]["phrase"])
	assert.Nil(t, recs.Rows[0]["with_missing"])
	assert.Equal(t, "quoted, comma", recs.Rows[1]["phrase"])
	assert.Equal(t, "present", recs.Rows[1]["with_missing"])
}

func TestReadCSVRecords_Errors(t *testing.T) {
	_, err := ReadCSVRecords(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadCSVRecords(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)
}
