package search

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCluster records requests and answers like a single-node cluster.
type fakeCluster struct {
	mu         sync.Mutex
	requests   []string
	bulkBodies [][]byte
	indices    map[string]bool
	bulkErrors bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodDelete:
		index := strings.TrimPrefix(r.URL.Path, "/")
		if !f.indices[index] {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
			return
		}
		delete(f.indices, index)
		io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		body, _ := io.ReadAll(r.Body)
		f.bulkBodies = append(f.bulkBodies, body)
		f.indices[strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_bulk")] = true
		lines := bytes.Count(body, []byte("\n")) / 2
		items := make([]string, lines)
		for i := range items {
			if f.bulkErrors {
				items[i] = `{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad doc"}}}`
			} else {
				items[i] = `{"index":{"status":201}}`
			}
		}
		io.WriteString(w, `{"errors":`+boolString(f.bulkErrors)+`,"items":[`+strings.Join(items, ",")+`]}`)
	case strings.HasSuffix(r.URL.Path, "/_mapping"):
		io.WriteString(w, `{"example-energy_usage":{"mappings":{"properties":{
			"source":{"type":"text","fields":{"keyword":{"type":"keyword"}}},
			"value":{"type":"float"},
			"meta":{"properties":{"a":{"type":"long"}}}}}}}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func newFakeCluster(t *testing.T) (*fakeCluster, Client) {
	t.Helper()
	fc := &fakeCluster{indices: map[string]bool{}}
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)
	c, err := NewClient([]string{srv.URL})
	require.NoError(t, err)
	return fc, c
}

func TestBulkBody(t *testing.T) {
	body, err := BulkBody([]map[string]interface{}{
		{"source": "Coal", "value": json.Number("1.5")},
		{"source": "Oil"},
	})
	require.NoError(t, err)

	sc := bufio.NewScanner(bytes.NewReader(body))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{
		`{"index":{}}`,
		`{"source":"Coal","value":1.5}`,
		`{"index":{}}`,
		`{"source":"Oil"}`,
	}, lines)
	assert.True(t, bytes.HasSuffix(body, []byte("\n")))
}

func TestDeleteIndex_IgnoresMissing(t *testing.T) {
	fc, c := newFakeCluster(t)
	require.NoError(t, c.DeleteIndex(context.Background(), "example-energy_usage"))

	fc.indices["example-energy_usage"] = true
	require.NoError(t, c.DeleteIndex(context.Background(), "example-energy_usage"))
	assert.False(t, fc.indices["example-energy_usage"])
}

func TestBulkIndex(t *testing.T) {
	fc, c := newFakeCluster(t)
	n, err := c.BulkIndex(context.Background(), "example-energy_usage", []map[string]interface{}{
		{"source": "Coal"}, {"source": "Oil"}, {"source": "Gas"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, fc.bulkBodies, 1)
	assert.Equal(t, 3, bytes.Count(fc.bulkBodies[0], []byte(`{"index":{}}`)))
	assert.Contains(t, fc.requests, "POST /example-energy_usage/_bulk")

	n, err = c.BulkIndex(context.Background(), "example-energy_usage", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkIndex_ItemErrors(t *testing.T) {
	fc, c := newFakeCluster(t)
	fc.bulkErrors = true
	_, err := c.BulkIndex(context.Background(), "example-energy_usage", []map[string]interface{}{{"source": "Coal"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestFieldTypes(t *testing.T) {
	_, c := newFakeCluster(t)
	fields, err := c.FieldTypes(context.Background(), "example-energy_usage")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"source": "text", "value": "float", "meta": "object"}, fields)
	assert.Equal(t, []string{"meta", "source", "value"}, SortedFields(fields))
}

func TestNewClient_NoURLs(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}
