// Package search wraps the Elasticsearch calls the example loader needs:
// index deletion, bulk indexing and field mapping lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"bidemoloader/pkg/logger"
)

// Client is the subset of cluster operations used by the importer and the
// metadata refresher.
type Client interface {
	// DeleteIndex removes index. A missing index is not an error.
	DeleteIndex(ctx context.Context, index string) error
	// BulkIndex indexes docs into index and refreshes it. It returns the
	// number of documents accepted.
	BulkIndex(ctx context.Context, index string, docs []map[string]interface{}) (int, error)
	// FieldTypes returns the mapped type of every top-level field of index.
	FieldTypes(ctx context.Context, index string) (map[string]string, error)
}

// Factory builds a Client for a list of node URLs.
type Factory func(urls []string) (Client, error)

type esClient struct {
	es *elasticsearch.Client
}

// NewClient creates a Client talking to the given node URLs.
func NewClient(urls []string) (Client, error) {
	return NewClientWithTransport(urls, nil)
}

// NewClientWithTransport is NewClient with a custom HTTP transport.
func NewClientWithTransport(urls []string, transport http.RoundTripper) (Client, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no search cluster URLs configured")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: urls,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return &esClient{es: es}, nil
}

func (c *esClient) DeleteIndex(ctx context.Context, index string) error {
	res, err := c.es.Indices.Delete([]string{index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		logger.Debugf("Index %s does not exist, nothing to delete", index)
		return nil
	}
	if res.IsError() {
		return responseError("delete index "+index, res)
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (c *esClient) BulkIndex(ctx context.Context, index string, docs []map[string]interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	body, err := BulkBody(docs)
	if err != nil {
		return 0, err
	}

	res, err := c.es.Bulk(bytes.NewReader(body),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError("bulk index "+index, res)
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	if br.Errors {
		for _, item := range br.Items {
			for _, op := range item {
				if op.Error != nil {
					return 0, fmt.Errorf("bulk index %s: %s: %s", index, op.Error.Type, op.Error.Reason)
				}
			}
		}
		return 0, fmt.Errorf("bulk index %s: cluster reported errors", index)
	}
	return len(br.Items), nil
}

type mappingResponse map[string]struct {
	Mappings struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	} `json:"mappings"`
}

func (c *esClient) FieldTypes(ctx context.Context, index string) (map[string]string, error) {
	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithContext(ctx),
		c.es.Indices.GetMapping.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("get mapping %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("get mapping "+index, res)
	}

	var mr mappingResponse
	if err := json.NewDecoder(res.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode mapping response: %w", err)
	}
	fields := make(map[string]string)
	for _, idx := range mr {
		for name, prop := range idx.Mappings.Properties {
			typ := prop.Type
			if typ == "" {
				typ = "object"
			}
			fields[name] = typ
		}
	}
	return fields, nil
}

// BulkBody renders docs as an NDJSON bulk request, each document preceded by
// an empty index action.
func BulkBody(docs []map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for i, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode document %d: %w", i, err)
		}
		buf.WriteString(`{"index":{}}` + "\n")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// SortedFields returns the field names of a FieldTypes result in order.
func SortedFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func responseError(op string, res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(msg))
}
