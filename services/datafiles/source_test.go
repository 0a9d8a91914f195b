package datafiles

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource_Open(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "countries.md"), []byte("# World Bank"), 0o644))

	src := NewDirSource(dir)
	rc, err := src.Open(context.Background(), "countries.md")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "# World Bank", string(data))
	assert.Equal(t, filepath.Join(dir, "countries.md"), src.Location("countries.md"))

	_, err = src.Open(context.Background(), "missing.json.gz")
	assert.Error(t, err)
}

func TestDirSource_RejectsTraversal(t *testing.T) {
	src := NewDirSource(t.TempDir())
	for _, name := range []string{"../etc/passwd", "/etc/passwd", " "} {
		_, err := src.Open(context.Background(), name)
		assert.Error(t, err, name)
	}
}

// objectRoundTripper serves GetObject requests from a fixed key map.
type objectRoundTripper struct {
	objects map[string]string
	paths   []string
}

func (m *objectRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.paths = append(m.paths, req.URL.Path)
	key := strings.TrimPrefix(req.URL.Path, "/")
	if body, ok := m.objects[key]; ok && req.Method == http.MethodGet {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			Header:     http.Header{"Content-Length": {strconv.Itoa(len(body))}},
		}, nil
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func newMockS3Client(t *testing.T, rt http.RoundTripper) *s3.Client {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
}

func TestS3Source_Open(t *testing.T) {
	rt := &objectRoundTripper{objects: map[string]string{"examples/data/energy.json.gz": "gz"}}
	src := NewS3Source(newMockS3Client(t, rt), "examples", "/data/")

	rc, err := src.Open(context.Background(), "energy.json.gz")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "gz", string(data))
	assert.Equal(t, "s3://examples/data/energy.json.gz", src.Location("energy.json.gz"))

	_, err = src.Open(context.Background(), "missing.json.gz")
	assert.Error(t, err)
}

func TestNew_SelectsSourceByScheme(t *testing.T) {
	src, err := New(context.Background(), "./data", S3Config{})
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)

	_, err = New(context.Background(), "s3://", S3Config{})
	assert.Error(t, err)
}
