// Package datafiles opens the bundled example files, either from a local
// directory or from an S3-compatible bucket.
package datafiles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source opens example files by name relative to the data directory.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Location describes where name is read from, for logging.
	Location(name string) string
}

// S3Config holds the object storage settings used when the data directory is an s3:// URL.
type S3Config struct {
	Region          string
	Endpoint        string // optional; set for MinIO and other S3-compatible stores
	PathStyle       bool
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
}

// New returns a Source for dataDir. s3://bucket/prefix selects object storage,
// anything else is a local directory.
func New(ctx context.Context, dataDir string, s3cfg S3Config) (Source, error) {
	if rest, ok := strings.CutPrefix(dataDir, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("data dir %q has no bucket", dataDir)
		}
		client, err := newS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Source(client, bucket, prefix), nil
	}
	return NewDirSource(dataDir), nil
}

// DirSource reads files from a local directory.
type DirSource struct {
	root string
}

// NewDirSource creates a Source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

func (s *DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("open example file: %w", err)
	}
	return f, nil
}

func (s *DirSource) Location(name string) string {
	return filepath.Join(s.root, name)
}

// S3Source reads files from a bucket under a key prefix.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates a Source over an existing S3 client.
func NewS3Source(client *s3.Client, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	key := s.key(clean)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

func (s *S3Source) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// sanitizeName rejects names that would escape the data directory.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty file name")
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.ToSlash(filepath.Clean(name)), nil
}
