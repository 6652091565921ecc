// Package artifact publishes exported files to a local directory or an
// S3 bucket.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/porticus-lab/go-toolbox/internal/config"
)

// ErrBadName is returned for names that are empty or not a plain file name.
var ErrBadName = errors.New("artifact name must be a plain file name")

// Sink stores a named file and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// FromConfig builds the sink selected by cfg. An S3 bucket takes precedence
// over a directory. It returns a nil Sink when neither is set.
func FromConfig(ctx context.Context, cfg config.ArtifactsConfig) (Sink, error) {
	switch {
	case cfg.S3.Bucket != "":
		return NewS3SinkFromConfig(ctx, cfg.S3)
	case cfg.Dir != "":
		return &DirSink{Dir: cfg.Dir}, nil
	}
	return nil, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || path.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// DirSink writes files into Dir, creating it as needed.
type DirSink struct {
	Dir string
}

// Put writes body to Dir/name and returns the file path.
func (d *DirSink) Put(_ context.Context, name, _ string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	p := filepath.Join(d.Dir, name)
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return p, nil
}

// S3Sink uploads files to Bucket under Prefix.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink wraps an existing client.
func NewS3Sink(client *s3.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// NewS3SinkFromConfig loads AWS credentials from the default chain. A
// non-empty Endpoint targets an S3-compatible store with path-style URLs.
func NewS3SinkFromConfig(ctx context.Context, cfg config.S3Config) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

// Put uploads body and returns its s3:// URI.
func (s *S3Sink) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to bucket %s: %w", key, s.bucket, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
