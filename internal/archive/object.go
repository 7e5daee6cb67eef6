package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore archives documents in an S3-compatible bucket
type ObjectStore struct {
	client *minio.Client
	bucket string
	region string
}

// ObjectStoreConfig holds the connection settings for the object store
type ObjectStoreConfig struct {
	// Endpoint is the object storage host:port
	Endpoint string `json:"endpoint" koanf:"endpoint"`
	// Region is the bucket region
	Region string `json:"region" koanf:"region"`
	// Bucket is the bucket documents are stored in
	Bucket string `json:"bucket" koanf:"bucket" default:"probity-documents"`
	// AccessKey is the access key ID
	AccessKey string `json:"accessKey" koanf:"accessKey" sensitive:"true"`
	// SecretKey is the secret access key
	SecretKey string `json:"secretKey" koanf:"secretKey" sensitive:"true"`
	// UseSSL enables TLS for the object store connection
	UseSSL bool `json:"useSSL" koanf:"useSSL" default:"true"`
}

// NewObjectStore connects to the object store and ensures the bucket exists
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBucketCheckFailed, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBucketCheckFailed, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBucketCheckFailed, err)
		}
	}

	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Save stores body under key and returns a bucket-scoped location
func (s *ObjectStore) Save(ctx context.Context, key string, contentType string, body []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Read returns the stored bytes for a location returned by Save
func (s *ObjectStore) Read(ctx context.Context, location string) ([]byte, error) {
	key := strings.TrimPrefix(location, fmt.Sprintf("s3://%s/", s.bucket))

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ErrNotFound
	}
	defer obj.Close() //nolint:errcheck // object close error is non-critical

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, ErrNotFound
	}

	return body, nil
}
