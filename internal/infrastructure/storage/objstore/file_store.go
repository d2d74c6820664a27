// Package objstore stores profile images in a MinIO / S3 compatible bucket.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultBucket = "profile-images"
	keyPrefix     = "profiles"
)

// ErrForeignReference is returned by Delete for references this store did not issue.
var ErrForeignReference = errors.New("reference does not belong to this store")

// Config captures the settings for connecting to the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which stored objects are reachable. Defaults
	// to the endpoint with the configured scheme.
	PublicURL string
}

// FileStore implements ports.FileStore on top of a MinIO client.
type FileStore struct {
	mc      *minio.Client
	bucket  string
	baseURL string
}

// NewFileStore creates a MinIO backed file store. It does not contact the server.
func NewFileStore(cfg Config) (*FileStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return &FileStore{mc: mc, bucket: bucket, baseURL: publicBase(cfg, bucket)}, nil
}

func publicBase(cfg Config, bucket string) string {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return base + "/" + bucket + "/"
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *FileStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Ping returns a readiness check against the bucket.
func (s *FileStore) Ping() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.mc.BucketExists(ctx, s.bucket)
		return err
	}
}

// Store uploads body under profiles/<accountID>/<uuid><ext> and returns its public URL.
func (s *FileStore) Store(ctx context.Context, accountID string, body io.Reader, size int64, contentType, filename string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(accountID, filename)

	_, err := s.mc.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

// Delete removes the object behind ref. Missing objects are not an error.
func (s *FileStore) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}
	if err := s.mc.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) keyFromRef(ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || !strings.HasPrefix(key, keyPrefix+"/") {
		return "", fmt.Errorf("%w: %s", ErrForeignReference, ref)
	}
	return key, nil
}

func objectKey(accountID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s/%s%s", keyPrefix, accountID, uuid.NewString(), ext)
}
