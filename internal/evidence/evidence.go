// Package evidence stores failure screenshots in S3-compatible object storage.
package evidence

import (
	"bytes"
	"context"
	"fmt"

	"github.com/parthasarathygopu/orca/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object describes a stored object.
type Object struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// MinioStore uploads evidence through the MinIO client, which speaks to AWS S3 and
// S3-compatible services alike.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.EvidenceConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check evidence bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create evidence bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads data under key.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (Object, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return Object{Bucket: info.Bucket, Key: info.Key, Size: info.Size, ETag: info.ETag}, nil
}

// ScreenshotKey is the object key of the screenshot taken for an action log.
func ScreenshotKey(executionRequestID, itemLogID uint) string {
	return fmt.Sprintf("evidence/%d/%d.png", executionRequestID, itemLogID)
}
