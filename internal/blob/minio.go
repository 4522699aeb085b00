package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Compile-time check to ensure MinioStore implements Store
var _ Store = (*MinioStore)(nil)

// MinioConfig configures an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object names in returned URIs. Defaults to
	// the endpoint URL plus bucket.
	PublicURL string
}

// MinioStore keeps drawings in an S3-compatible bucket.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
	logger     *zap.Logger
}

// NewMinioStore connects and creates the bucket when missing.
func NewMinioStore(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created bucket", zap.String("bucket", cfg.Bucket))
	}

	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, publicBase: base, logger: logger.Named("MinioBlob")}, nil
}

func (s *MinioStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	object := objectName(name, contentType)
	info, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.String("object", object), zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}
	uri := joinURL(s.publicBase, object)
	s.logger.Info("Image uploaded", zap.String("object", object), zap.Int64("bytes", info.Size))
	return uri, nil
}

func (s *MinioStore) Delete(ctx context.Context, uri string) error {
	prefix := strings.TrimRight(s.publicBase, "/") + "/"
	if !strings.HasPrefix(uri, prefix) {
		return ErrForeignURI
	}
	object := strings.TrimPrefix(uri, prefix)
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", object, err)
	}
	return nil
}
