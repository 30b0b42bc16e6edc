package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vet-portal/internal/config"
)

// NewMinioClient initializes a path-style MinIO client for an S3-compatible endpoint.
func NewMinioClient(cfg config.S3Config, logger *slog.Logger) (*minio.Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse S3 endpoint: %w", err)
	}
	if !cfg.HasCredentials() {
		logger.Warn("S3 credentials not found in environment variables")
	}
	return minio.New(u.Host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       u.Scheme == "https",
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
}

// EnsureBucket creates bucket when it is not present.
func EnsureBucket(ctx context.Context, client *minio.Client, bucket, region string, logger *slog.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return err
		}
		logger.Info("created bucket", "bucket", bucket)
	}
	return nil
}
