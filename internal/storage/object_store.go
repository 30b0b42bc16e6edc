package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
)

// DeleteOutcome classifies a best-effort object removal.
type DeleteOutcome string

const (
	DeleteDeleted  DeleteOutcome = "deleted"
	DeleteNotFound DeleteOutcome = "not_found"
	DeleteFailed   DeleteOutcome = "failed"
	DeleteSkipped  DeleteOutcome = "skipped"
)

// DeleteResult reports what happened to one object removal. Err is set only
// for DeleteFailed and DeleteSkipped.
type DeleteResult struct {
	Key     string
	Outcome DeleteOutcome
	Err     error
}

// OK reports whether the object is known to be gone.
func (r DeleteResult) OK() bool {
	return r.Outcome == DeleteDeleted || r.Outcome == DeleteNotFound
}

// ObjectStore is the adapter over one bucket of an S3-compatible store.
type ObjectStore struct {
	client  *minio.Client
	locator *Locator
}

// NewObjectStore wraps client for the bucket described by locator.
func NewObjectStore(client *minio.Client, locator *Locator) *ObjectStore {
	return &ObjectStore{client: client, locator: locator}
}

// Locator returns the key and URL builder of the store.
func (s *ObjectStore) Locator() *Locator { return s.locator }

// Put uploads body under key and returns the object's URL. A negative size
// streams the body with multipart upload.
func (s *ObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.locator.Bucket(), key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s", key)
	}
	return s.locator.URL(key), nil
}

// Delete removes key. A missing key is reported as DeleteNotFound, not as a failure.
func (s *ObjectStore) Delete(ctx context.Context, key string) DeleteResult {
	if key == "" {
		return DeleteResult{Outcome: DeleteSkipped, Err: fmt.Errorf("empty object key")}
	}
	err := s.client.RemoveObject(ctx, s.locator.Bucket(), key, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return DeleteResult{Key: key, Outcome: DeleteNotFound}
		}
		return DeleteResult{Key: key, Outcome: DeleteFailed, Err: errors.Wrapf(err, "failed to delete %s", key)}
	}
	return DeleteResult{Key: key, Outcome: DeleteDeleted}
}

// List returns up to maxResults objects whose key starts with prefix.
func (s *ObjectStore) List(ctx context.Context, prefix string, maxResults int) ([]models.StoredObject, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]models.StoredObject, 0, maxResults)
	for info := range s.client.ListObjects(ctx, s.locator.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxResults,
	}) {
		if info.Err != nil {
			return nil, errors.Wrap(info.Err, "failed to list objects")
		}
		objects = append(objects, models.StoredObject{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
			URL:          s.locator.URL(info.Key),
		})
		if len(objects) >= maxResults {
			break
		}
	}
	return objects, nil
}

// Open streams the content of key.
func (s *ObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.locator.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", key)
	}
	return obj, nil
}

// Presign returns a time limited download URL for key.
func (s *ObjectStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.locator.Bucket(), key, ttl, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "failed to presign %s", key)
	}
	return u.String(), nil
}

// HealthCheck verifies the store is reachable with the configured credentials.
func (s *ObjectStore) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.locator.Bucket())
	if err != nil {
		return errors.Wrap(err, "object store unreachable")
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.locator.Bucket())
	}
	return nil
}
