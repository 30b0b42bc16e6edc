package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vet-portal/internal/metrics"
	"vet-portal/internal/models"
	"vet-portal/internal/storage"
)

// PhotoStore is the part of the object store the attachment lifecycle needs.
type PhotoStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) storage.DeleteResult
}

// StoredPhoto identifies an uploaded appointment photo.
type StoredPhoto struct {
	Key string
	URL string
}

// AttachmentService uploads and releases appointment photos. Store failures
// never escape it: they are logged and counted, and callers degrade.
type AttachmentService struct {
	store   PhotoStore
	locator *storage.Locator
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAttachmentService creates an AttachmentService storing photos under prefix.
func NewAttachmentService(store PhotoStore, locator *storage.Locator, prefix string, logger *slog.Logger, m *metrics.Metrics) *AttachmentService {
	return &AttachmentService{
		store:   store,
		locator: locator,
		prefix:  prefix,
		logger:  logger,
		metrics: m,
	}
}

// Upload stores up under a fresh key. It returns false when the upload failed.
func (s *AttachmentService) Upload(ctx context.Context, apptID uuid.UUID, up *models.Upload) (StoredPhoto, bool) {
	if up == nil || up.Body == nil {
		return StoredPhoto{}, false
	}
	key := s.locator.NewKey(s.prefix, up.Filename)
	url, err := s.store.Put(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		s.metrics.RecordAttachment("put", "failed")
		s.logger.Error("photo upload failed, continuing without photo",
			"appointment_id", apptID.String(),
			"new_key", key,
			"error", err.Error(),
		)
		return StoredPhoto{}, false
	}
	s.metrics.RecordAttachment("put", "ok")
	s.logger.Info("photo uploaded", "appointment_id", apptID.String(), "new_key", key)
	return StoredPhoto{Key: key, URL: url}, true
}

// Release deletes the object referenced by key, or by url when key is empty.
// A url that cannot be mapped back to a key counts as nothing to delete.
func (s *AttachmentService) Release(ctx context.Context, apptID uuid.UUID, key, url, reason string) storage.DeleteResult {
	if key == "" && url == "" {
		return storage.DeleteResult{Outcome: storage.DeleteSkipped}
	}
	fromURL := key == ""
	if fromURL {
		recovered, err := s.locator.KeyFromURL(url)
		if err != nil {
			s.metrics.RecordAttachment("delete", string(storage.DeleteSkipped))
			s.logger.Warn("cannot recover object key from stored photo url",
				"appointment_id", apptID.String(),
				"reason", reason,
				"photo_url", url,
				"error", err.Error(),
			)
			return storage.DeleteResult{Outcome: storage.DeleteSkipped, Err: errors.Wrap(err, "recover key")}
		}
		key = recovered
	}

	res := s.store.Delete(ctx, key)
	s.metrics.RecordAttachment("delete", string(res.Outcome))
	if !res.OK() {
		s.logger.Error("photo cleanup failed, object may be orphaned",
			"appointment_id", apptID.String(),
			"reason", reason,
			"old_key", key,
			"outcome", string(res.Outcome),
			"error", errString(res.Err),
		)
		return res
	}
	if fromURL && res.Outcome == storage.DeleteNotFound {
		s.logger.Warn("photo recovered from url was already gone, check for an orphan",
			"appointment_id", apptID.String(),
			"reason", reason,
			"photo_url", url,
			"old_key", key,
		)
		return res
	}
	s.logger.Info("photo removed",
		"appointment_id", apptID.String(),
		"reason", reason,
		"old_key", key,
		"outcome", string(res.Outcome),
	)
	return res
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
