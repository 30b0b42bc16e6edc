package services

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/mholt/archives"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
	"vet-portal/internal/storage"
)

// maxExportObjects caps a single day export.
const maxExportObjects = 1000

// ObjectBrowser is the read side of the object store used by operator tools.
type ObjectBrowser interface {
	List(ctx context.Context, prefix string, maxResults int) ([]models.StoredObject, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExportService bundles the photos uploaded on one day into a zip archive.
type ExportService struct {
	store   ObjectBrowser
	locator *storage.Locator
	prefix  string
	logger  *slog.Logger
}

// NewExportService creates an ExportService over the photos stored under prefix.
func NewExportService(store ObjectBrowser, locator *storage.Locator, prefix string, logger *slog.Logger) *ExportService {
	return &ExportService{store: store, locator: locator, prefix: prefix, logger: logger}
}

// ExportDay writes a zip of every photo uploaded on day (yyyyMMdd, UTC) to w
// and returns the number of archived objects.
func (s *ExportService) ExportDay(ctx context.Context, day string, w io.Writer) (int, error) {
	d, err := time.Parse("20060102", day)
	if err != nil {
		return 0, errors.Wrapf(models.ErrInvalidInput, "day must be yyyyMMdd, got %q", day)
	}
	prefix := s.locator.DayPrefix(s.prefix, d)

	objects, err := s.store.List(ctx, prefix, maxExportObjects)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list photos for export")
	}

	var archived int64
	files := make([]archives.FileInfo, 0, len(objects))
	for _, obj := range objects {
		obj := obj
		info := objectInfo{name: path.Base(obj.Key), size: obj.Size, modTime: obj.LastModified}
		files = append(files, archives.FileInfo{
			FileInfo:      info,
			NameInArchive: obj.Key,
			Open: func() (fs.File, error) {
				rc, err := s.store.Open(ctx, obj.Key)
				if err != nil {
					return nil, err
				}
				return objectFile{ReadCloser: &countingReader{rc: rc, total: &archived}, info: info}, nil
			},
		})
	}

	if err := (archives.Zip{}).Archive(ctx, w, files); err != nil {
		return 0, errors.Wrap(err, "failed to write export archive")
	}
	s.logger.Info("photo export written", "prefix", prefix, "objects", len(files), "bytes", archived)
	return len(files), nil
}

// objectInfo describes a stored object as a regular file.
type objectInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (i objectInfo) Name() string       { return i.name }
func (i objectInfo) Size() int64        { return i.size }
func (i objectInfo) Mode() fs.FileMode  { return 0o644 }
func (i objectInfo) ModTime() time.Time { return i.modTime }
func (i objectInfo) IsDir() bool        { return false }
func (i objectInfo) Sys() any           { return nil }

type objectFile struct {
	io.ReadCloser
	info objectInfo
}

func (f objectFile) Stat() (fs.FileInfo, error) { return f.info, nil }

// countingReader adds the bytes read from an object to total.
type countingReader struct {
	rc    io.ReadCloser
	total *int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	*c.total += int64(n)
	return n, err
}

func (c *countingReader) Close() error { return c.rc.Close() }
