package handlers

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"vet-portal/internal/services"
	"vet-portal/internal/storage"
)

// FileStore is the object store surface used by the operator file routes.
type FileStore interface {
	services.ObjectBrowser
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	HealthCheck(ctx context.Context) error
}

// FileHandler exposes object store inspection for clinic staff.
type FileHandler struct {
	Store        FileStore
	Locator      *storage.Locator
	UploadPrefix string
	Export       *services.ExportService
	Logger       *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(store FileStore, locator *storage.Locator, uploadPrefix string, export *services.ExportService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		Store:        store,
		Locator:      locator,
		UploadPrefix: uploadPrefix,
		Export:       export,
		Logger:       logger,
	}
}

// List handles GET /api/files/list.
// @Summary List stored objects
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param prefix query string false "Key prefix"
// @Param max query int false "Maximum number of objects" default(50)
// @Success 200 {array} models.StoredObject
// @Failure 500 {object} map[string]interface{} "Store error"
// @Router /api/files/list [get]
func (h *FileHandler) List(c *fiber.Ctx) error {
	maxResults, err := strconv.Atoi(c.Query("max", "50"))
	if err != nil || maxResults <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "max must be a positive integer")
	}
	objects, err := h.Store.List(c.UserContext(), c.Query("prefix"), maxResults)
	if err != nil {
		h.Logger.Error("failed to list objects", "prefix", c.Query("prefix"), "error", err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(objects)
}

// Health handles GET /api/files/health.
// @Summary Object store health
// @Tags files
// @Produce json
// @Success 200 {object} map[string]interface{} "Store reachable"
// @Failure 503 {object} map[string]interface{} "Store unreachable"
// @Router /api/files/health [get]
func (h *FileHandler) Health(c *fiber.Ctx) error {
	if err := h.Store.HealthCheck(c.UserContext()); err != nil {
		h.Logger.Warn("object store health check failed", "error", err.Error())
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"s3Status": "unavailable", "bucket": h.Locator.Bucket(), "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"s3Status": "ok", "bucket": h.Locator.Bucket()})
}

// Upload handles POST /api/files/upload.
// @Summary Upload a file to the store
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Success 200 {object} map[string]interface{} "Uploaded"
// @Failure 400 {object} map[string]interface{} "No file"
// @Failure 500 {object} map[string]interface{} "Store error"
// @Router /api/files/upload [post]
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read file: "+err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to open file: "+err.Error())
	}
	defer f.Close()

	key := h.Locator.NewKey(h.UploadPrefix, fh.Filename)
	url, err := h.Store.Put(c.UserContext(), key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.Error("operator upload failed", "new_key", key, "error", err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"fileName": fh.Filename,
		"key":      key,
		"url":      url,
		"size":     fh.Size,
	})
}

// Export handles GET /api/files/export.
// @Summary Export one day of photos as zip
// @Tags files
// @Produce application/zip
// @Security BearerAuth
// @Param day query string true "Upload day, yyyyMMdd (UTC)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{} "Invalid day"
// @Router /api/files/export [get]
func (h *FileHandler) Export(c *fiber.Ctx) error {
	day := c.Query("day")
	if _, err := time.Parse("20060102", day); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "day must be yyyyMMdd")
	}
	ctx := c.UserContext()

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="photos-`+day+`.zip"`)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		n, err := h.Export.ExportDay(ctx, day, w)
		if err != nil {
			h.Logger.Error("photo export failed", "day", day, "objects", n, "error", err.Error())
		}
		_ = w.Flush()
	})
	return nil
}

var _ FileStore = (*storage.ObjectStore)(nil)
