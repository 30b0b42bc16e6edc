package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vet-portal/internal/middleware"
	"vet-portal/internal/models"
	"vet-portal/internal/services"
)

// AppointmentHandler serves booking, editing and cancelling appointments.
type AppointmentHandler struct {
	Service *services.AppointmentService
	Logger  *slog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *services.AppointmentService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: service, Logger: logger}
}

// ListMine handles GET /api/appointments.
// @Summary List the caller's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Appointment
// @Failure 401 {object} map[string]interface{} "Authentication required"
// @Router /api/appointments [get]
func (h *AppointmentHandler) ListMine(c *fiber.Ctx) error {
	caller, _ := middleware.CallerFrom(c)
	appts, err := h.Service.ListMine(c.UserContext(), caller)
	if err != nil {
		h.Logger.Error("failed to list appointments", "caller", caller.Subject, "error", err.Error())
		return serviceError(c, err)
	}
	return c.JSON(appts)
}

// ListAll handles GET /api/appointments/all, the staff view ordered by date.
// @Summary List every appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Appointment
// @Failure 403 {object} map[string]interface{} "Staff only"
// @Router /api/appointments/all [get]
func (h *AppointmentHandler) ListAll(c *fiber.Ctx) error {
	appts, err := h.Service.ListAll(c.UserContext())
	if err != nil {
		h.Logger.Error("failed to list all appointments", "error", err.Error())
		return serviceError(c, err)
	}
	return c.JSON(appts)
}

// Get handles GET /api/appointments/:id.
// @Summary Get an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Appointment not found"
// @Router /api/appointments/{id} [get]
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, InvalidUuidError)
	}
	caller, _ := middleware.CallerFrom(c)
	appt, err := h.Service.Get(c.UserContext(), caller, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(appt)
}

// Create handles POST /api/appointments.
// @Summary Book an appointment
// @Description Accepts a multipart form with an optional photo, or a JSON body without one. A photo that cannot be stored is dropped.
// @Tags appointments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param fullName formData string true "Owner full name"
// @Param animalType formData string true "Animal type"
// @Param nickname formData string true "Pet nickname"
// @Param date formData string true "Local date, YYYY-MM-DD"
// @Param time formData string true "Local time, HH:MM"
// @Param photo formData file false "Pet photo"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Router /api/appointments [post]
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	caller, _ := middleware.CallerFrom(c)
	var in models.AppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	photo, closePhoto, err := formPhoto(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read photo: "+err.Error())
	}
	defer closePhoto()

	appt, err := h.Service.Book(c.UserContext(), caller, in, photo)
	if err != nil {
		h.Logger.Warn("booking rejected", "caller", caller.Subject, "error", err.Error())
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appt)
}

// Update handles PUT /api/appointments/:id.
// @Summary Edit an appointment
// @Description Replaces the fields and, when a photo is sent, the photo. Returns 409 if the appointment changed concurrently.
// @Tags appointments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param photo formData file false "New pet photo"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Appointment not found"
// @Failure 409 {object} map[string]interface{} "Concurrent modification"
// @Router /api/appointments/{id} [put]
func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, InvalidUuidError)
	}
	caller, _ := middleware.CallerFrom(c)
	var in models.AppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	photo, closePhoto, err := formPhoto(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "failed to read photo: "+err.Error())
	}
	defer closePhoto()

	appt, err := h.Service.Edit(c.UserContext(), caller, id, in, photo)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(appt)
}

// Delete handles DELETE /api/appointments/:id.
// @Summary Cancel an appointment
// @Description The record is removed even when the photo cannot be deleted from storage.
// @Tags appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Appointment not found"
// @Router /api/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, InvalidUuidError)
	}
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.Remove(c.UserContext(), caller, id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// formPhoto returns the optional "photo" part of a multipart request. The
// returned close function is always safe to call.
func formPhoto(c *fiber.Ctx) (*models.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	fh, err := c.FormFile("photo")
	if err != nil || fh.Size == 0 {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &models.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
