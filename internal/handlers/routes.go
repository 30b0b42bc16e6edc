package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"vet-portal/internal/middleware"
)

// Routes collects what Register needs to mount the portal API.
type Routes struct {
	Appointments *AppointmentHandler
	Tickets      *TicketHandler
	Files        *FileHandler

	JWTSecret        string
	Limiter          middleware.WindowCounter
	TicketsPerMinute int
	Logger           *slog.Logger
}

// Register mounts the portal routes on app.
func Register(app *fiber.App, r Routes) {
	app.Use(middleware.RequestLogger(r.Logger))

	// Gateway-facing, authorized by the shared secret only.
	app.Get("/internal/ticket/:id", r.Tickets.InternalTicket)

	auth := middleware.Authenticate(r.JWTSecret, r.Logger)
	app.Get("/ticket/:id/pdf",
		auth,
		middleware.RateLimit(r.Limiter, "ticket", r.TicketsPerMinute, time.Minute, r.Logger),
		r.Tickets.TicketPDF,
	)

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	api.Get("/files/health", r.Files.Health)

	appts := api.Group("/appointments", auth)
	appts.Get("/", r.Appointments.ListMine)
	appts.Get("/all", middleware.RequireStaff(), r.Appointments.ListAll)
	appts.Get("/:id", r.Appointments.Get)
	appts.Post("/", r.Appointments.Create)
	appts.Put("/:id", r.Appointments.Update)
	appts.Delete("/:id", r.Appointments.Delete)

	files := api.Group("/files", auth, middleware.RequireStaff())
	files.Get("/list", r.Files.List)
	files.Post("/upload", r.Files.Upload)
	files.Get("/export", r.Files.Export)
}
