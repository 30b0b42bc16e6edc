package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vet-portal/internal/config"
	"vet-portal/internal/gateway"
	"vet-portal/internal/logger"
	"vet-portal/internal/metrics"
	"vet-portal/internal/middleware"
	"vet-portal/internal/storage"
)

func main() {
	logg := logger.New("ticket-gateway", nil)

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		log.Fatalf("Invalid CLINIC_TIMEZONE %q: %v", cfg.ClinicTimezone, err)
	}

	client, err := storage.NewMinioClient(cfg.S3, logg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	locator, err := storage.NewLocator(cfg.S3.Endpoint, cfg.TicketsBucket)
	if err != nil {
		log.Fatalf("Storage locator initialization failed: %v", err)
	}
	store := storage.NewObjectStore(client, locator)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	h := gateway.NewHandler(
		gateway.NewPortalClient(cfg.PortalURL, cfg.InternalSecret, cfg.Timeout),
		gateway.NewRenderer(loc),
		store,
		cfg.InternalSecret,
		cfg.URLTTL,
		logg,
		m,
	)

	app := fiber.New(fiber.Config{AppName: "ticket-gateway"})
	app.Use(middleware.RequestLogger(logg))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/ticket/:id", h.Ticket)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logg.Info("ticket gateway listening", "addr", cfg.AppPort, "bucket", cfg.TicketsBucket)
	if err := app.Listen(cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
