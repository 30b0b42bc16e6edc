package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"vet-portal/internal/config"
	_ "vet-portal/internal/docs"
	"vet-portal/internal/handlers"
	"vet-portal/internal/logger"
	"vet-portal/internal/metrics"
	"vet-portal/internal/middleware"
	"vet-portal/internal/repository"
	"vet-portal/internal/services"
	"vet-portal/internal/storage"
)

// @title Vet Portal API
// @version 1.0
// @description Appointments with photo attachments and ticket downloads for the vet clinic portal.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logg := logger.New("vet-portal", nil)
	slog.SetDefault(logg)

	cfg := InitConfig()
	loc := LoadLocation(cfg.ClinicTimezone)
	db := ConnectDatabase(cfg)
	repo := MigrateDatabase(db)
	minioClient := InitMinIOClient(cfg, logg)

	locator, err := storage.NewLocator(cfg.S3.Endpoint, cfg.S3.Bucket)
	if err != nil {
		log.Fatalf("Storage locator initialization failed: %v", err)
	}
	store := storage.NewObjectStore(minioClient, locator)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	if !cfg.Ticket.Configured() {
		logg.Warn("TICKET_API_URL or TICKET_INTERNAL_SECRET not set, ticket downloads will be refused")
	}

	attachments := services.NewAttachmentService(store, locator, cfg.S3.PhotoPrefix, logg, m)
	appointments := services.NewAppointmentService(repo, attachments, loc, logg)
	proxy := services.NewTicketProxy(cfg.Ticket, repo, nil, logg, m)
	payloads := services.NewTicketPayloadService(repo, cfg.Ticket.InternalSecret, cfg.Ticket.CabinetPrefix, logg)
	export := services.NewExportService(store, locator, cfg.S3.PhotoPrefix, logg)

	limiter := InitRateLimiter(cfg, logg)

	app := fiber.New(fiber.Config{
		AppName:   "vet-portal",
		BodyLimit: 20 * 1024 * 1024,
	})

	// Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", swagger.HandlerDefault)

	routes := handlers.Routes{
		Appointments:     handlers.NewAppointmentHandler(appointments, logg),
		Tickets:          handlers.NewTicketHandler(proxy, payloads, logg),
		Files:            handlers.NewFileHandler(store, locator, cfg.S3.UploadPrefix, export, logg),
		JWTSecret:        cfg.Auth.JWTSecret,
		TicketsPerMinute: cfg.RateLimit.PerMinute,
		Logger:           logg,
	}
	if limiter != nil {
		routes.Limiter = limiter
		defer limiter.Close()
	}
	handlers.Register(app, routes)

	for _, r := range app.GetRoutes(true) {
		logg.Debug("route registered", "method", r.Method, "path", r.Path)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logg.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logg.Info("server listening", "addr", cfg.AppPort, "bucket", cfg.S3.Bucket)
	if err := app.Listen(cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("Invalid CLINIC_TIMEZONE %q: %v", name, err)
	}
	return loc
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) *repository.AppointmentRepositoryImpl {
	repo := repository.NewAppointmentRepository(db)
	if err := repo.Migrate(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	return repo
}

func InitMinIOClient(cfg *config.Config, logg *slog.Logger) *minio.Client {
	client, err := storage.NewMinioClient(cfg.S3, logg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	if cfg.S3.EnsureBucket {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := storage.EnsureBucket(ctx, client, cfg.S3.Bucket, cfg.S3.Region, logg); err != nil {
			log.Fatalf("Bucket check failed: %v", err)
		}
	}
	return client
}

// InitRateLimiter connects the ticket route limiter. Without REDIS_ADDR, or
// when Redis is down at startup, the route runs unlimited.
func InitRateLimiter(cfg *config.Config, logg *slog.Logger) *storage.RedisClient {
	if cfg.RateLimit.RedisAddr == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := storage.NewRedisClient(ctx, cfg.RateLimit.RedisAddr)
	if err != nil {
		logg.Warn("rate limiter disabled", "error", err.Error())
		return nil
	}
	return client
}

var _ middleware.WindowCounter = (*storage.RedisClient)(nil)
