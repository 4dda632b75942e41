package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"meetapi/internal/auth"
	"meetapi/internal/config"
	"meetapi/internal/database"
	"meetapi/internal/database/migration"
	handlers "meetapi/internal/http/handler"
	"meetapi/internal/http/middleware"
	"meetapi/internal/notify"
	"meetapi/internal/otel"
	"meetapi/internal/repository/postgres"
	"meetapi/internal/service"
	"meetapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing first so the DB driver wrapper has a provider to report to.
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection with pooling via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories and the transaction manager
	userRepo := postgres.NewUserPostgres(db)
	meetingRepo := postgres.NewMeetingPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	txManager := postgres.NewTxManager(db)

	issuer := auth.NewTokenIssuer(cfg.Auth)

	mailer, closeMailer := notify.NewAsynqMailer(cfg.Redis)
	defer closeMailer()

	// Services
	userSvc := service.NewUserService(userRepo, txManager, objStore, issuer, mailer, cfg.Upload)
	meetingSvc := service.NewMeetingService(meetingRepo, userRepo, objStore, mailer, cfg.BaseURL)
	docSvc := service.NewDocumentService(docRepo, meetingRepo, txManager, objStore, cfg.Upload, cfg.BaseURL)

	// Metrics registry shared by the HTTP middleware and the cleanup job
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	cleanupSvc, err := service.NewCleanupService(meetingRepo, objStore, txManager, cfg.Cleanup.RetentionDays, registry)
	if err != nil {
		log.Fatalf("failed to register cleanup metrics: %v", err)
	}

	// Retention purge on the configured schedule
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cleanup.CronSpec, func() {
		if err := cleanupSvc.Run(context.Background()); err != nil {
			log.Printf("cleanup run failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid cleanup schedule %q: %v", cfg.Cleanup.CronSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxSizeBytes) + 1<<20, // leave room for multipart framing
	})

	// Global middleware: request IDs, JSON request logs, traces, metrics
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, issuer, handlers.Services{
		Users:     userSvc,
		Meetings:  meetingSvc,
		Documents: docSvc,
	})

	// Serve until interrupted, then drain in-flight requests.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
