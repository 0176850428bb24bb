package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/handlers"
	"github.com/wanderguide/marketplace-api/internal/logging"
	"github.com/wanderguide/marketplace-api/internal/middleware"
	"github.com/wanderguide/marketplace-api/internal/routes"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.NewJSONHandler(os.Stdout, cfg.Env)
	logging.Setup(stdout)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.IsProduction() && cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		slog.Error("DATABASE_URL or DB_PASSWORD is required in production")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	logging.Setup(stdout, dbLogHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logging.StartCleanup(ctx, database.DB, cfg.LogRetentionDays)

	// Read cache: Redis when configured, otherwise pass-through
	var readCache cache.Cache = cache.NewNoop()
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, "marketplace:")
		if err != nil {
			slog.Error("invalid REDIS_URL, caching disabled", "error", err)
		} else {
			redisCache, readCache = rc, rc
			slog.Info("redis cache enabled")
		}
	}
	loader := cache.NewLoader(readCache, cfg.CacheTTL)

	// Services
	validator := validation.New()
	settingsService := services.NewSettingsService(database.DB, cfg)
	authService := services.NewAuthService(database.DB, cfg)
	cityService := services.NewCityService(database.DB, loader)
	guideService := services.NewGuideService(database.DB, loader)
	availabilityService := services.NewAvailabilityService(database.DB)
	reservationService := services.NewReservationService(database.DB, cfg, settingsService)
	reviewService := services.NewReviewService(database.DB, cfg, loader)
	moderationService := services.NewModerationService(database.DB)
	messagingService := services.NewMessagingService(database.DB, services.NewContentFilter(), moderationService)
	contactService := services.NewContactService(database.DB)
	adminService := services.NewAdminService(database.DB)
	devService := services.NewDevService(database.DB, loader)

	// Seed default platform settings
	slog.Info("seeding platform settings defaults")
	if err := settingsService.SeedDefaults(ctx); err != nil {
		slog.Error("settings seed failed", "error", err)
	}

	// Handlers
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, validator),
		Health:        handlers.NewHealthHandler(database.Ping, readCache),
		Settings:      handlers.NewSettingsHandler(settingsService, validator),
		Moderation:    handlers.NewModerationHandler(moderationService, validator),
		Cities:        handlers.NewCityHandler(cityService, validator),
		Guides:        handlers.NewGuideHandler(guideService, validator),
		Availability:  handlers.NewAvailabilityHandler(availabilityService, validator),
		Reservations:  handlers.NewReservationHandler(reservationService, validator),
		Reviews:       handlers.NewReviewHandler(reviewService, validator),
		Conversations: handlers.NewConversationHandler(messagingService, validator),
		Contact:       handlers.NewContactHandler(contactService, validator),
		Admin:         handlers.NewAdminHandler(adminService, guideService, reservationService, validator),
		Dev:           handlers.NewDevHandler(devService, cfg),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, database.DB, settingsService, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
