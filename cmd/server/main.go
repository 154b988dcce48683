package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/database"
	"github.com/fitlogapp/fitlog-backend/internal/handlers"
	"github.com/fitlogapp/fitlog-backend/internal/logging"
	"github.com/fitlogapp/fitlog-backend/internal/middleware"
	"github.com/fitlogapp/fitlog-backend/internal/ratelimit"
	"github.com/fitlogapp/fitlog-backend/internal/routes"
	"github.com/fitlogapp/fitlog-backend/internal/services"
	"github.com/fitlogapp/fitlog-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Stores
	userStore := store.NewUserStore(database.DB)
	refreshStore := store.NewRefreshTokenStore(database.DB)
	resetStore := store.NewResetTokenStore(database.DB)

	// Rate limiter: Redis when configured and reachable, in-process otherwise
	selector := ratelimit.NewSelector(cfg.RedisURL, cfg.RedisTimeout)
	limiter := ratelimit.New(selector.Store())

	// Reset-link delivery is handled by the mailer deployment; until it is
	// wired in, log the request without the token.
	notifier := services.NotifierFunc(func(_ context.Context, address, _ string) error {
		slog.Info("password reset link dispatched", "address", address)
		return nil
	})

	// Services
	tokenService := services.NewTokenService(refreshStore, cfg)
	authService := services.NewAuthService(userStore, tokenService)
	resetService := services.NewPasswordResetService(userStore, resetStore, tokenService, notifier, cfg)

	// Expired-token sweeper: once at start, then every interval
	sweepDone := make(chan struct{})
	services.NewSweeper(refreshStore, resetStore, cfg.SweepInterval).Start(sweepDone)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenService, cfg)
	passwordHandler := handlers.NewPasswordHandler(resetService)
	healthHandler := handlers.NewHealthHandler(selector)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
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
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, limiter, authHandler, passwordHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(sweepDone)
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

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
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
