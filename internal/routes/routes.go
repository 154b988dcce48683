package routes

import (
	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/handlers"
	"github.com/fitlogapp/fitlog-backend/internal/middleware"
	"github.com/fitlogapp/fitlog-backend/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limit per caller
	api.Use(middleware.RateLimit(limiter, cfg, "api", cfg.RateLimitMax, cfg.RateLimitWindow))

	api.Get("/health", healthHandler.Check)

	// Auth endpoints get a stricter budget
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(limiter, cfg, "auth", cfg.AuthLimitMax, cfg.AuthLimitWindow))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/forgot-password", passwordHandler.ForgotPassword)
	auth.Post("/reset-password", passwordHandler.ResetPassword)

	// Protected routes (JWT required)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Post("/auth/logout-all", middleware.JWTProtected(cfg), authHandler.LogoutAll)

	// Program/workout/result CRUD is mounted by its own module behind
	// the same limiter and JWT guard.
}
