package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/dto"
	"github.com/fitlogapp/fitlog-backend/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RateLimit gates a route group behind the sliding-window limiter. The key
// composes a stable endpoint identifier with the caller's identity, so
// limits are accounted per (endpoint, caller).
func RateLimit(limiter *ratelimit.Limiter, cfg *config.Config, endpoint string, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := endpoint + ":" + CallerIdentity(c, cfg)
		if !limiter.Allow(c.UserContext(), key, window, max) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}

// CallerIdentity resolves who is calling: the authenticated principal when a
// verified JWT is present, otherwise the network address. The limiter runs
// ahead of the JWT guard, so when the guard has not populated the context yet
// the bearer token is verified here; an unverified subject would let any
// caller mint fresh budgets.
func CallerIdentity(c *fiber.Ctx, cfg *config.Config) string {
	if tok, ok := c.Locals("user").(*jwt.Token); ok && tok != nil {
		if sub, err := tok.Claims.GetSubject(); err == nil && sub != "" {
			return "u:" + sub
		}
	}
	if sub := bearerSubject(c, cfg); sub != "" {
		return "u:" + sub
	}
	return "ip:" + ClientIP(c, cfg)
}

func bearerSubject(c *fiber.Ctx, cfg *config.Config) string {
	auth := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	tok, err := jwt.Parse(auth[len(prefix):], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !tok.Valid {
		return ""
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ClientIP applies the trusted-proxy policy: the forwarded-address header is
// honored only when the deployment declares itself behind a trusted reverse
// proxy. Otherwise the transport-layer peer address is used, so callers
// cannot spoof identity to evade limits.
func ClientIP(c *fiber.Ctx, cfg *config.Config) string {
	if cfg.TrustedProxy {
		if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
			if idx := strings.IndexByte(xff, ','); idx >= 0 {
				xff = xff[:idx]
			}
			return strings.TrimSpace(xff)
		}
	}
	return c.Context().RemoteIP().String()
}
