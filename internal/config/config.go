package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Refresh / password reset tokens
	RefreshTokenExpiry time.Duration
	ResetTokenTTL      time.Duration
	SweepInterval      time.Duration

	// Rate limiting
	RedisURL        string
	RedisTimeout    time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	AuthLimitMax    int
	AuthLimitWindow time.Duration

	// TrustedProxy declares that the deployment sits behind a trusted
	// reverse proxy; only then are forwarded-address headers honored
	// when resolving rate-limit identity.
	TrustedProxy bool

	// Server
	Port        string
	CORSOrigins string
	AppBaseURL  string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "fitlog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),

		RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		ResetTokenTTL:      parseDuration(getEnv("RESET_TOKEN_TTL", "1h"), time.Hour),
		SweepInterval:      parseDuration(getEnv("TOKEN_SWEEP_INTERVAL", "6h"), 6*time.Hour),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisTimeout:    parseDuration(getEnv("REDIS_TIMEOUT", "500ms"), 500*time.Millisecond),
		RateLimitMax:    parseInt(getEnv("RATE_LIMIT_MAX", "60"), 60),
		RateLimitWindow: parseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"), time.Minute),
		AuthLimitMax:    parseInt(getEnv("AUTH_RATE_LIMIT_MAX", "10"), 10),
		AuthLimitWindow: parseDuration(getEnv("AUTH_RATE_LIMIT_WINDOW", "1m"), time.Minute),

		TrustedProxy: getEnv("TRUSTED_PROXY", "false") == "true",

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppBaseURL:  getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
