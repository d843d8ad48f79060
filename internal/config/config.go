// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevJWTSecret is the JWT_SECRET fallback. It is only accepted in development.
	DevJWTSecret = "dev-only-secret-change-me"
)

var ErrDevSecret = errors.New("JWT_SECRET must be set outside development")

// Config contains all runtime configuration.
type Config struct {
	HTTPAddr      string
	Env           string
	TrustedOrigin string
	LogLevel      string

	JWTSecret string
	TokenTTL  time.Duration

	// RedisAddr empty selects the in-memory message log.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DatabaseDSN empty disables the room archive.
	DatabaseDSN string

	CleanupEnabled   bool
	CleanupInterval  time.Duration
	GracePeriod      time.Duration
	MaxMessageLength int
}

// LoadDotEnv reads .env files into the process environment. Variables that
// are already set win.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load builds a Config from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPAddr:      envString("HTTP_ADDR", ":8080"),
		Env:           envString("APP_ENV", EnvDevelopment),
		TrustedOrigin: envString("TRUSTED_ORIGIN", ""),
		LogLevel:      envString("LOG_LEVEL", "info"),

		JWTSecret: envString("JWT_SECRET", DevJWTSecret),
		TokenTTL:  envDuration("TOKEN_TTL", 72*time.Hour),

		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		DatabaseDSN: envString("DATABASE_DSN", ""),

		CleanupEnabled:   envBool("CLEANUP_ENABLED", true),
		CleanupInterval:  envDuration("CLEANUP_INTERVAL", time.Minute),
		GracePeriod:      time.Duration(envInt("GRACE_PERIOD_MINUTES", 5)) * time.Minute,
		MaxMessageLength: envInt("MAX_MESSAGE_LENGTH", 2000),
	}
}

// Validate rejects settings that are only safe in development.
func (c Config) Validate() error {
	if !c.IsDevelopment() && c.JWTSecret == DevJWTSecret {
		return ErrDevSecret
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envInt reads a non-negative int.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
