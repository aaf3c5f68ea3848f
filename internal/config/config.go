package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	UseMock         bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level string
}

// AuthConfig groups authentication related settings.
type AuthConfig struct {
	Session SessionConfig
}

// SessionConfig controls the login session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Load inspects the environment and builds a Config value. When no database
// URL is present the seeded in-memory database is used so the app can run
// locally without any setup.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		UseMock:         boolFromEnv("DATABASE_USE_MOCK"),
		MaxIdleConns:    intFromEnv("DATABASE_MAX_IDLE_CONNS"),
		MaxOpenConns:    intFromEnv("DATABASE_MAX_OPEN_CONNS"),
		ConnMaxLifetime: durationFromEnv("DATABASE_CONN_MAX_LIFETIME"),
		ConnMaxIdleTime: durationFromEnv("DATABASE_CONN_MAX_IDLE_TIME"),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:     durationFromEnv("SESSION_LIFETIME"),
			CookieName:   strings.TrimSpace(os.Getenv("SESSION_COOKIE_NAME")),
			CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
			CookieSecure: boolFromEnv("SESSION_COOKIE_SECURE"),
		},
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	if !cfg.Database.UseMock && strings.TrimSpace(cfg.Database.URL) == "" {
		cfg.Database.UseMock = true
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func boolFromEnv(key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return false
	}
	return value
}

func intFromEnv(key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func durationFromEnv(key string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
