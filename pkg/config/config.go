package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Secret feeds both the cipher key derivation and the token signing
	// key. Sharing one secret for both is a documented simplification.
	Secret   string
	Issuer   string
	Audience string

	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	// RedisURL enables the login throttle when set
	RedisURL         string
	LoginMaxFailures int
	LoginWindow      time.Duration

	StatsInterval      time.Duration
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables. The secret is
// the only hard requirement: without it neither stored passwords nor
// issued tokens can work.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	loginMaxFailures, err := strconv.Atoi(getEnv("LOGIN_MAX_FAILURES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_FAILURES: %w", err)
	}

	loginWindowMin, err := strconv.Atoi(getEnv("LOGIN_WINDOW_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW_MINUTES: %w", err)
	}

	statsIntervalSec, err := strconv.Atoi(getEnv("STATS_INTERVAL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL_SECONDS: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Secret:   secret,
		Issuer:   getEnv("JWT_ISSUER", "helpdesk"),
		Audience: getEnv("JWT_AUDIENCE", ""),

		DatabaseHost:     getEnv("DB_HOST", "localhost"),
		DatabasePort:     dbPort,
		DatabaseUser:     getEnv("DB_USER", "helpdesk"),
		DatabasePassword: getEnv("DB_PASSWORD", "dev"),
		DatabaseName:     getEnv("DB_NAME", "helpdesk"),
		DatabaseSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:         getEnv("REDIS_URL", ""),
		LoginMaxFailures: loginMaxFailures,
		LoginWindow:      time.Duration(loginWindowMin) * time.Minute,

		StatsInterval: time.Duration(statsIntervalSec) * time.Second,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
