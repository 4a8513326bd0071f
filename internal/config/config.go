// Package config loads process-wide settings from the environment once at
// startup. The resulting Config is immutable and passed explicitly to
// constructors rather than read as ambient global state.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// devSecret is the fallback JWT secret for local development.
const devSecret = "dev-secret-change-me"

type Config struct {
	HTTPAddr     string
	DatabasePath string
	LogLevel     slog.Level

	JWTSecret string
	TokenTTL  time.Duration

	BcryptCost int

	// Login throttling. Capacity 0 disables the limiter.
	LoginRatePerSecond float64
	LoginRateCapacity  float64
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:           ":" + envOrDefault("PORT", "8080"),
		DatabasePath:       envOrDefault("DATABASE_PATH", "notekeeper.db"),
		LogLevel:           slog.LevelInfo,
		JWTSecret:          devSecret,
		TokenTTL:           60 * time.Minute,
		BcryptCost:         12,
		LoginRatePerSecond: 1,
		LoginRateCapacity:  10,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		if len(v) < 32 {
			return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		}
		cfg.JWTSecret = v
	}

	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("TOKEN_TTL_MINUTES must be a positive integer, got %q", v)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if cost < 4 || cost > 14 {
			return Config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cost)
		}
		cfg.BcryptCost = cost
	}

	if v := os.Getenv("LOGIN_RATE_CAPACITY"); v != "" {
		capacity, err := strconv.ParseFloat(v, 64)
		if err != nil || capacity < 0 {
			return Config{}, fmt.Errorf("LOGIN_RATE_CAPACITY must be a non-negative number, got %q", v)
		}
		cfg.LoginRateCapacity = capacity
	}

	if v := os.Getenv("LOGIN_RATE_PER_SECOND"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return Config{}, fmt.Errorf("LOGIN_RATE_PER_SECOND must be a positive number, got %q", v)
		}
		cfg.LoginRatePerSecond = rate
	}

	return cfg, nil
}

// UsingDevSecret reports whether the insecure development JWT secret is in use.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == devSecret
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
